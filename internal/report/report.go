// Package report renders occupancy and gain summaries as spreadsheets.
package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/DukeRupert/parkchain/internal/domain"
)

// Generator writes a summary in one output format.
type Generator interface {
	// Generate writes the report to w and returns the number of bytes written.
	Generate(ctx context.Context, summary *domain.Summary, w io.Writer) (int64, error)

	// Format returns the file extension of the output, without the dot.
	Format() string
}

// Sheet names
const (
	SheetOccupancy = "Occupancy"
	SheetGain      = "Gain"
)

var (
	occupancyHeader = []interface{}{"Lot", "Class", "Occupied", "Capacity", "Percent"}
	gainHeader      = []interface{}{"Lot", "Date", "Gain"}
)

// XLSXGenerator writes an Excel workbook with one sheet for occupancy and
// one for gain.
type XLSXGenerator struct{}

// NewXLSXGenerator creates a new XLSX generator.
func NewXLSXGenerator() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Format returns "xlsx".
func (g *XLSXGenerator) Format() string {
	return "xlsx"
}

// Generate builds the workbook and writes it to w.
func (g *XLSXGenerator) Generate(ctx context.Context, summary *domain.Summary, w io.Writer) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetOccupancy); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetGain); err != nil {
		return 0, fmt.Errorf("create gain sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return 0, err
	}

	if err := writeOccupancy(f, styles, summary); err != nil {
		return 0, err
	}
	if err := writeGain(f, styles, summary); err != nil {
		return 0, err
	}

	n, err := f.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	return n, nil
}

type styles struct {
	header int
	number int
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E5E7EB"}},
	})
	if err != nil {
		return styles{}, fmt.Errorf("create header style: %w", err)
	}
	number, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return styles{}, fmt.Errorf("create number style: %w", err)
	}
	return styles{header: header, number: number}, nil
}

func writeOccupancy(f *excelize.File, st styles, summary *domain.Summary) error {
	if err := writeHeader(f, st, SheetOccupancy, occupancyHeader); err != nil {
		return err
	}

	row := 2
	for _, lot := range summary.Occupancy {
		for _, c := range lot.Classes {
			values := []interface{}{lot.Lot, c.Class.String(), c.Occupied, c.Capacity}
			if !math.IsNaN(c.Percent) {
				values = append(values, c.Percent)
			}
			if err := setRow(f, SheetOccupancy, row, values); err != nil {
				return err
			}
			row++
		}
	}

	if row > 2 {
		if err := f.SetCellStyle(SheetOccupancy, "E2", fmt.Sprintf("E%d", row-1), st.number); err != nil {
			return fmt.Errorf("style occupancy: %w", err)
		}
	}
	return f.SetColWidth(SheetOccupancy, "A", "A", 24)
}

func writeGain(f *excelize.File, st styles, summary *domain.Summary) error {
	if err := writeHeader(f, st, SheetGain, gainHeader); err != nil {
		return err
	}

	row := 2
	for _, g := range summary.Gains {
		if err := setRow(f, SheetGain, row, []interface{}{g.Lot, g.Day.Format(domain.DateLayout), g.Gain}); err != nil {
			return err
		}
		row++
	}

	if err := setRow(f, SheetGain, row, []interface{}{"Total", summary.Day.Format(domain.DateLayout), summary.TotalGain()}); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetGain, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), st.header); err != nil {
		return fmt.Errorf("style total: %w", err)
	}
	if err := f.SetCellStyle(SheetGain, "C2", fmt.Sprintf("C%d", row), st.number); err != nil {
		return fmt.Errorf("style gain: %w", err)
	}
	return f.SetColWidth(SheetGain, "A", "A", 24)
}

func writeHeader(f *excelize.File, st styles, sheet string, header []interface{}) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, st.header); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// WriteFile generates the report into path.
func WriteFile(ctx context.Context, g Generator, summary *domain.Summary, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	if _, err := g.Generate(ctx, summary, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
