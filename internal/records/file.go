package records

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/DukeRupert/parkchain/internal/domain"
)

// LoadMode decides what happens when a line cannot be applied.
type LoadMode string

const (
	// LoadModeAbort stops at the first malformed record. This is the default.
	LoadModeAbort LoadMode = "abort"

	// LoadModeSkip logs the failing line, skips it and keeps loading.
	LoadModeSkip LoadMode = "skip"
)

// ParseLoadMode validates a mode name.
func ParseLoadMode(s string) (LoadMode, error) {
	switch LoadMode(s) {
	case LoadModeAbort, LoadModeSkip:
		return LoadMode(s), nil
	}
	return "", fmt.Errorf("load mode must be either 'abort' or 'skip', got: %s", s)
}

// LoadOptions configures Load.
type LoadOptions struct {
	Mode         LoadMode
	Location     *time.Location  // timestamps are read in this location, default time.Local
	ChainOptions []domain.Option // clock and policy of the built chain
	Logger       *slog.Logger
	OnApply      func(Record)
}

// Load reads records from r and replays them into a new chain.
//
// In abort mode the first failing line ends the load and its error is
// returned together with the chain built so far. In skip mode every failure
// is logged and all of them are returned joined.
func Load(r io.Reader, opts LoadOptions) (*domain.ParkingChain, error) {
	const op = "records.load"

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dec := Decoder{Location: opts.Location}
	b := NewBuilder(domain.NewParkingChain(opts.ChainOptions...))
	b.OnApply = opts.OnApply

	var skipped []error
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		err := applyLine(b, dec, line)
		if err == nil {
			continue
		}

		err = domain.Wrap(err, domain.ErrorCode(err), op,
			fmt.Sprintf("line %d: %s", lineNo, domain.ErrorMessage(err)))
		if opts.Mode != LoadModeSkip {
			return b.Chain(), err
		}

		logger.Warn("skipping record",
			"line", lineNo,
			"code", domain.ErrorCode(err),
			"error", err,
		)
		skipped = append(skipped, err)
	}

	if err := scanner.Err(); err != nil {
		return b.Chain(), domain.Internal(err, op, "failed to read records")
	}

	logger.Debug("records loaded",
		"lines", lineNo,
		"lots", len(b.Chain().Lots()),
		"skipped", len(skipped),
	)

	return b.Chain(), errors.Join(skipped...)
}

func applyLine(b *Builder, dec Decoder, line string) error {
	rec, err := dec.Decode(line)
	if err != nil {
		return err
	}
	return b.Apply(rec)
}

// LoadFile opens path and loads it.
func LoadFile(path string, opts LoadOptions) (*domain.ParkingChain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()

	return Load(f, opts)
}

// Write regenerates the full record file for chain. Discount flags are not
// part of the format; they are recomputed from entrance counts on the next load.
func Write(w io.Writer, chain *domain.ParkingChain) error {
	bw := bufio.NewWriter(w)
	for _, rec := range Flatten(chain) {
		if _, err := bw.WriteString(Encode(rec) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Marshal returns the record file for chain as bytes.
func Marshal(chain *domain.ParkingChain) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, chain); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile overwrites path with the records of chain.
func WriteFile(path string, chain *domain.ParkingChain) error {
	data, err := Marshal(chain)
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write records file: %w", err)
	}
	return nil
}
