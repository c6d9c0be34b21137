// Package console runs the interactive menu of a parking chain over any
// reader and writer.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/service"
)

// Menu options
const (
	OptionAddLot = iota + 1
	OptionAddArea
	OptionAddVehicle
	OptionPrintOccupancy
	OptionPrintGain
	OptionExit
)

var menu = []string{
	"1. Add parking lot",
	"2. Add area",
	"3. Add vehicle",
	"4. Print occupancy",
	"5. Print gain",
	"6. Exit",
}

// Session is one interactive run against a parking service.
type Session struct {
	svc     service.ParkingService
	in      *bufio.Scanner
	out     io.Writer
	printer *message.Printer
	clock   domain.Clock
	loc     *time.Location
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for entry and subscription times.
func WithClock(clock domain.Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the location typed timestamps are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Session) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLanguage sets the language used to format numbers.
func WithLanguage(tag language.Tag) Option {
	return func(s *Session) {
		s.printer = message.NewPrinter(tag)
	}
}

// NewSession creates a session reading answers from in and writing prompts to out.
func NewSession(svc service.ParkingService, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		svc:     svc,
		in:      bufio.NewScanner(in),
		out:     out,
		printer: message.NewPrinter(language.English),
		clock:   time.Now,
		loc:     time.Local,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu until the exit option is chosen or the input ends.
// Failed operations are reported and control returns to the menu.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		option, err := s.readOption()
		if err != nil {
			return s.endOfInput(err)
		}

		switch option {
		case OptionAddLot:
			err = s.addLot(ctx)
		case OptionAddArea:
			err = s.addArea(ctx)
		case OptionAddVehicle:
			err = s.addVehicle(ctx)
		case OptionPrintOccupancy:
			err = s.printOccupancy(ctx)
		case OptionPrintGain:
			err = s.printGain(ctx)
		case OptionExit:
			s.logger.Debug("session finished")
			return nil
		}

		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || isReadError(err) {
			return s.endOfInput(err)
		}

		s.logger.Debug("operation failed", "option", option, "code", domain.ErrorCode(err), "error", err)
		s.println(domain.ErrorMessage(err))
	}
}

func (s *Session) endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		s.logger.Debug("input closed, ending session")
		return nil
	}
	return err
}

func (s *Session) addLot(ctx context.Context) error {
	const entrancesMessage = "Enter parking lot number of entrances"

	name, err := s.prompt("Enter parking lot name:")
	if err != nil {
		return err
	}
	s.println(entrancesMessage + ":")
	entrances, err := s.readInteger(domain.MinEntryGates, domain.MaxEntryGates,
		fmt.Sprintf("%s (number between %d and %d): ", entrancesMessage, domain.MinEntryGates, domain.MaxEntryGates))
	if err != nil {
		return err
	}

	lot, err := s.svc.AddLot(ctx, domain.AddLotParams{Name: name, EntryGates: entrances})
	if err != nil {
		return err
	}
	s.printf("Parking lot '%s' was added!\n", lot.Name)
	return nil
}

func (s *Session) addArea(ctx context.Context) error {
	lotName, err := s.prompt("Enter parking lot name:")
	if err != nil {
		return err
	}
	areaName, err := s.prompt("Enter area name:")
	if err != nil {
		return err
	}

	capacity := domain.NewClassCounts()
	for _, class := range domain.VehicleClasses() {
		msg := "Enter maximum number of parking places for " + class.String()
		s.println(msg + ":")
		v, err := s.readInteger(domain.MinCapacity, domain.MaxCapacity,
			fmt.Sprintf("%s (number between %d and %d): ", msg, domain.MinCapacity, domain.MaxCapacity))
		if err != nil {
			return err
		}
		capacity[class] = v
	}

	area, err := s.svc.AddArea(ctx, domain.AddAreaParams{LotName: lotName, Name: areaName, Capacity: capacity})
	if err != nil {
		return err
	}
	s.printf("Area '%s' was added in parking lot '%s'!\n", area.Name, lotName)
	return nil
}

func (s *Session) addVehicle(ctx context.Context) error {
	lotName, err := s.prompt("Enter parking lot name:")
	if err != nil {
		return err
	}
	areaName, err := s.prompt("Enter area name:")
	if err != nil {
		return err
	}
	plate, err := s.prompt("Enter license plate:")
	if err != nil {
		return err
	}
	class, err := s.readVehicleClass()
	if err != nil {
		return err
	}
	subscribe, err := s.readYesNo("Do you want to buy subscription (y/n)?")
	if err != nil {
		return err
	}

	entry := s.clock().In(s.loc).Truncate(time.Minute)
	exit, err := s.readExitTime()
	if err != nil {
		return err
	}

	params := domain.AdmitVehicleParams{
		LotName:  lotName,
		AreaName: areaName,
		Plate:    plate,
		Class:    class,
		Entry:    entry,
		Exit:     exit,
	}
	if subscribe {
		params.SubscriptionPurchasedAt = &entry
	}

	if err := s.svc.AdmitVehicle(ctx, params); err != nil {
		return err
	}
	s.printf("Vehicle with license plate '%s' was added in area '%s' from parking lot '%s'!\n", plate, areaName, lotName)
	return nil
}

func (s *Session) printOccupancy(ctx context.Context) error {
	lotName, err := s.selectLot("Do you want to print the occupancy for all parking lots (y/n)?")
	if err != nil {
		return err
	}

	lots, err := s.svc.Occupancy(ctx, lotName)
	if err != nil {
		return err
	}
	for _, lot := range lots {
		s.printf("Occupancy rate for %s is:\n", lot.Lot)
		for _, c := range lot.Classes {
			if math.IsNaN(c.Percent) {
				s.printf(" - %s: no places\n", c.Class)
				continue
			}
			s.printf(" - %s: %.2f%%\n", c.Class, c.Percent)
		}
	}
	return nil
}

func (s *Session) printGain(ctx context.Context) error {
	day, err := s.readDate()
	if err != nil {
		return err
	}
	lotName, err := s.selectLot("Do you want to print the gain for all parking lots (y/n)?")
	if err != nil {
		return err
	}

	gains, err := s.svc.Gain(ctx, day, lotName)
	if err != nil {
		return err
	}
	for _, g := range gains {
		s.printf("%s gained %.2f on %s.\n", g.Lot, g.Gain, g.Day.Format(domain.DateLayout))
	}
	return nil
}

// selectLot returns "" for every lot or the name typed by the user.
func (s *Session) selectLot(question string) (string, error) {
	all, err := s.readYesNo(question)
	if err != nil || all {
		return "", err
	}
	return s.prompt("Enter parking lot name:")
}

func (s *Session) readOption() (int, error) {
	msg := strings.Join(menu, "\n") + "\nPlease select an option:"
	s.println(msg)
	return s.readInteger(1, len(menu), msg)
}

// readInteger re-prompts until the answer is an integer within [lo, hi].
func (s *Session) readInteger(lo, hi int, retry string) (int, error) {
	for {
		input, err := s.readLine()
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(input))
		if err == nil && v >= lo && v <= hi {
			return v, nil
		}
		s.printf("Invalid input: '%s'.\n%s\n", input, retry)
	}
}

func (s *Session) readYesNo(question string) (bool, error) {
	s.println(question)
	for {
		input, err := s.readLine()
		if err != nil {
			return false, err
		}
		switch input {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		s.printf("Invalid input: '%s'.\n%s\n", input, question)
	}
}

func (s *Session) readVehicleClass() (domain.VehicleClass, error) {
	names := make([]string, 0, len(domain.VehicleClasses()))
	for _, c := range domain.VehicleClasses() {
		names = append(names, c.String())
	}
	question := "Enter vehicle type (" + strings.Join(names, "/") + "):"

	for {
		input, err := s.prompt(question)
		if err != nil {
			return "", err
		}
		class, err := domain.ParseVehicleClass(input)
		if err == nil {
			return class, nil
		}
		s.println(domain.ErrorMessage(err))
	}
}

func (s *Session) readExitTime() (time.Time, error) {
	for {
		input, err := s.prompt("Enter exit time (yyyy-MM-dd HH:mm):")
		if err != nil {
			return time.Time{}, err
		}
		exit, err := time.ParseInLocation(domain.TimestampLayout, strings.TrimSpace(input), s.loc)
		if err != nil {
			s.printf("Invalid input: '%s'.\n", input)
			continue
		}
		if !exit.After(s.clock()) {
			s.printf("Invalid input: '%s'. Exit date should not be in the past!\n", input)
			continue
		}
		return exit, nil
	}
}

func (s *Session) readDate() (time.Time, error) {
	for {
		input, err := s.prompt("Please enter the date for which you want the gain (yyyy-MM-dd):")
		if err != nil {
			return time.Time{}, err
		}
		day, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(input), s.loc)
		if err == nil {
			return day, nil
		}
		s.printf("Invalid input: '%s'.\n", input)
	}
}

func (s *Session) prompt(question string) (string, error) {
	s.println(question)
	return s.readLine()
}
