// Package archive keeps a SQL copy of the chain next to the record file.
//
// A save replaces the stored chain inside one transaction and appends a row
// to the snapshots table. Unlike the record file, the archive keeps the
// loyalty discount flag of every interval and Load restores it as stored.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/DukeRupert/parkchain/internal"
	"github.com/DukeRupert/parkchain/internal/domain"
	"github.com/DukeRupert/parkchain/internal/records"
)

// Dialect is the SQL flavor of the archive database.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// Drivers as registered with database/sql.
const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite"
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPgx:
		return DialectPostgres, nil
	case DriverSQLite:
		return DialectSQLite, nil
	}
	return "", fmt.Errorf("unsupported archive driver: %s", driver)
}

// SnapshotInfo describes one save.
type SnapshotInfo struct {
	ID                  uuid.UUID
	SavedAt             time.Time
	Lots                int
	Areas               int
	Intervals           int
	DiscountedIntervals int
}

// Store reads and writes the chain in a SQL database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

// Open connects to the archive database and migrates its schema.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach archive database: %w", err)
	}

	if err := internal.RunMigrations(db, string(dialect), logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate archive database: %w", err)
	}

	return New(db, dialect, logger), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	return &Store{db: db, dialect: dialect, logger: logger}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save replaces the archived chain with chain.
func (s *Store) Save(ctx context.Context, chain *domain.ParkingChain, now time.Time) (SnapshotInfo, error) {
	const op = "archive.save"

	info := SnapshotInfo{ID: uuid.New(), SavedAt: now}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return info, domain.Internal(err, op, "Failed to start archive transaction")
	}
	defer tx.Rollback()

	for _, table := range []string{"vehicle_intervals", "areas", "lots"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return info, domain.Internal(err, op, "Failed to clear "+table)
		}
	}

	for lp, lot := range chain.Lots() {
		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO lots (position, name, entry_gates) VALUES (?, ?, ?)`),
			lp, lot.Name, lot.EntryGates,
		); err != nil {
			return info, domain.Internal(err, op, "Failed to archive parking lot")
		}
		info.Lots++

		for ap, area := range lot.Areas() {
			capacity := area.Capacity().Values()
			if _, err := tx.ExecContext(ctx, s.rebind(
				`INSERT INTO areas (lot_position, position, name, motorcycle_capacity, car_capacity, van_capacity, bus_capacity, truck_capacity)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
				lp, ap, area.Name, capacity[0], capacity[1], capacity[2], capacity[3], capacity[4],
			); err != nil {
				return info, domain.Internal(err, op, "Failed to archive area")
			}
			info.Areas++

			if err := s.saveIntervals(ctx, tx, lp, ap, area, &info); err != nil {
				return info, domain.Internal(err, op, "Failed to archive vehicle interval")
			}
		}
	}

	if _, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO snapshots (id, saved_at, lots, areas, intervals, discounted_intervals) VALUES (?, ?, ?, ?, ?, ?)`),
		info.ID.String(), now.Unix(), info.Lots, info.Areas, info.Intervals, info.DiscountedIntervals,
	); err != nil {
		return info, domain.Internal(err, op, "Failed to record snapshot")
	}

	if err := tx.Commit(); err != nil {
		return info, domain.Internal(err, op, "Failed to commit archive transaction")
	}

	s.logger.Info("chain archived",
		"snapshot_id", info.ID,
		"lots", info.Lots,
		"areas", info.Areas,
		"intervals", info.Intervals,
	)
	return info, nil
}

func (s *Store) saveIntervals(ctx context.Context, tx *sql.Tx, lp, ap int, area *domain.Area, info *SnapshotInfo) error {
	stmt, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO vehicle_intervals (lot_position, area_position, position, plate, class, subscription_purchased_at, entry_at, exit_at, has_discount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()

	pos := 0
	for _, v := range area.Vehicles() {
		var purchased sql.NullInt64
		if v.Subscription != nil {
			purchased = sql.NullInt64{Int64: v.Subscription.PurchasedAt.Unix(), Valid: true}
		}
		for _, p := range v.History() {
			if _, err := stmt.ExecContext(ctx,
				lp, ap, pos, v.Plate, v.Class.String(), purchased,
				p.Entry().Unix(), p.Exit().Unix(), p.HasDiscount,
			); err != nil {
				return err
			}
			pos++
			info.Intervals++
			if p.HasDiscount {
				info.DiscountedIntervals++
			}
		}
	}
	return nil
}

// LoadOptions configures Load.
type LoadOptions struct {
	Location     *time.Location
	ChainOptions []domain.Option
}

// Load rebuilds the archived chain by replaying its rows as records.
func (s *Store) Load(ctx context.Context, opts LoadOptions) (*domain.ParkingChain, error) {
	const op = "archive.load"

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	b := records.NewBuilder(domain.NewParkingChain(opts.ChainOptions...))

	lots, err := s.db.QueryContext(ctx, `SELECT position, name, entry_gates FROM lots ORDER BY position`)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to read parking lots")
	}
	type lotRow struct {
		position int
		rec      records.LotRecord
	}
	var lotRows []lotRow
	for lots.Next() {
		var r lotRow
		if err := lots.Scan(&r.position, &r.rec.Name, &r.rec.EntryGates); err != nil {
			lots.Close()
			return nil, domain.Internal(err, op, "Failed to scan parking lot")
		}
		lotRows = append(lotRows, r)
	}
	lots.Close()
	if err := lots.Err(); err != nil {
		return nil, domain.Internal(err, op, "Failed to read parking lots")
	}

	for _, lot := range lotRows {
		if err := b.Apply(lot.rec); err != nil {
			return nil, err
		}
		if err := s.loadAreas(ctx, b, lot.position, loc); err != nil {
			return nil, err
		}
	}

	return b.Chain(), nil
}

func (s *Store) loadAreas(ctx context.Context, b *records.Builder, lotPosition int, loc *time.Location) error {
	const op = "archive.load_areas"

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT position, name, motorcycle_capacity, car_capacity, van_capacity, bus_capacity, truck_capacity
		 FROM areas WHERE lot_position = ? ORDER BY position`), lotPosition)
	if err != nil {
		return domain.Internal(err, op, "Failed to read areas")
	}

	type areaRow struct {
		position int
		rec      records.AreaRecord
	}
	var areaRows []areaRow
	for rows.Next() {
		var r areaRow
		c := make([]int, 5)
		if err := rows.Scan(&r.position, &r.rec.Name, &c[0], &c[1], &c[2], &c[3], &c[4]); err != nil {
			rows.Close()
			return domain.Internal(err, op, "Failed to scan area")
		}
		r.rec.Capacity = domain.CapacityOf(c...)
		areaRows = append(areaRows, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return domain.Internal(err, op, "Failed to read areas")
	}

	for _, area := range areaRows {
		if err := b.Apply(area.rec); err != nil {
			return err
		}
		if err := s.loadIntervals(ctx, b, lotPosition, area.position, loc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadIntervals(ctx context.Context, b *records.Builder, lotPosition, areaPosition int, loc *time.Location) error {
	const op = "archive.load_intervals"

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT plate, class, subscription_purchased_at, entry_at, exit_at, has_discount
		 FROM vehicle_intervals WHERE lot_position = ? AND area_position = ? ORDER BY position`),
		lotPosition, areaPosition)
	if err != nil {
		return domain.Internal(err, op, "Failed to read vehicle intervals")
	}
	defer rows.Close()

	type intervalRow struct {
		rec      records.VehicleRecord
		discount bool
	}
	var pending []intervalRow
	for rows.Next() {
		var (
			rec         records.VehicleRecord
			class       string
			purchased   sql.NullInt64
			entry, exit int64
			discount    bool
		)
		if err := rows.Scan(&rec.Plate, &class, &purchased, &entry, &exit, &discount); err != nil {
			return domain.Internal(err, op, "Failed to scan vehicle interval")
		}
		rec.Class = domain.VehicleClass(class)
		if purchased.Valid {
			t := time.Unix(purchased.Int64, 0).In(loc)
			rec.SubscriptionPurchasedAt = &t
		}
		rec.Entry = time.Unix(entry, 0).In(loc)
		rec.Exit = time.Unix(exit, 0).In(loc)
		pending = append(pending, intervalRow{rec: rec, discount: discount})
	}
	if err := rows.Err(); err != nil {
		return domain.Internal(err, op, "Failed to read vehicle intervals")
	}

	for _, row := range pending {
		if err := b.Apply(row.rec); err != nil {
			return err
		}
		history := b.Area().Vehicle(row.rec.Plate).History()
		history[len(history)-1].HasDiscount = row.discount
	}
	return nil
}

// Snapshots lists every save, newest first.
func (s *Store) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	const op = "archive.snapshots"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, saved_at, lots, areas, intervals, discounted_intervals FROM snapshots ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, domain.Internal(err, op, "Failed to list snapshots")
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var (
			info    SnapshotInfo
			id      string
			savedAt int64
		)
		if err := rows.Scan(&id, &savedAt, &info.Lots, &info.Areas, &info.Intervals, &info.DiscountedIntervals); err != nil {
			return nil, domain.Internal(err, op, "Failed to scan snapshot")
		}
		if info.ID, err = uuid.Parse(id); err != nil {
			return nil, domain.Internal(err, op, "Invalid snapshot id")
		}
		info.SavedAt = time.Unix(savedAt, 0)
		out = append(out, info)
	}
	return out, rows.Err()
}
