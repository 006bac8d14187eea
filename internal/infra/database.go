package infra

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DatabaseOptions selects the storage engine. SQLite is the default
// single-file deployment; Postgres is supported for hosted setups.
type DatabaseOptions struct {
	Driver        string
	DSN           string
	BusyTimeoutMS int
}

// NewDatabase opens the GORM connection and applies the embedded SQL
// migrations. Schema is managed exclusively through migrations/; AutoMigrate
// is never used so that column types stay identical across both drivers.
func NewDatabase(opts DatabaseOptions) (*gorm.DB, error) {
	dialector, dialect, err := openDialector(opts)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dialect == goose.DialectSQLite3 {
		// One writer per database file: a single pooled connection makes every
		// transaction serialize instead of failing with SQLITE_BUSY mid-flight.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := Migrate(context.Background(), db, dialect); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

func openDialector(opts DatabaseOptions) (gorm.Dialector, goose.Dialect, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite:
		return sqlite.Open(sqliteDSN(opts.DSN, opts.BusyTimeoutMS)), goose.DialectSQLite3, nil
	case DriverPostgres, "postgresql":
		return postgres.Open(opts.DSN), goose.DialectPostgres, nil
	default:
		return nil, "", fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}
}

// sqliteDSN appends the pragmas the store relies on: busy timeout for the
// lock wait bound, WAL for concurrent readers and enforced foreign keys for
// the stock-take cascade.
func sqliteDSN(dsn string, busyTimeoutMS int) string {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	params := []string{
		fmt.Sprintf("_busy_timeout=%d", busyTimeoutMS),
		"_foreign_keys=1",
	}
	if !strings.Contains(dsn, "mode=memory") {
		params = append(params, "_journal_mode=WAL")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Migrate runs every pending migration in migrations/ with goose.
func Migrate(ctx context.Context, db *gorm.DB, dialect goose.Dialect) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		log.Info().
			Str("migration", r.Source.Path).
			Dur("duration", r.Duration).
			Msg("migration applied")
	}
	return nil
}
