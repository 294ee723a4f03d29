package sqlstore

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationStatus describes one migration and whether it has been applied.
type MigrationStatus struct {
	ID      string
	Applied bool
}

func migrationSource(driver string) (*migrate.EmbedFileSystemMigrationSource, error) {
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	return &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationsFS,
		Root:       "migrations/" + driver,
	}, nil
}

// Migrate applies (up) or rolls back (down) migrations. max limits the
// number applied; zero means all.
func Migrate(db *sqlx.DB, direction migrate.MigrationDirection, max int) (int, error) {
	source, err := migrationSource(db.DriverName())
	if err != nil {
		return 0, err
	}

	n, err := migrate.ExecMax(db.DB, db.DriverName(), source, direction, max)
	if err != nil {
		return n, fmt.Errorf("failed to execute migrations: %w", err)
	}
	return n, nil
}

// MigrateUp applies every pending migration.
func MigrateUp(db *sqlx.DB) (int, error) {
	return Migrate(db, migrate.Up, 0)
}

func MigrationsStatus(db *sqlx.DB) ([]MigrationStatus, error) {
	source, err := migrationSource(db.DriverName())
	if err != nil {
		return nil, err
	}

	migrations, err := source.FindMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	records, err := migrate.GetMigrationRecords(db.DB, db.DriverName())
	if err != nil {
		return nil, fmt.Errorf("failed to read migration records: %w", err)
	}

	applied := make(map[string]bool, len(records))
	for _, r := range records {
		applied[r.Id] = true
	}

	statuses := make([]MigrationStatus, 0, len(migrations))
	for _, m := range migrations {
		statuses = append(statuses, MigrationStatus{ID: m.Id, Applied: applied[m.Id]})
	}
	return statuses, nil
}
