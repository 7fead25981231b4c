package postgres

import (
	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"

	"github.com/nomadhomes/bookingledger/internal/infrastructure/postgres/migrations"
)

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migrate instance")
	}

	return m, nil
}

// RunMigrations applies every pending migration.
func RunMigrations(databaseURL string, log zerolog.Logger) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m, log)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("database migrations: no change")
			return nil
		}
		return errors.Wrap(err, "failed to run migrations")
	}

	log.Info().Msg("database migrations: applied successfully")
	return nil
}

// RunMigrationsDown rolls back the last migration.
func RunMigrationsDown(databaseURL string, log zerolog.Logger) error {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m, log)

	if err := m.Steps(-1); err != nil {
		return errors.Wrap(err, "failed to rollback migration")
	}

	log.Info().Msg("database migrations: rolled back successfully")
	return nil
}

// MigrationVersion reports the applied schema version.
func MigrationVersion(databaseURL string, log zerolog.Logger) (uint, bool, error) {
	m, err := newMigrator(databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m, log)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to read migration version")
	}

	return version, dirty, nil
}

func closeMigrator(m *migrate.Migrate, log zerolog.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Warn().Err(srcErr).Msg("closing migration source")
	}
	if dbErr != nil {
		log.Warn().Err(dbErr).Msg("closing migration database")
	}
}
