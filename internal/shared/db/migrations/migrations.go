package migrations

import (
	"github.com/auctionroom/auctionroom/internal/shared/db"
	"github.com/auctionroom/auctionroom/internal/shared/logger"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var log = logger.GetLogger()

// RunMigrations brings the schema up to date. A database already at the
// latest version is not an error.
func RunMigrations() error {
	m, err := migrate.New(
		"file://internal/shared/db/migrations/sql",
		db.BuildPostgresDSN(),
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	log.Info("database schema up to date")
	return nil
}
