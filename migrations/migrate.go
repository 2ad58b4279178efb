package migrations

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

func newMigrator(dbURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration files: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// Run executes all pending up migrations
func Run(dbURL string) error {
	m, err := newMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("📦 Migrations: no new migrations to apply")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, _ := m.Version()
	log.WithFields(log.Fields{"version": version, "dirty": dirty}).Info("✅ Migrations applied successfully")
	return nil
}

// Rollback reverts the last migration
func Rollback(dbURL string) error {
	m, err := newMigrator(dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	log.Info("✅ Last migration rolled back successfully")
	return nil
}

// geoStatements add what AutoMigrate cannot express: the PostGIS point,
// its spatial index, and the unordered-pair friendship constraint.
var geoStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`ALTER TABLE fields ADD COLUMN IF NOT EXISTS location GEOGRAPHY(Point, 4326)
		GENERATED ALWAYS AS (ST_SetSRID(ST_MakePoint(longitude, latitude), 4326)::geography) STORED`,
	`CREATE INDEX IF NOT EXISTS idx_fields_location ON fields USING GIST (location)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_friendships_pair
		ON friendships (LEAST(user_id, friend_id), GREATEST(user_id, friend_id))`,
}

// AutoMigrate is the fallback when the embedded migrations cannot run
func AutoMigrate(db *gorm.DB, models ...interface{}) error {
	if err := db.Exec(geoStatements[0]).Error; err != nil {
		return fmt.Errorf("postgis extension: %w", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	for _, stmt := range geoStatements[1:] {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("geo schema: %w", err)
		}
	}
	return nil
}
