package database

import (
	"log"

	"domostay/config"
	"domostay/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the global database handle.
var DB *gorm.DB

// InitDB opens the Postgres connection and applies migrations.
func InitDB() {
	dsn := config.AppConfig.DatabaseURL
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	DB = db
	log.Println("Connected to Postgres successfully!")
}

// Migrate applies the schema plus the store-level constraints that back the
// coordinator's invariants. The range exclusion constraint is Postgres-only
// defense-in-depth; on other dialects the in-transaction overlap re-check is
// the enforcement point.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Reservation{}); err != nil {
		return err
	}
	if db.Dialector.Name() == "postgres" {
		stmts := []string{
			`CREATE EXTENSION IF NOT EXISTS btree_gist`,
			`ALTER TABLE reservations
				ADD CONSTRAINT excl_reservations_no_overlap
				EXCLUDE USING gist (unit_id WITH =, daterange(entry_date, exit_date) WITH &&)`,
		}
		for _, stmt := range stmts {
			if err := db.Exec(stmt).Error; err != nil {
				// The exclusion constraint already existing is fine.
				if db.Migrator().HasConstraint(&models.Reservation{}, "excl_reservations_no_overlap") {
					continue
				}
				return err
			}
		}
	}
	return nil
}
