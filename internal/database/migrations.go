package database

import (
	"log"
	"log/slog"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func allTables() []any {
	return []any{&User{}, &ChatSession{}, &ChatHistory{}}
}

func GetMigrator(db *gorm.DB) *gormigrate.Gormigrate {
	migrator := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "0",
			Migrate: func(txn *gorm.DB) error {
				return txn.AutoMigrate(allTables()...)
			},
		},
	})

	migrator.InitSchema(func(txn *gorm.DB) error {
		// Run by the migrator when no previous migration is detected, so a
		// fresh database gets the full schema in one step.

		log.Println("clean database detected, running full schema initialization")

		dbType := db.Dialector.Name()
		if dbType == "sqlite" || dbType == "sqlite3" {
			// Sqlite does not enable foreign key constraints by default, so we need to enable them manually.
			if err := txn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
				slog.Error("error enabling foreign keys for SQLite", "error", err)
			}
		}

		return txn.AutoMigrate(allTables()...)
	})

	return migrator
}

// Reset unconditionally drops and recreates every table. All users, sessions,
// and history are erased. Development use only.
func Reset(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&ChatHistory{}, &ChatSession{}, &User{}); err != nil {
		return err
	}
	return db.AutoMigrate(allTables()...)
}
