// Command migrate_data copies the portal's local state (settings, chat
// sessions and chat history) from the SQLite file into PostgreSQL.
package main

import (
	"fmt"
	"log"

	"autolynx-portal/internal/config"
	"autolynx-portal/internal/database"
	"autolynx-portal/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must point at the destination PostgreSQL database")
	}

	sqliteDB, err := database.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to connect to SQLite: %v", err)
	}
	log.Printf("Connected to SQLite at %s", cfg.DBPath)

	pgDB, err := database.OpenPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	if err := database.Migrate(pgDB); err != nil {
		log.Fatalf("Failed to migrate PostgreSQL schema: %v", err)
	}

	log.Println("Starting data migration...")

	var settings []models.SystemSetting
	copyTable(sqliteDB, pgDB, "system_settings", &settings)

	var sessions []models.ChatSession
	copyTable(sqliteDB, pgDB, "chat_sessions", &sessions)

	var messages []models.ChatMessage
	copyTable(sqliteDB, pgDB, "chat_messages", &messages)

	if err := syncSequence(pgDB, "chat_sessions"); err != nil {
		log.Printf("Error syncing chat_sessions sequence: %v", err)
	}
	if err := syncSequence(pgDB, "chat_messages"); err != nil {
		log.Printf("Error syncing chat_messages sequence: %v", err)
	}

	log.Println("Migration completed!")
}

// copyTable reads every row of table into rows (a pointer to a slice) and
// inserts them into dst, skipping rows that already exist.
func copyTable(src, dst *gorm.DB, table string, rows any) {
	log.Printf("Migrating table: %s", table)

	res := src.Find(rows)
	if res.Error != nil {
		log.Printf("Error reading %s from SQLite: %v", table, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		log.Printf("Nothing to migrate in %s", table)
		return
	}

	err := dst.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, 500).Error
	})
	if err != nil {
		log.Printf("Error writing %s to Postgres: %v", table, err)
		return
	}
	log.Printf("Successfully migrated %s", table)
}

// syncSequence moves the serial id sequence past the copied ids so new rows
// don't collide with them.
func syncSequence(db *gorm.DB, table string) error {
	sql := fmt.Sprintf(
		"SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
		table, table)
	return db.Exec(sql).Error
}
