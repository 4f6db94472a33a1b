package database

// Schema bootstrap and verification for the parking database.  The service
// owns three tables (users, parking_slots, bookings) plus refresh_tokens for
// session persistence.  EnsureSchema is idempotent so the server can be
// pointed at an empty database; VerifySchema exists for deployments where
// the schema is managed externally and we only want a precise diagnostic
// when tables are missing.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// expectedTables lists every table the service reads or writes.
var expectedTables = []string{"users", "parking_slots", "bookings", "refresh_tokens"}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		student_number VARCHAR(50) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('user','admin') NOT NULL DEFAULT 'user',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id),
		UNIQUE KEY uniq_student_number (student_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS parking_slots (
		slot_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		slot_name VARCHAR(10) NOT NULL,
		is_available TINYINT(1) NOT NULL DEFAULT 1,
		location VARCHAR(150) NOT NULL DEFAULT '',
		PRIMARY KEY (slot_id),
		UNIQUE KEY uniq_slot_name (slot_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		booking_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		slot_id BIGINT UNSIGNED NOT NULL,
		entry_at DATETIME NOT NULL,
		exit_at DATETIME NOT NULL,
		status ENUM('active','completed','cancelled') NOT NULL DEFAULT 'active',
		booked_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (booking_id),
		UNIQUE KEY uniq_slot_entry (slot_id, entry_at),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id)
			REFERENCES users (user_id) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT fk_bookings_slot FOREIGN KEY (slot_id)
			REFERENCES parking_slots (slot_id) ON DELETE CASCADE ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_refresh_token_hash (token_hash),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id)
			REFERENCES users (user_id) ON DELETE CASCADE ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// seedSlots is the fixed slot provisioning for the CCIS lot.  Slots are
// created once; after that the rows are only ever mutated through bookings.
var seedSlots = [][2]string{
	{"P01", "CCIS Building - Front Row, Left Side"},
	{"P02", "CCIS Building - Front Row, Left Center"},
	{"P03", "CCIS Building - Front Row, Center"},
	{"P04", "CCIS Building - Front Row, Right Center"},
	{"P05", "CCIS Building - Front Row, Right Side"},
	{"P06", "CCIS Building - Back Row, Left Side"},
	{"P07", "CCIS Building - Back Row, Left Center"},
	{"P08", "CCIS Building - Back Row, Center"},
	{"P09", "CCIS Building - Back Row, Right Center"},
	{"P10", "CCIS Building - Back Row, Right Side"},
}

// EnsureSchema creates all missing tables and seeds the initial slot set.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return seedParkingSlots(ctx, db)
}

// VerifySchema checks that every expected table exists.  On failure the
// returned error names each missing table so the operator knows exactly what
// to create, rather than a generic connectivity failure.
func VerifySchema(ctx context.Context, db *sql.DB) error {
	var missing []string
	for _, table := range expectedTables {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT table_name FROM information_schema.tables
			 WHERE table_schema = DATABASE() AND table_name = ?`, table).Scan(&name)
		switch {
		case err == sql.ErrNoRows:
			missing = append(missing, table)
		case err != nil:
			return fmt.Errorf("schema check for %s: %w", table, err)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func seedParkingSlots(ctx context.Context, db *sql.DB) error {
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM parking_slots`).Scan(&total); err != nil {
		return fmt.Errorf("count slots: %w", err)
	}
	if total > 0 {
		return nil
	}
	query := `INSERT INTO parking_slots (slot_name, location) VALUES `
	args := make([]interface{}, 0, len(seedSlots)*2)
	for i, s := range seedSlots {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, s[0], s[1])
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("seed slots: %w", err)
	}
	return nil
}
