package db

import (
	"github.com/jmoiron/sqlx"
)

func InitializeDatabaseSchema(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			role VARCHAR(32) NOT NULL,
			has_vip_access BOOLEAN NOT NULL DEFAULT FALSE,
			has_premium_access BOOLEAN NOT NULL DEFAULT FALSE,
			has_backstage_access BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS events (
			event_id VARCHAR(255) PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			max_capacity INT NULL,
			active_tickets INT NOT NULL DEFAULT 0,
			prices JSONB NOT NULL DEFAULT '{}',
			status VARCHAR(32) NOT NULL,
			CONSTRAINT events_active_tickets_non_negative CHECK (active_tickets >= 0),
			CONSTRAINT events_active_tickets_within_capacity CHECK (max_capacity IS NULL OR active_tickets <= max_capacity)
		);

		CREATE TABLE IF NOT EXISTS tickets (
			ticket_id VARCHAR(255) PRIMARY KEY,
			ticket_number VARCHAR(255) NOT NULL UNIQUE,
			ticket_type VARCHAR(32) NOT NULL,
			price_amount NUMERIC(10, 2) NOT NULL,
			price_currency CHAR(3) NOT NULL,
			status VARCHAR(32) NOT NULL,
			owner_id VARCHAR(255) NOT NULL REFERENCES users (user_id),
			event_id VARCHAR(255) NOT NULL REFERENCES events (event_id),
			purchase_date TIMESTAMPTZ NOT NULL,
			artifact_ref VARCHAR(255) NULL
		);

		CREATE INDEX IF NOT EXISTS tickets_owner_id_idx ON tickets (owner_id);

		CREATE TABLE IF NOT EXISTS payments (
			payment_id VARCHAR(255) PRIMARY KEY,
			ticket_id VARCHAR(255) NOT NULL UNIQUE REFERENCES tickets (ticket_id),
			amount NUMERIC(10, 2) NOT NULL,
			currency CHAR(3) NOT NULL,
			status VARCHAR(32) NOT NULL,
			strategy VARCHAR(64) NOT NULL,
			session_id VARCHAR(255) NULL,
			created_at TIMESTAMPTZ NOT NULL,
			settled_at TIMESTAMPTZ NULL
		);

		CREATE TABLE IF NOT EXISTS data_lake_events (
			event_id VARCHAR(255) PRIMARY KEY,
			published_at TIMESTAMPTZ NOT NULL,
			event_name VARCHAR(255) NOT NULL,
			event_payload JSONB NOT NULL
		);
	`)

	return err
}
