package postgres

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"classhub/pkg/config"
)

// NewPostgresClient opens a connection pool and brings the schema up
// to date.
func NewPostgresClient(cfg *config.Config, logger *zap.SugaredLogger) (*sqlx.DB, error) {
	conStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=%s",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database,
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.SSLMode)

	db, err := sqlx.Connect("postgres", conStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if logger != nil {
		logger.Infow("connected to Postgres",
			"host", cfg.Postgres.Host,
			"database", cfg.Postgres.Database,
		)
	}

	return db, nil
}

func migrate(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			full_name   TEXT NOT NULL,
			email       TEXT NOT NULL UNIQUE,
			photo_url   TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS channels (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL UNIQUE,
			url         TEXT NOT NULL DEFAULT '',
			photo_url   TEXT NOT NULL DEFAULT '',
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			is_public   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS memberships (
			user_id     TEXT NOT NULL,
			channel_id  TEXT NOT NULL,
			role        TEXT NOT NULL,
			joined_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, channel_id)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS memberships_one_owner
			ON memberships (channel_id) WHERE role = 'owner'`,
		`CREATE TABLE IF NOT EXISTS membership_settings (
			user_id      TEXT NOT NULL,
			channel_id   TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (user_id, channel_id)
		)`,
		`CREATE TABLE IF NOT EXISTS device_settings (
			channel_id      TEXT PRIMARY KEY,
			webcam_for      TEXT NOT NULL,
			micro_for       TEXT NOT NULL,
			screenshare_for TEXT NOT NULL,
			record_for      TEXT NOT NULL,
			presenter       TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id          TEXT PRIMARY KEY,
			channel_id  TEXT NOT NULL,
			user_id     TEXT NOT NULL,
			text        TEXT NOT NULL,
			seq         BIGINT NOT NULL,
			sent_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS chat_messages_channel_seq
			ON chat_messages (channel_id, seq)`,
		`CREATE TABLE IF NOT EXISTS meeting_tokens (
			channel_id  TEXT PRIMARY KEY,
			token       TEXT NOT NULL,
			meeting_id  TEXT NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
