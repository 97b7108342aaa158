package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type deviceSettingsRow struct {
	ChannelID string `db:"channel_id"`
	WebcamFor string `db:"webcam_for"`
	MicroFor  string `db:"micro_for"`
	ScreenFor string `db:"screenshare_for"`
	RecordFor string `db:"record_for"`
	Presenter string `db:"presenter"`
}

func (r deviceSettingsRow) toDomain() *domain.DeviceSettings {
	return &domain.DeviceSettings{
		ChannelID: domain.ChannelID(r.ChannelID),
		WebcamFor: domain.DeviceOption(r.WebcamFor),
		MicroFor:  domain.DeviceOption(r.MicroFor),
		ScreenFor: domain.DeviceOption(r.ScreenFor),
		RecordFor: domain.DeviceOption(r.RecordFor),
		Presenter: domain.UserID(r.Presenter),
	}
}

type PostgresDeviceSettingsRepository struct {
	db *sqlx.DB
}

func NewPostgresDeviceSettingsRepository(db *sqlx.DB) ports.DeviceSettingsRepository {
	return &PostgresDeviceSettingsRepository{db: db}
}

func (r *PostgresDeviceSettingsRepository) Create(ctx context.Context, s *domain.DeviceSettings) error {
	query, args, err := sq.Insert("device_settings").
		Columns("channel_id", "webcam_for", "micro_for", "screenshare_for", "record_for", "presenter").
		Values(s.ChannelID, s.WebcamFor, s.MicroFor, s.ScreenFor, s.RecordFor, s.Presenter).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateUser
	}
	return err
}

func (r *PostgresDeviceSettingsRepository) Get(ctx context.Context, channelID domain.ChannelID) (*domain.DeviceSettings, error) {
	query, args, err := sq.Select("channel_id", "webcam_for", "micro_for", "screenshare_for", "record_for", "presenter").
		From("device_settings").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row deviceSettingsRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresDeviceSettingsRepository) Update(ctx context.Context, s *domain.DeviceSettings) error {
	query, args, err := sq.Update("device_settings").
		Set("webcam_for", s.WebcamFor).
		Set("micro_for", s.MicroFor).
		Set("screenshare_for", s.ScreenFor).
		Set("record_for", s.RecordFor).
		Set("presenter", s.Presenter).
		Where(sq.Eq{"channel_id": s.ChannelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrSettingsNotFound
	}
	return nil
}

func (r *PostgresDeviceSettingsRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	query, args, err := sq.Delete("device_settings").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
