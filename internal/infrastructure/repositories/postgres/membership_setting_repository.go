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

type membershipSettingRow struct {
	UserID      string `db:"user_id"`
	ChannelID   string `db:"channel_id"`
	DisplayName string `db:"display_name"`
}

func (r membershipSettingRow) toDomain() *domain.MembershipSetting {
	return &domain.MembershipSetting{
		UserID:      domain.UserID(r.UserID),
		ChannelID:   domain.ChannelID(r.ChannelID),
		DisplayName: r.DisplayName,
	}
}

type PostgresMembershipSettingRepository struct {
	db *sqlx.DB
}

func NewPostgresMembershipSettingRepository(db *sqlx.DB) ports.MembershipSettingRepository {
	return &PostgresMembershipSettingRepository{db: db}
}

func (r *PostgresMembershipSettingRepository) Create(ctx context.Context, s *domain.MembershipSetting) error {
	query, args, err := sq.Insert("membership_settings").
		Columns("user_id", "channel_id", "display_name").
		Values(s.UserID, s.ChannelID, s.DisplayName).
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

func (r *PostgresMembershipSettingRepository) Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.MembershipSetting, error) {
	query, args, err := sq.Select("user_id", "channel_id", "display_name").
		From("membership_settings").
		Where(sq.Eq{"user_id": userID, "channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row membershipSettingRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresMembershipSettingRepository) Update(ctx context.Context, s *domain.MembershipSetting) error {
	query, args, err := sq.Update("membership_settings").
		Set("display_name", s.DisplayName).
		Where(sq.Eq{"user_id": s.UserID, "channel_id": s.ChannelID}).
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

func (r *PostgresMembershipSettingRepository) Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error {
	query, args, err := sq.Delete("membership_settings").
		Where(sq.Eq{"user_id": userID, "channel_id": channelID}).
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

func (r *PostgresMembershipSettingRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	query, args, err := sq.Delete("membership_settings").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
