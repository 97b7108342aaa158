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

type meetingTokenRow struct {
	ChannelID string `db:"channel_id"`
	Token     string `db:"token"`
	MeetingID string `db:"meeting_id"`
}

type PostgresMeetingTokenRepository struct {
	db *sqlx.DB
}

func NewPostgresMeetingTokenRepository(db *sqlx.DB) ports.MeetingTokenRepository {
	return &PostgresMeetingTokenRepository{db: db}
}

func (r *PostgresMeetingTokenRepository) Create(ctx context.Context, t *domain.MeetingToken) error {
	query, args, err := sq.Insert("meeting_tokens").
		Columns("channel_id", "token", "meeting_id").
		Values(t.ChannelID, t.Token, t.MeetingID).
		Suffix("ON CONFLICT (channel_id) DO UPDATE SET token = EXCLUDED.token, meeting_id = EXCLUDED.meeting_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PostgresMeetingTokenRepository) GetByChannel(ctx context.Context, channelID domain.ChannelID) (*domain.MeetingToken, error) {
	query, args, err := sq.Select("channel_id", "token", "meeting_id").
		From("meeting_tokens").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row meetingTokenRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, err
	}
	return &domain.MeetingToken{
		ChannelID: domain.ChannelID(row.ChannelID),
		Token:     row.Token,
		MeetingID: row.MeetingID,
	}, nil
}

func (r *PostgresMeetingTokenRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	query, args, err := sq.Delete("meeting_tokens").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
