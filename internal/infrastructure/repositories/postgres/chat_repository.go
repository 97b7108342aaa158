package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type chatMessageRow struct {
	ID        string    `db:"id"`
	ChannelID string    `db:"channel_id"`
	UserID    string    `db:"user_id"`
	Text      string    `db:"text"`
	Seq       int64     `db:"seq"`
	SentAt    time.Time `db:"sent_at"`
}

func (r chatMessageRow) toDomain() *domain.ChatMessage {
	return &domain.ChatMessage{
		ID:        r.ID,
		ChannelID: domain.ChannelID(r.ChannelID),
		UserID:    domain.UserID(r.UserID),
		Text:      r.Text,
		Seq:       r.Seq,
		SentAt:    r.SentAt,
	}
}

type PostgresChatMessageRepository struct {
	db *sqlx.DB
}

func NewPostgresChatMessageRepository(db *sqlx.DB) ports.ChatMessageRepository {
	return &PostgresChatMessageRepository{db: db}
}

func (r *PostgresChatMessageRepository) Append(ctx context.Context, msg *domain.ChatMessage) error {
	query, args, err := sq.Insert("chat_messages").
		Columns("id", "channel_id", "user_id", "text", "seq", "sent_at").
		Values(msg.ID, msg.ChannelID, msg.UserID, msg.Text, msg.Seq, msg.SentAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PostgresChatMessageRepository) ListByChannel(ctx context.Context, channelID domain.ChannelID, limit int) ([]*domain.ChatMessage, error) {
	builder := sq.Select("id", "channel_id", "user_id", "text", "seq", "sent_at").
		From("chat_messages").
		Where(sq.Eq{"channel_id": channelID}).
		OrderBy("seq DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var rows []chatMessageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	// Newest-first from the index, oldest-first for callers.
	result := make([]*domain.ChatMessage, len(rows))
	for i, row := range rows {
		result[len(rows)-1-i] = row.toDomain()
	}
	return result, nil
}

func (r *PostgresChatMessageRepository) LastSeq(ctx context.Context, channelID domain.ChannelID) (int64, error) {
	query, args, err := sq.Select("COALESCE(MAX(seq), 0)").
		From("chat_messages").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sql query: %v", err)
	}

	var seq int64
	if err := r.db.GetContext(ctx, &seq, query, args...); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *PostgresChatMessageRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	query, args, err := sq.Delete("chat_messages").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
