package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

const uniqueViolation = "23505"

type channelRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	URL       string    `db:"url"`
	PhotoURL  string    `db:"photo_url"`
	Active    bool      `db:"is_active"`
	Public    bool      `db:"is_public"`
	CreatedAt time.Time `db:"created_at"`
}

func (r channelRow) toDomain() *domain.Channel {
	return &domain.Channel{
		ID:        domain.ChannelID(r.ID),
		Title:     r.Title,
		URL:       r.URL,
		PhotoURL:  r.PhotoURL,
		Active:    r.Active,
		Public:    r.Public,
		CreatedAt: r.CreatedAt,
	}
}

type PostgresChannelRepository struct {
	db *sqlx.DB
}

func NewPostgresChannelRepository(db *sqlx.DB) ports.ChannelRepository {
	return &PostgresChannelRepository{db: db}
}

func (r *PostgresChannelRepository) Create(ctx context.Context, channel *domain.Channel) error {
	query, args, err := sq.Insert("channels").
		Columns("id", "title", "url", "photo_url", "is_active", "is_public", "created_at").
		Values(channel.ID, channel.Title, channel.URL, channel.PhotoURL, channel.Active, channel.Public, channel.CreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateTitle
	}
	return err
}

func (r *PostgresChannelRepository) GetByID(ctx context.Context, id domain.ChannelID) (*domain.Channel, error) {
	return r.getBy(ctx, sq.Eq{"id": id})
}

func (r *PostgresChannelRepository) GetByTitle(ctx context.Context, title string) (*domain.Channel, error) {
	return r.getBy(ctx, sq.Eq{"title": title})
}

func (r *PostgresChannelRepository) getBy(ctx context.Context, pred sq.Eq) (*domain.Channel, error) {
	query, args, err := sq.Select("id", "title", "url", "photo_url", "is_active", "is_public", "created_at").
		From("channels").
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row channelRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresChannelRepository) Update(ctx context.Context, channel *domain.Channel) error {
	query, args, err := sq.Update("channels").
		Set("title", channel.Title).
		Set("url", channel.URL).
		Set("photo_url", channel.PhotoURL).
		Set("is_active", channel.Active).
		Set("is_public", channel.Public).
		Where(sq.Eq{"id": channel.ID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateTitle
	}
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrChannelNotFound
	}
	return nil
}

func (r *PostgresChannelRepository) Delete(ctx context.Context, id domain.ChannelID) error {
	query, args, err := sq.Delete("channels").
		Where(sq.Eq{"id": id}).
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
		return domain.ErrChannelNotFound
	}
	return nil
}

func (r *PostgresChannelRepository) List(ctx context.Context, offset, limit int) ([]*domain.Channel, error) {
	builder := sq.Select("id", "title", "url", "photo_url", "is_active", "is_public", "created_at").
		From("channels").
		OrderBy("created_at ASC", "id ASC").
		Offset(uint64(offset))
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return r.selectChannels(ctx, builder)
}

func (r *PostgresChannelRepository) ListAll(ctx context.Context) ([]*domain.Channel, error) {
	builder := sq.Select("id", "title", "url", "photo_url", "is_active", "is_public", "created_at").
		From("channels").
		OrderBy("created_at ASC", "id ASC")

	return r.selectChannels(ctx, builder)
}

func (r *PostgresChannelRepository) selectChannels(ctx context.Context, builder sq.SelectBuilder) ([]*domain.Channel, error) {
	query, args, err := builder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var rows []channelRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	channels := make([]*domain.Channel, 0, len(rows))
	for _, row := range rows {
		channels = append(channels, row.toDomain())
	}
	return channels, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func violatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
