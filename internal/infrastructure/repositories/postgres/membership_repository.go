package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type membershipRow struct {
	UserID    string    `db:"user_id"`
	ChannelID string    `db:"channel_id"`
	Role      string    `db:"role"`
	JoinedAt  time.Time `db:"joined_at"`
}

func (r membershipRow) toDomain() *domain.Membership {
	return &domain.Membership{
		UserID:    domain.UserID(r.UserID),
		ChannelID: domain.ChannelID(r.ChannelID),
		Role:      domain.Role(r.Role),
		JoinedAt:  r.JoinedAt,
	}
}

type PostgresMembershipRepository struct {
	db *sqlx.DB
}

func NewPostgresMembershipRepository(db *sqlx.DB) ports.MembershipRepository {
	return &PostgresMembershipRepository{db: db}
}

func (r *PostgresMembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	query, args, err := sq.Insert("memberships").
		Columns("user_id", "channel_id", "role", "joined_at").
		Values(m.UserID, m.ChannelID, m.Role, m.JoinedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		if violatedConstraint(err) == "memberships_one_owner" {
			return domain.ErrDuplicateOwner
		}
		return domain.ErrDuplicateUser
	}
	return err
}

func (r *PostgresMembershipRepository) Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.Membership, error) {
	query, args, err := sq.Select("user_id", "channel_id", "role", "joined_at").
		From("memberships").
		Where(sq.Eq{"user_id": userID, "channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row membershipRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresMembershipRepository) Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error {
	query, args, err := sq.Delete("memberships").
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
		return domain.ErrMembershipNotFound
	}
	return nil
}

func (r *PostgresMembershipRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	query, args, err := sq.Delete("memberships").
		Where(sq.Eq{"channel_id": channelID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *PostgresMembershipRepository) FindByChannel(ctx context.Context, channelID domain.ChannelID) ([]*domain.Membership, error) {
	return r.selectMemberships(ctx, sq.Eq{"channel_id": channelID})
}

func (r *PostgresMembershipRepository) FindByUser(ctx context.Context, userID domain.UserID) ([]*domain.Membership, error) {
	return r.selectMemberships(ctx, sq.Eq{"user_id": userID})
}

func (r *PostgresMembershipRepository) FindOwner(ctx context.Context, channelID domain.ChannelID) (*domain.Membership, error) {
	query, args, err := sq.Select("user_id", "channel_id", "role", "joined_at").
		From("memberships").
		Where(sq.Eq{"channel_id": channelID, "role": domain.RoleOwner}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var row membershipRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMembershipNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresMembershipRepository) selectMemberships(ctx context.Context, pred sq.Eq) ([]*domain.Membership, error) {
	query, args, err := sq.Select("user_id", "channel_id", "role", "joined_at").
		From("memberships").
		Where(pred).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var rows []membershipRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	result := make([]*domain.Membership, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toDomain())
	}
	return result, nil
}
