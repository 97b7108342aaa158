package memory

import (
	"context"
	"sync"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
)

type membershipKey struct {
	userID    domain.UserID
	channelID domain.ChannelID
}

type MemoryMembershipRepository struct {
	memberships map[membershipKey]*domain.Membership
	mu          sync.RWMutex
}

func NewMemoryMembershipRepository() ports.MembershipRepository {
	return &MemoryMembershipRepository{
		memberships: make(map[membershipKey]*domain.Membership),
	}
}

func (r *MemoryMembershipRepository) Create(ctx context.Context, m *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey{m.UserID, m.ChannelID}
	if _, exists := r.memberships[key]; exists {
		return domain.ErrDuplicateUser
	}

	if m.Role == domain.RoleOwner {
		for _, existing := range r.memberships {
			if existing.ChannelID == m.ChannelID && existing.Role == domain.RoleOwner {
				return domain.ErrDuplicateOwner
			}
		}
	}

	clone := *m
	r.memberships[key] = &clone
	return nil
}

func (r *MemoryMembershipRepository) Get(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.memberships[membershipKey{userID, channelID}]
	if !exists {
		return nil, domain.ErrMembershipNotFound
	}

	clone := *m
	return &clone, nil
}

func (r *MemoryMembershipRepository) Delete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := membershipKey{userID, channelID}
	if _, exists := r.memberships[key]; !exists {
		return domain.ErrMembershipNotFound
	}

	delete(r.memberships, key)
	return nil
}

func (r *MemoryMembershipRepository) DeleteByChannel(ctx context.Context, channelID domain.ChannelID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.memberships {
		if key.channelID == channelID {
			delete(r.memberships, key)
		}
	}
	return nil
}

func (r *MemoryMembershipRepository) FindByChannel(ctx context.Context, channelID domain.ChannelID) ([]*domain.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Membership
	for _, m := range r.memberships {
		if m.ChannelID == channelID {
			clone := *m
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *MemoryMembershipRepository) FindByUser(ctx context.Context, userID domain.UserID) ([]*domain.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Membership
	for _, m := range r.memberships {
		if m.UserID == userID {
			clone := *m
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *MemoryMembershipRepository) FindOwner(ctx context.Context, channelID domain.ChannelID) (*domain.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.memberships {
		if m.ChannelID == channelID && m.Role == domain.RoleOwner {
			clone := *m
			return &clone, nil
		}
	}
	return nil, domain.ErrMembershipNotFound
}
