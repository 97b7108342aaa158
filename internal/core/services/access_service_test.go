package services

import (
	"context"
	"testing"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"

	"github.com/stretchr/testify/assert"
)

func newAccessService(repos *testRepos) ports.AccessService {
	return NewAccessService(repos.memberships, testLogger())
}

func TestResolveRole(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedUser(ctx, "u2", "bob@example.com", "Bob")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")
	repos.addMember(ctx, "u2", "c1")
	svc := newAccessService(repos)

	assert.Equal(t, domain.RoleOwner, svc.ResolveRole(ctx, "u1", "c1"))
	assert.Equal(t, domain.RoleMember, svc.ResolveRole(ctx, "u2", "c1"))
	assert.Equal(t, domain.RoleNone, svc.ResolveRole(ctx, "u3", "c1"))
	assert.Equal(t, domain.RoleNone, svc.ResolveRole(ctx, "u1", "missing"))
}

func TestOwnerGates(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedUser(ctx, "u2", "bob@example.com", "Bob")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")
	repos.addMember(ctx, "u2", "c1")
	svc := newAccessService(repos)

	assert.True(t, svc.CanModifySettings(ctx, "u1", "c1"))
	assert.True(t, svc.CanAssignPresenter(ctx, "u1", "c1"))
	assert.True(t, svc.CanDelete(ctx, "u1", "c1"))
	assert.True(t, svc.CanRenameOthers(ctx, "u1", "c1"))

	assert.False(t, svc.CanModifySettings(ctx, "u2", "c1"))
	assert.False(t, svc.CanAssignPresenter(ctx, "u2", "c1"))
	assert.False(t, svc.CanDelete(ctx, "u2", "c1"))
	assert.False(t, svc.CanRenameOthers(ctx, "u2", "c1"))
}

func TestCanPost(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedUser(ctx, "u2", "bob@example.com", "Bob")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")
	repos.addMember(ctx, "u2", "c1")
	svc := newAccessService(repos)

	assert.True(t, svc.CanPost(ctx, "u1", "c1"))
	assert.True(t, svc.CanPost(ctx, "u2", "c1"))
	assert.False(t, svc.CanPost(ctx, "u3", "c1"))
	assert.False(t, svc.CanPost(ctx, "", "c1"))
}
