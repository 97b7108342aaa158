package services

import (
	"context"
	"testing"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	apperrors "classhub/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsService(repos *testRepos) ports.SettingsService {
	log := testLogger()
	access := NewAccessService(repos.memberships, log)
	return NewSettingsService(access, repos.device, repos.memberships, repos.memberPrefs, log)
}

func seedSettingsFixture(ctx context.Context, repos *testRepos) {
	repos.seedUser(ctx, "u1", "alice@example.com", "Alice")
	repos.seedUser(ctx, "u2", "bob@example.com", "Bob")
	repos.seedChannel(ctx, "c1", "Algebra 101", "u1")
	repos.addMember(ctx, "u2", "c1")
}

func TestGetSettingsNotFound(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	svc := newSettingsService(repos)

	_, err := svc.Get(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetAppError(err).Code)
}

func TestUpdateDeviceSettingsPartialPatch(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	svc := newSettingsService(repos)

	webcam := domain.DeviceOwner
	updated, err := svc.UpdateDeviceSettings(ctx, "c1", "u1", domain.DeviceSettingsPatch{
		WebcamFor: &webcam,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceOwner, updated.WebcamFor)

	// Untouched fields keep their defaults.
	assert.Equal(t, domain.DeviceEveryone, updated.MicroFor)
	assert.Equal(t, domain.DevicePresenter, updated.ScreenFor)
	assert.Equal(t, domain.DeviceOwner, updated.RecordFor)

	stored, err := repos.device.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceOwner, stored.WebcamFor)
}

func TestUpdateDeviceSettingsRejectsBadOption(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	svc := newSettingsService(repos)

	bad := domain.DeviceOption("admins")
	_, err := svc.UpdateDeviceSettings(ctx, "c1", "u1", domain.DeviceSettingsPatch{
		MicroFor: &bad,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMalformedInput, apperrors.GetAppError(err).Code)

	stored, err := repos.device.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceEveryone, stored.MicroFor)
}

func TestUpdateDeviceSettingsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	svc := newSettingsService(repos)

	webcam := domain.DeviceOwner
	_, err := svc.UpdateDeviceSettings(ctx, "c1", "u2", domain.DeviceSettingsPatch{
		WebcamFor: &webcam,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotAuthorized, apperrors.GetAppError(err).Code)
}

func TestAssignPresenterRequiresMembership(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	repos.seedUser(ctx, "u3", "carol@example.com", "Carol")
	svc := newSettingsService(repos)

	_, err := svc.AssignPresenter(ctx, "c1", "u1", "u3")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMalformedInput, apperrors.GetAppError(err).Code)

	updated, err := svc.AssignPresenter(ctx, "c1", "u1", "u2")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u2"), updated.Presenter)
}

func TestAssignPresenterClears(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	svc := newSettingsService(repos)

	_, err := svc.AssignPresenter(ctx, "c1", "u1", "u2")
	require.NoError(t, err)

	updated, err := svc.AssignPresenter(ctx, "c1", "u1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID(""), updated.Presenter)
}

func TestAssignPresenterOwnerOnly(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	svc := newSettingsService(repos)

	_, err := svc.AssignPresenter(ctx, "c1", "u2", "u2")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotAuthorized, apperrors.GetAppError(err).Code)
}

func TestRenameMembershipSelf(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	require.NoError(t, repos.memberPrefs.Create(ctx, &domain.MembershipSetting{
		UserID: "u2", ChannelID: "c1", DisplayName: "Bob",
	}))
	svc := newSettingsService(repos)

	setting, err := svc.RenameMembership(ctx, "c1", "u2", "u2", "Bobby")
	require.NoError(t, err)
	assert.Equal(t, "Bobby", setting.DisplayName)
}

func TestRenameOthersOwnerOnly(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	require.NoError(t, repos.memberPrefs.Create(ctx, &domain.MembershipSetting{
		UserID: "u1", ChannelID: "c1", DisplayName: "Alice",
	}))
	require.NoError(t, repos.memberPrefs.Create(ctx, &domain.MembershipSetting{
		UserID: "u2", ChannelID: "c1", DisplayName: "Bob",
	}))
	svc := newSettingsService(repos)

	// A member cannot rename the owner.
	_, err := svc.RenameMembership(ctx, "c1", "u2", "u1", "Someone Else")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotAuthorized, apperrors.GetAppError(err).Code)

	// The owner can rename a member.
	setting, err := svc.RenameMembership(ctx, "c1", "u1", "u2", "Robert")
	require.NoError(t, err)
	assert.Equal(t, "Robert", setting.DisplayName)
}

func TestRenameRejectsNonMemberActor(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	repos.seedUser(ctx, "u3", "carol@example.com", "Carol")
	svc := newSettingsService(repos)

	_, err := svc.RenameMembership(ctx, "c1", "u3", "u3", "Caroline")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNotAuthorized, apperrors.GetAppError(err).Code)
}

func TestRenameValidatesDisplayName(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	seedSettingsFixture(ctx, repos)
	require.NoError(t, repos.memberPrefs.Create(ctx, &domain.MembershipSetting{
		UserID: "u2", ChannelID: "c1", DisplayName: "Bob",
	}))
	svc := newSettingsService(repos)

	_, err := svc.RenameMembership(ctx, "c1", "u2", "u2", "   ")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeMalformedInput, apperrors.GetAppError(err).Code)
}
