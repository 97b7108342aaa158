package ports

import (
	"context"

	"classhub/internal/core/domain"
)

// AccessService gates every state-mutating action on a channel-scoped
// role relation. Predicates are pure reads of current persisted state;
// false always means "not authorized", never an internal failure.
type AccessService interface {
	ResolveRole(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) domain.Role
	CanModifySettings(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool
	CanAssignPresenter(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool
	CanDelete(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool
	CanRenameOthers(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool
	CanPost(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) bool
}

type ChannelService interface {
	Create(ctx context.Context, actingUserID domain.UserID, title, url, photoURL string, public bool) (*domain.Channel, error)
	Get(ctx context.Context, id domain.ChannelID) (*domain.Channel, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Channel, error)
	Update(ctx context.Context, actingUserID domain.UserID, id domain.ChannelID, patch ChannelPatch) (*domain.Channel, error)
	Delete(ctx context.Context, actingUserID domain.UserID, id domain.ChannelID) error
	Connect(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) (*domain.Membership, error)
	Disconnect(ctx context.Context, userID domain.UserID, channelID domain.ChannelID) error
}

// ChannelPatch carries a partial channel update; nil fields are untouched.
type ChannelPatch struct {
	Title    *string `json:"title,omitempty"`
	URL      *string `json:"url,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
	Active   *bool   `json:"is_active,omitempty"`
	Public   *bool   `json:"is_public,omitempty"`
}

type ChatService interface {
	PostMessage(ctx context.Context, userID domain.UserID, channelID domain.ChannelID, text string) error
	History(ctx context.Context, channelID domain.ChannelID, limit int) ([]*domain.ChatMessage, error)
}

// SearchResult is one directory entry pushed back to a search connection.
type SearchResult struct {
	ID         domain.ChannelID `json:"id"`
	Title      string           `json:"title"`
	URL        string           `json:"url"`
	PhotoURL   string           `json:"photo_url"`
	Public     bool             `json:"is_public"`
	OwnerName  string           `json:"owner_name"`
	OwnerEmail string           `json:"owner_email"`
}

type SearchService interface {
	Query(ctx context.Context, queryText, scopeFilter, actingEmail string) ([]SearchResult, error)
}

type SettingsService interface {
	Get(ctx context.Context, channelID domain.ChannelID) (*domain.DeviceSettings, error)
	UpdateDeviceSettings(ctx context.Context, channelID domain.ChannelID, actingUserID domain.UserID, patch domain.DeviceSettingsPatch) (*domain.DeviceSettings, error)
	AssignPresenter(ctx context.Context, channelID domain.ChannelID, actingUserID, presenterID domain.UserID) (*domain.DeviceSettings, error)
	RenameMembership(ctx context.Context, channelID domain.ChannelID, actingUserID, targetUserID domain.UserID, displayName string) (*domain.MembershipSetting, error)
}

// MeetingProvider is the external video-meeting collaborator used only
// at channel-creation time.
type MeetingProvider interface {
	GetToken(ctx context.Context) (string, error)
	CreateMeeting(ctx context.Context, token string) (string, error)
	ValidateMeeting(ctx context.Context, token, meetingID string) (MeetingStatus, error)
}

type MeetingStatus struct {
	Disabled bool `json:"disabled"`
}
