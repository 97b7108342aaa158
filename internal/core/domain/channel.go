package domain

import "time"

type ChannelID string
type UserID string

// Channel is a classroom room owned by exactly one user.
type Channel struct {
	ID        ChannelID `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	PhotoURL  string    `json:"photo_url"`
	Active    bool      `json:"is_active"`
	Public    bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

type Role string

const (
	RoleNone   Role = ""
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Membership grants a user a role inside one channel. The pair
// (UserID, ChannelID) is the composite key; at most one membership
// per channel may carry RoleOwner.
type Membership struct {
	UserID    UserID    `json:"user_id"`
	ChannelID ChannelID `json:"channel_id"`
	Role      Role      `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// MembershipSetting is the per-user display name override scoped to
// one channel. Created alongside the membership row.
type MembershipSetting struct {
	UserID      UserID    `json:"user_id"`
	ChannelID   ChannelID `json:"channel_id"`
	DisplayName string    `json:"display_name"`
}

// MeetingToken records the external provider's token and meeting id
// assigned to a channel at creation time.
type MeetingToken struct {
	ChannelID ChannelID `json:"channel_id"`
	Token     string    `json:"token"`
	MeetingID string    `json:"meeting_id"`
}
