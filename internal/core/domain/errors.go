package domain

import "errors"

var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrSettingsNotFound   = errors.New("settings not found")
	ErrTokenNotFound      = errors.New("meeting token not found")
	ErrDuplicateTitle     = errors.New("channel title already taken")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrDuplicateOwner     = errors.New("channel already has an owner")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotMember          = errors.New("user is not a member of the channel")
	ErrMeetingDisabled    = errors.New("meeting is disabled by the provider")
)
