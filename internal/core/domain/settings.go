package domain

// DeviceOption says which members of a channel may use a device.
type DeviceOption string

const (
	DeviceEveryone  DeviceOption = "everyone"
	DevicePresenter DeviceOption = "presenter"
	DeviceOwner     DeviceOption = "owner"
)

// ValidDeviceOption reports whether v is one of the permitted values.
func ValidDeviceOption(v DeviceOption) bool {
	switch v {
	case DeviceEveryone, DevicePresenter, DeviceOwner:
		return true
	}
	return false
}

// DeviceSettings is the per-channel device-permission matrix plus the
// current presenter pointer. An empty Presenter means nobody presents.
type DeviceSettings struct {
	ChannelID   ChannelID    `json:"channel_id"`
	WebcamFor   DeviceOption `json:"webcam_for"`
	MicroFor    DeviceOption `json:"micro_for"`
	ScreenFor   DeviceOption `json:"screenshare_for"`
	RecordFor   DeviceOption `json:"record_for"`
	Presenter   UserID       `json:"presenter,omitempty"`
}

// DefaultDeviceSettings returns the matrix a channel starts with.
func DefaultDeviceSettings(channelID ChannelID) *DeviceSettings {
	return &DeviceSettings{
		ChannelID: channelID,
		WebcamFor: DeviceEveryone,
		MicroFor:  DeviceEveryone,
		ScreenFor: DevicePresenter,
		RecordFor: DeviceOwner,
	}
}

// DeviceSettingsPatch carries a partial update; nil fields are untouched.
type DeviceSettingsPatch struct {
	WebcamFor *DeviceOption `json:"webcam_for,omitempty"`
	MicroFor  *DeviceOption `json:"micro_for,omitempty"`
	ScreenFor *DeviceOption `json:"screenshare_for,omitempty"`
	RecordFor *DeviceOption `json:"record_for,omitempty"`
}
