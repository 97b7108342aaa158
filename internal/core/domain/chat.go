package domain

import "time"

// ChatMessage is one append-only chat log entry. Seq is assigned by the
// chat service at the serializing append, so ordering is a property of
// stored data rather than of delivery timing.
type ChatMessage struct {
	ID        string    `json:"id"`
	ChannelID ChannelID `json:"channel_id"`
	UserID    UserID    `json:"user_id"`
	Text      string    `json:"text"`
	Seq       int64     `json:"seq"`
	SentAt    time.Time `json:"sent_at"`
}
