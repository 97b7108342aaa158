package domain

import "time"

type User struct {
	ID        UserID    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}
