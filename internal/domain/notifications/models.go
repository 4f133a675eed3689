package notifications

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Recipient struct {
	UserID string
	Email  string
}
