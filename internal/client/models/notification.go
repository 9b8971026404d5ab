package models

import "time"

// Notification is one feed row as returned by the server.
type Notification struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
	Actor      *Profile  `json:"actor"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Entity     any       `json:"entity,omitempty"`
}

// Feed is one page of the notification feed.
type Feed struct {
	Page          int             `json:"page"`
	Limit         int             `json:"limit"`
	Total         int64           `json:"total"`
	Notifications []*Notification `json:"notifications"`
}

// UnreadCount is the payload of the push event announcing the unread tally.
type UnreadCount struct {
	NotificationCount int `json:"notificationCount"`
}

// PushEvent is the envelope of a websocket push.
type PushEvent struct {
	Name string      `json:"event"`
	Data UnreadCount `json:"data"`
}
