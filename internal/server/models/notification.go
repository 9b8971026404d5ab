package models

import "time"

// Notification types. Closed enumeration; producers pick one.
const (
	NotificationComment           = "COMMENT"
	NotificationReply             = "REPLY"
	NotificationLike              = "LIKE"
	NotificationBlogUpdate        = "BLOG_UPDATE"
	NotificationPermissionRequest = "PERMISSION_REQUEST"
	NotificationSystem            = "SYSTEM"
)

// Entity kinds a notification may reference. The entity itself is resolved
// lazily when the feed is listed.
const (
	EntityBlog    = "Blog"
	EntityComment = "Comment"
	EntityUser    = "User"
)

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	ActorID     string    `json:"actorId,omitempty"` // empty for system notifications
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	EntityType  string    `json:"entityType,omitempty"`
	EntityID    string    `json:"entityId,omitempty"`
	IsRead      bool      `json:"isRead"`
	CreatedAt   time.Time `json:"createdAt"`

	// Actor carries the joined actor profile when listing the feed.
	Actor *Profile `json:"actor,omitempty"`
}
