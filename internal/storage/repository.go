package storage

import (
	"context"
	"time"
)

// User is a chat-platform user who has shared at least one link.
// The primary key is the platform's own user id, not a surrogate.
type User struct {
	ID        string `gorm:"primaryKey"`
	Username  string
	FirstName string
	LastName  string
}

// UserChatLink records the fact "user X shared link Y in chat Z at time T".
// CreatedAt is set at insertion time and never mutated. There is deliberately
// no unique constraint on (user, chat, link): duplicate detection is a
// query-time check, so a race between check and insert can store a duplicate.
type UserChatLink struct {
	ID        uint `gorm:"primaryKey"`
	Link      string
	LinkType  int
	CreatedAt time.Time
	ChatID    string
	UserID    string
	User      User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// UserLinks pairs a user with their links for one chat, links in share order.
type UserLinks struct {
	User  User
	Links []UserChatLink
}

// Repository defines the persistence operations the bot needs. The gorm
// implementation is the only one; the interface keeps the bot handler
// testable and the backend swappable.
type Repository interface {
	// SaveUser inserts a user record.
	SaveUser(ctx context.Context, user User) error

	// SaveLink inserts a shared-link record. CreatedAt defaults to now
	// when zero.
	SaveLink(ctx context.Context, link UserChatLink) error

	// GetUsers returns all known users.
	GetUsers(ctx context.Context) ([]User, error)

	// GetLastWeekLinks returns the links shared in a chat during the last
	// 7 days, grouped per user, each user's links ordered by creation time
	// ascending.
	GetLastWeekLinks(ctx context.Context, chatID string) ([]UserLinks, error)

	// UserExists checks whether a user id is already registered.
	UserExists(ctx context.Context, userID string) (bool, error)

	// IsDuplicateLink reports whether the same link was already shared in
	// the same chat during the last 7 days, regardless of who shared it.
	IsDuplicateLink(ctx context.Context, link, chatID string) (bool, error)

	// Close releases the underlying database connection.
	Close() error
}
