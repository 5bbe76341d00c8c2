package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormRepository implements Repository on top of gorm. Production runs
// against postgres; tests open the same repository over sqlite.
type GormRepository struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// NewPostgresRepository opens a postgres-backed repository and migrates the
// schema. Tables are created idempotently, so startup against an existing
// database is a no-op.
func NewPostgresRepository(dsn string, logger logrus.FieldLogger) (*GormRepository, error) {
	return newGormRepository(postgres.Open(dsn), logger)
}

func newGormRepository(dialector gorm.Dialector, logger logrus.FieldLogger) (*GormRepository, error) {
	log := logger.WithField("component", "repository")

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.WithError(err).Error("Failed to open database")
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&User{}, &UserChatLink{}); err != nil {
		log.WithError(err).Error("Failed to migrate database schema")
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Info("Database opened and schema migrated")
	return &GormRepository{db: db, log: log}, nil
}

// Close releases the underlying sql.DB connection pool.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying connection: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		r.log.WithError(err).Error("Error closing database")
		return err
	}
	r.log.Info("Database closed")
	return nil
}

// SaveUser inserts a user record.
func (r *GormRepository) SaveUser(ctx context.Context, user User) error {
	result := r.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		r.log.WithError(result.Error).WithField("user_id", user.ID).Error("Failed to save user")
		return fmt.Errorf("failed to save user %s: %w", user.ID, result.Error)
	}
	return nil
}

// SaveLink inserts a shared-link record.
func (r *GormRepository) SaveLink(ctx context.Context, link UserChatLink) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	result := r.db.WithContext(ctx).Omit("User").Create(&link)
	if result.Error != nil {
		r.log.WithError(result.Error).WithFields(logrus.Fields{
			"user_id": link.UserID,
			"chat_id": link.ChatID,
			"link":    link.Link,
		}).Error("Failed to save link")
		return fmt.Errorf("failed to save link: %w", result.Error)
	}
	return nil
}

// GetUsers returns all known users.
func (r *GormRepository) GetUsers(ctx context.Context) ([]User, error) {
	var users []User
	result := r.db.WithContext(ctx).Find(&users)
	if result.Error != nil {
		r.log.WithError(result.Error).Error("Failed to get users")
		return nil, fmt.Errorf("failed to get users: %w", result.Error)
	}
	return users, nil
}

// GetLastWeekLinks returns the links shared in a chat during the last 7 days,
// ordered by creation time ascending and grouped per user. Group order
// follows each user's first share.
func (r *GormRepository) GetLastWeekLinks(ctx context.Context, chatID string) ([]UserLinks, error) {
	cutoff := time.Now().AddDate(0, 0, -7)

	var links []UserChatLink
	result := r.db.WithContext(ctx).
		Preload("User").
		Where("chat_id = ? AND created_at >= ?", chatID, cutoff).
		Order("created_at ASC").
		Find(&links)
	if result.Error != nil {
		r.log.WithError(result.Error).WithField("chat_id", chatID).Error("Failed to get last week links")
		return nil, fmt.Errorf("failed to get last week links for chat %s: %w", chatID, result.Error)
	}

	var grouped []UserLinks
	index := make(map[string]int)
	for _, link := range links {
		i, ok := index[link.UserID]
		if !ok {
			grouped = append(grouped, UserLinks{User: link.User})
			i = len(grouped) - 1
			index[link.UserID] = i
		}
		grouped[i].Links = append(grouped[i].Links, link)
	}

	return grouped, nil
}

// UserExists checks whether a user id is already registered.
func (r *GormRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Count(&count)
	if result.Error != nil {
		r.log.WithError(result.Error).WithField("user_id", userID).Error("Failed to check user existence")
		return false, fmt.Errorf("failed to check user %s: %w", userID, result.Error)
	}
	return count > 0, nil
}

// IsDuplicateLink reports whether the same link was already shared in the
// same chat during the last 7 days. All three conditions apply together.
func (r *GormRepository) IsDuplicateLink(ctx context.Context, link, chatID string) (bool, error) {
	cutoff := time.Now().AddDate(0, 0, -7)

	var count int64
	result := r.db.WithContext(ctx).Model(&UserChatLink{}).
		Where("chat_id = ? AND link = ? AND created_at >= ?", chatID, link, cutoff).
		Count(&count)
	if result.Error != nil {
		r.log.WithError(result.Error).WithFields(logrus.Fields{
			"chat_id": chatID,
			"link":    link,
		}).Error("Failed to check for duplicate link")
		return false, fmt.Errorf("failed to check duplicate link: %w", result.Error)
	}
	return count > 0, nil
}
