package repository

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores (user, message) like edges.
type LikeRepository interface {
	Toggle(ctx context.Context, userID, messageID uint) (bool, error)
	LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error)
	LikedMessages(ctx context.Context, userID uint) ([]models.Message, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the like edge for (userID, messageID) and reports whether the
// message is liked afterwards.
func (r *likeRepository) Toggle(ctx context.Context, userID, messageID uint) (bool, error) {
	defer observability.TrackQuery("toggle", "likes")()

	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND message_id = ?", userID, messageID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}

		// A concurrent toggle may have inserted the edge already.
		like := models.Like{UserID: userID, MessageID: messageID}
		if err := tx.Omit("User", "Message").
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&like).Error; err != nil {
			return err
		}
		liked = true
		return nil
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

func (r *likeRepository) LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ?", userID).
		Pluck("message_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// LikedMessages returns the messages userID liked, most recently liked first.
func (r *likeRepository) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN likes ON likes.message_id = messages.id").
		Where("likes.user_id = ?", userID).
		Order("likes.id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}
