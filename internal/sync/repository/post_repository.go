package repository

import (
	"time"

	syncdomain "hushh-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence for synced LinkedIn posts
type PostRepository interface {
	UpsertBatch(posts []*syncdomain.LinkedInPost) error
	ExistingPostIDs(userID string, postIDs []string) ([]string, error)
	LatestPostedAt(userID string) (*time.Time, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db: db,
	}
}

func (r *postRepository) UpsertBatch(posts []*syncdomain.LinkedInPost) error {
	if len(posts) == 0 {
		return nil
	}

	now := time.Now()
	for _, post := range posts {
		if post.ID == "" {
			post.ID = uuid.New().String()
		}
		post.UpdatedAt = now
	}

	for i := 0; i < len(posts); i += upsertChunkSize {
		end := i + upsertChunkSize
		if end > len(posts) {
			end = len(posts)
		}

		err := r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"content", "post_type", "visibility",
				"author_name", "author_headline",
				"like_count", "comment_count", "share_count",
				"media_urls", "article_url", "article_title", "article_description",
				"language", "is_sponsored", "synced_at", "updated_at",
			}),
		}).Create(posts[i:end]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postRepository) ExistingPostIDs(userID string, postIDs []string) ([]string, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var existing []string
	err := r.db.Model(&syncdomain.LinkedInPost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &existing).Error
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *postRepository) LatestPostedAt(userID string) (*time.Time, error) {
	var post syncdomain.LinkedInPost
	err := r.db.Where("user_id = ?", userID).Order("posted_at DESC").First(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &post.PostedAt, nil
}
