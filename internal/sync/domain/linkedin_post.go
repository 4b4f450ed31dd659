package domain

import (
	"time"

	"github.com/lib/pq"
)

// LinkedInPost is one synced post authored by the connected member.
type LinkedInPost struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index:idx_user_post,unique;not null"`
	PostID string `json:"post_id" gorm:"index:idx_user_post,unique;not null"`

	Content  string `json:"content"`
	PostType string `json:"post_type"` // text, article, image, video, document

	Visibility     string `json:"visibility"`
	AuthorName     string `json:"author_name"`
	AuthorHeadline string `json:"author_headline"`

	LikeCount    int `json:"like_count"`
	CommentCount int `json:"comment_count"`
	ShareCount   int `json:"share_count"`

	MediaURLs          pq.StringArray `json:"media_urls" gorm:"type:text[]"`
	ArticleURL         string         `json:"article_url"`
	ArticleTitle       string         `json:"article_title"`
	ArticleDescription string         `json:"article_description"`

	Language    string `json:"language"`
	IsSponsored bool   `json:"is_sponsored"`

	PostedAt  time.Time `json:"posted_at" gorm:"index"`
	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LinkedInPost) TableName() string {
	return "linkedin_posts"
}

func (p *LinkedInPost) VendorID() string {
	return p.PostID
}
