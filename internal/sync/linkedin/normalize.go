package linkedin

import (
	"strings"
	"time"

	syncdomain "hushh-backend/internal/sync/domain"

	"github.com/lib/pq"
)

// postPayload mirrors the fields this service reads from the versioned
// /rest/posts representation.
type postPayload struct {
	ID          string `json:"id"`
	Commentary  string `json:"commentary"`
	CreatedAt   int64  `json:"createdAt"`
	PublishedAt int64  `json:"publishedAt"`
	Visibility  string `json:"visibility"`

	LifecycleState string `json:"lifecycleState"`

	Content *struct {
		Article *struct {
			Source      string `json:"source"`
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"article"`
		Media *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"media"`
		MultiImage *struct {
			Images []struct {
				ID string `json:"id"`
			} `json:"images"`
		} `json:"multiImage"`
	} `json:"content"`

	AdContext *struct {
		IsDsc bool `json:"isDsc"`
	} `json:"adContext"`
}

func (p *postPayload) createdTime() time.Time {
	millis := p.PublishedAt
	if millis == 0 {
		millis = p.CreatedAt
	}
	if millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

// Normalize maps a raw post payload onto the storage model.
func Normalize(p *postPayload, userID, authorName string) *syncdomain.LinkedInPost {
	post := &syncdomain.LinkedInPost{
		UserID:      userID,
		PostID:      p.ID,
		Content:     p.Commentary,
		PostType:    determinePostType(p),
		Visibility:  p.Visibility,
		AuthorName:  authorName,
		MediaURLs:   extractMediaRefs(p),
		IsSponsored: p.AdContext != nil && p.AdContext.IsDsc,
		PostedAt:    p.createdTime(),
		SyncedAt:    time.Now(),
	}

	if p.Content != nil && p.Content.Article != nil {
		post.ArticleURL = p.Content.Article.Source
		post.ArticleTitle = p.Content.Article.Title
		post.ArticleDescription = p.Content.Article.Description
	}
	return post
}

// determinePostType classifies by attached content, falling back to text.
func determinePostType(p *postPayload) string {
	if p.Content == nil {
		return "text"
	}
	switch {
	case p.Content.Article != nil:
		return "article"
	case p.Content.MultiImage != nil:
		return "image"
	case p.Content.Media != nil:
		return mediaType(p.Content.Media.ID)
	default:
		return "text"
	}
}

// mediaType classifies a media URN: urn:li:image:..., urn:li:video:...,
// urn:li:document:....
func mediaType(urn string) string {
	switch {
	case strings.Contains(urn, ":image:"):
		return "image"
	case strings.Contains(urn, ":video:"):
		return "video"
	case strings.Contains(urn, ":document:"):
		return "document"
	default:
		return "text"
	}
}

// extractMediaRefs collects media URNs attached to the post. LinkedIn returns
// URNs here, not resolvable URLs; the app resolves them on demand.
func extractMediaRefs(p *postPayload) pq.StringArray {
	refs := pq.StringArray{}
	if p.Content == nil {
		return refs
	}
	if p.Content.Media != nil && p.Content.Media.ID != "" {
		refs = append(refs, p.Content.Media.ID)
	}
	if p.Content.MultiImage != nil {
		for _, image := range p.Content.MultiImage.Images {
			if image.ID != "" {
				refs = append(refs, image.ID)
			}
		}
	}
	return refs
}
