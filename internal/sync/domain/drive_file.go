package domain

import "time"

// DriveFile is metadata for one Google Drive file visible to the user.
type DriveFile struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index:idx_user_file,unique;not null"`
	FileID string `json:"file_id" gorm:"index:idx_user_file,unique;not null"`

	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`

	WebViewLink   string `json:"web_view_link"`
	ThumbnailLink string `json:"thumbnail_link"`
	IconLink      string `json:"icon_link"`
	Shared        bool   `json:"shared"`
	Trashed       bool   `json:"trashed"`
	OwnerEmail    string `json:"owner_email"`

	CreatedTime  *time.Time `json:"created_time"`
	ModifiedTime *time.Time `json:"modified_time" gorm:"index"`

	SyncedAt  time.Time `json:"synced_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DriveFile) TableName() string {
	return "drive_files"
}

func (f *DriveFile) VendorID() string {
	return f.FileID
}
