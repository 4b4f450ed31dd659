package repository

import (
	"time"

	syncdomain "hushh-backend/internal/sync/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DriveRepository defines persistence for synced Drive file metadata
type DriveRepository interface {
	UpsertBatch(files []*syncdomain.DriveFile) error
	CountByUser(userID string) (int64, error)
}

type driveRepository struct {
	db *gorm.DB
}

func NewDriveRepository(db *gorm.DB) DriveRepository {
	return &driveRepository{
		db: db,
	}
}

func (r *driveRepository) UpsertBatch(files []*syncdomain.DriveFile) error {
	if len(files) == 0 {
		return nil
	}

	now := time.Now()
	for _, file := range files {
		if file.ID == "" {
			file.ID = uuid.New().String()
		}
		file.UpdatedAt = now
	}

	for i := 0; i < len(files); i += upsertChunkSize {
		end := i + upsertChunkSize
		if end > len(files) {
			end = len(files)
		}

		err := r.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "file_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "mime_type", "size", "web_view_link", "thumbnail_link",
				"icon_link", "shared", "trashed", "owner_email",
				"created_time", "modified_time", "synced_at", "updated_at",
			}),
		}).Create(files[i:end]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *driveRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&syncdomain.DriveFile{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
