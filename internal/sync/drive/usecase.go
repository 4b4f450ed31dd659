package drive

import (
	"context"
	"fmt"
	"log"
	"time"

	accountdomain "hushh-backend/internal/account/domain"
	accountrepo "hushh-backend/internal/account/repository"
	accountusecase "hushh-backend/internal/account/usecase"
	syncdomain "hushh-backend/internal/sync/domain"
	"hushh-backend/internal/sync/engine"
	syncrepo "hushh-backend/internal/sync/repository"

	"golang.org/x/oauth2"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	filePageSize = 100
	// maxPages caps a full-metadata sweep so a giant Drive cannot stall the
	// request. 10 pages covers the 1000 most recently modified files.
	maxPages = 10

	fileFields = "nextPageToken, files(id, name, mimeType, size, webViewLink, thumbnailLink, iconLink, shared, trashed, createdTime, modifiedTime, owners(emailAddress))"
)

// SyncSummary reports what one Drive sync run stored.
type SyncSummary struct {
	Files int `json:"files"`
}

// ConnectionStatus reports the Drive connection and how much is stored.
type ConnectionStatus struct {
	Connected bool                           `json:"connected"`
	Account   *accountdomain.ProviderAccount `json:"account"`
	FileCount int64                          `json:"file_count"`
}

// Usecase syncs Drive file metadata, most recently modified first.
type Usecase interface {
	Sync(ctx context.Context, userID string) (*SyncSummary, error)
	Status(userID string) (*ConnectionStatus, error)
}

type usecase struct {
	accounts    accountrepo.AccountRepository
	tokens      accountusecase.TokenUsecase
	files       syncrepo.DriveRepository
	serviceOpts []option.ClientOption
}

func NewUsecase(accounts accountrepo.AccountRepository, tokens accountusecase.TokenUsecase, files syncrepo.DriveRepository, opts ...option.ClientOption) Usecase {
	return &usecase{
		accounts:    accounts,
		tokens:      tokens,
		files:       files,
		serviceOpts: opts,
	}
}

func (u *usecase) Status(userID string) (*ConnectionStatus, error) {
	account, err := u.accounts.FindByUserAndProvider(userID, accountdomain.ProviderDrive)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, engine.ErrAccountNotFound
	}
	count, err := u.files.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	return &ConnectionStatus{
		Connected: account.IsConnected,
		Account:   account,
		FileCount: count,
	}, nil
}

func (u *usecase) Sync(ctx context.Context, userID string) (*SyncSummary, error) {
	account, err := u.accounts.FindByUserAndProvider(userID, accountdomain.ProviderDrive)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, engine.ErrAccountNotFound
	}
	if !account.IsConnected {
		return nil, engine.ErrNotConnected
	}

	token, err := u.tokens.GetValidToken(ctx, account)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}, u.serviceOpts...)
	srv, err := driveapi.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	total := 0
	pageToken := ""

	for page := 0; page < maxPages; page++ {
		call := srv.Files.List().
			PageSize(filePageSize).
			Fields(fileFields).
			OrderBy("modifiedTime desc").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list drive files: %w", err)
		}

		files := make([]*syncdomain.DriveFile, 0, len(resp.Files))
		for _, f := range resp.Files {
			files = append(files, normalizeFile(f, account.UserID, now))
		}
		if err := u.files.UpsertBatch(files); err != nil {
			return nil, err
		}
		total += len(files)

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if err := u.accounts.UpdateCursor(account.ID, "", now); err != nil {
		return nil, err
	}

	log.Printf("[DRIVE] Synced %d files for user %s", total, userID)
	return &SyncSummary{Files: total}, nil
}

func normalizeFile(f *driveapi.File, userID string, syncedAt time.Time) *syncdomain.DriveFile {
	file := &syncdomain.DriveFile{
		UserID:        userID,
		FileID:        f.Id,
		Name:          f.Name,
		MimeType:      f.MimeType,
		Size:          f.Size,
		WebViewLink:   f.WebViewLink,
		ThumbnailLink: f.ThumbnailLink,
		IconLink:      f.IconLink,
		Shared:        f.Shared,
		Trashed:       f.Trashed,
		SyncedAt:      syncedAt,
	}
	if len(f.Owners) > 0 {
		file.OwnerEmail = f.Owners[0].EmailAddress
	}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		file.CreatedTime = &t
	}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		file.ModifiedTime = &t
	}
	return file
}
