package storage

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"docraster/internal/adapters/storage/gdrive"
	"docraster/internal/adapters/storage/localfs"
	"docraster/internal/adapters/storage/s3"
	"docraster/internal/config"
)

// NewStore builds the configured object store backend. Configuration is
// injected rather than read from the environment here, so tests can
// construct providers directly.
func NewStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Provider {
	case "s3":
		return s3.New(s3.Options{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})

	case "localfs":
		if cfg.LocalRoot == "" {
			return nil, fmt.Errorf("storage: STORAGE_LOCAL_ROOT is required for localfs")
		}
		return localfs.New(cfg.LocalRoot), nil

	case "gdrive":
		return newGDriveStore(ctx, cfg.GDrive)

	default:
		return nil, fmt.Errorf("storage: unknown provider %q", cfg.Provider)
	}
}

func newGDriveStore(ctx context.Context, cfg config.GDriveConfig) (Store, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, fmt.Errorf("storage: gdrive requires client id, client secret and refresh token")
	}

	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	return gdrive.NewClient(srv, cfg.FolderID), nil
}
