package storage

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-platform/config"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrNotConfigured  = errors.New("storage backend is not configured")
)

// Storage stores binary objects under string keys and returns the public url of each
// object it writes.
type Storage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	URL(key string) string
	IsConfigured() bool
	Name() string
}

// GenerateKey builds a collision-free key under prefix keeping only the lower-cased
// extension of the client supplied name.
func GenerateKey(prefix, originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return path.Join(prefix, uuid.NewString()+ext)
}

// ContentType uses the extension of name for streaming formats and sniffs data otherwise.
func ContentType(data []byte, name string) string {
	if byExt := extensionMime(name); byExt != "" {
		return byExt
	}
	return mimetype.Detect(data).String()
}

func extensionMime(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return ""
}

// UploadDirectory writes every file below localPath under remotePrefix.
func UploadDirectory(ctx context.Context, s Storage, localPath, remotePrefix string) error {
	return filepath.Walk(localPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		relativePath, err := filepath.Rel(localPath, p)
		if err != nil {
			return err
		}

		objectName := path.Join(remotePrefix, filepath.ToSlash(relativePath))

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		_, err = s.Put(ctx, objectName, data, ContentType(data, p))
		return err
	})
}

// New builds the configured backend. A remote backend without credentials falls back
// to the local filesystem.
func New(ctx context.Context, cfg *config.Storage) (Storage, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "storage").Logger()

	switch cfg.Backend {
	case "minio":
		if cfg.MinIO.IsConfigured() {
			client, err := config.NewMinIOClient(&cfg.MinIO)
			if err != nil {
				return nil, err
			}
			return NewMinIOStorage(ctx, client, cfg.MinIO.Bucket, cfg.MinIO.PublicURL)
		}
		logger.Warn().Msg("minio credentials are not set; falling back to local storage")
	case "s3":
		if cfg.S3.IsConfigured() {
			client, err := config.NewS3Client(ctx, &cfg.S3)
			if err != nil {
				return nil, err
			}
			return NewS3Storage(client, cfg.S3), nil
		}
		logger.Warn().Msg("s3 bucket or credentials are not set; falling back to local storage")
	case "", "local":
	default:
		logger.Warn().Str("backend", cfg.Backend).Msg("unknown storage backend; using local storage")
	}

	return NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
}
