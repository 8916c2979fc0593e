package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"records-portal-api/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MaxAttachmentSize is the upload limit for document attachments.
const MaxAttachmentSize int64 = 10 * 1024 * 1024

var allowedAttachmentTypes = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// AttachmentStore saves an uploaded file and returns the reference stored in
// the document's file_path column.
type AttachmentStore interface {
	Save(ctx context.Context, filename string, body io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, ref string) error
}

// ValidateAttachment checks the upload size and extension.
func ValidateAttachment(filename string, size int64) error {
	if size <= 0 {
		return validationError("attachment is empty")
	}
	if size > MaxAttachmentSize {
		return validationError("file size exceeds 10MB limit")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAttachmentTypes[ext] {
		return validationError("file type %q not allowed", ext)
	}
	return nil
}

// attachmentName builds the stored object name: yyyy/mm/<uuid><ext>.
func attachmentName(filename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(now.UTC().Format("2006"), now.UTC().Format("01"), uuid.NewString()+ext)
}

// NewAttachmentStore picks the backend from STORAGE_BACKEND.
func NewAttachmentStore(ctx context.Context, cfg config.Config) (AttachmentStore, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return NewLocalAttachmentStore(cfg.UploadPath)
	case "minio":
		return NewMinioAttachmentStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
}

// LocalAttachmentStore writes files below a root directory.
type LocalAttachmentStore struct {
	root string
	now  func() time.Time
}

func NewLocalAttachmentStore(root string) (*LocalAttachmentStore, error) {
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(filepath.Join(root, "rms"), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalAttachmentStore{root: root, now: time.Now}, nil
}

func (s *LocalAttachmentStore) Save(ctx context.Context, filename string, body io.Reader, size int64, _ string) (string, error) {
	if err := ValidateAttachment(filename, size); err != nil {
		return "", err
	}
	ref := path.Join("rms", attachmentName(filename, s.now()))
	full := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create attachment dir: %w", err)
	}

	out, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}
	written, err := io.Copy(out, io.LimitReader(body, MaxAttachmentSize+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > MaxAttachmentSize {
		err = validationError("file size exceeds 10MB limit")
	}
	if err != nil {
		os.Remove(full)
		return "", err
	}
	return ref, nil
}

func (s *LocalAttachmentStore) Remove(_ context.Context, ref string) error {
	clean := path.Clean("/" + ref)
	if !strings.HasPrefix(clean, "/rms/") {
		return validationError("attachment reference %q outside store", ref)
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

// MinioAttachmentStore keeps attachments in an S3-compatible bucket. The
// returned reference has the form minio://bucket/object.
type MinioAttachmentStore struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

func NewMinioAttachmentStore(ctx context.Context, cfg config.Config) (*MinioAttachmentStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT is required for the minio storage backend")
	}
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}
	return &MinioAttachmentStore{client: client, bucket: cfg.MinioBucket, now: time.Now}, nil
}

func (s *MinioAttachmentStore) Save(ctx context.Context, filename string, body io.Reader, size int64, contentType string) (string, error) {
	if err := ValidateAttachment(filename, size); err != nil {
		return "", err
	}
	object := attachmentName(filename, s.now())
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.client.PutObject(ctx, s.bucket, object, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("upload attachment: %w", err)
	}
	return fmt.Sprintf("minio://%s/%s", s.bucket, object), nil
}

func (s *MinioAttachmentStore) Remove(ctx context.Context, ref string) error {
	prefix := fmt.Sprintf("minio://%s/", s.bucket)
	if !strings.HasPrefix(ref, prefix) {
		return validationError("attachment reference %q outside bucket %s", ref, s.bucket)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, strings.TrimPrefix(ref, prefix), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}
