package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/Lohit-Behera/canva/internal/logging"
	"github.com/Lohit-Behera/canva/internal/media"
	"github.com/Lohit-Behera/canva/internal/metrics"
)

// ObjectClient is the subset of *minio.Client the media store uses.
type ObjectClient interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// MinioStore is the media upload adapter. Objects are publicly readable and
// addressed as <publicURL>/<bucket>/<key>.
type MinioStore struct {
	client    ObjectClient
	bucket    string
	publicURL string
	memory    bool
	timeout   time.Duration
	log       zerolog.Logger
}

// MinioOptions configures NewMinioStore.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
	// Memory selects buffered uploads; otherwise files are uploaded from
	// their temp path.
	Memory bool
}

func NewMinioStore(ctx context.Context, opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists and is publicly readable
	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}
	if err := client.SetBucketPolicy(ctx, opts.Bucket, publicReadPolicy(opts.Bucket)); err != nil {
		return nil, fmt.Errorf("minio bucket policy: %w", err)
	}

	return NewMediaStore(client, opts), nil
}

// NewMediaStore builds the adapter around an existing object client.
func NewMediaStore(client ObjectClient, opts MinioOptions) *MinioStore {
	return &MinioStore{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		memory:    opts.Memory,
		timeout:   time.Minute,
		log:       logging.NewPackageLogger("store.minio"),
	}
}

// UploadFile stores f and returns its public URL and object key. Any failure
// yields empty strings. Local state (buffer or temp file) is always released.
func (s *MinioStore) UploadFile(ctx context.Context, f *media.File) (string, string) {
	if f == nil {
		return "", ""
	}
	defer func() {
		if err := f.Release(); err != nil {
			s.log.Warn().Err(err).Msg("release upload")
		}
	}()

	key := ObjectKey(f.ContentType)
	opts := minio.PutObjectOptions{ContentType: f.ContentType}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var err error
	switch {
	case s.memory && f.Buffer != nil:
		_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(f.Buffer), int64(len(f.Buffer)), opts)
	case !s.memory && f.Path != "":
		_, err = s.client.FPutObject(ctx, s.bucket, key, f.Path, opts)
	default:
		err = errors.New("upload has no data for the configured storage mode")
	}
	if err != nil {
		metrics.RecordMedia(metrics.UploadFailed)
		s.log.Error().Err(err).Str(logging.OBJECT, key).Msg("media upload failed")
		return "", ""
	}

	metrics.RecordMedia(metrics.UploadOK)
	return s.publicURL + "/" + s.bucket + "/" + key, key
}

// DeleteFile removes an object. Failures are logged, never returned.
func (s *MinioStore) DeleteFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		metrics.RecordMedia(metrics.DeleteFailed)
		s.log.Warn().Err(err).Str(logging.OBJECT, key).Msg("media delete failed")
		return
	}
	metrics.RecordMedia(metrics.DeleteOK)
}

// ObjectKey returns a unique key whose extension follows the validated
// content type, never the client's filename.
func ObjectKey(contentType string) string {
	ext, _ := media.Extension(contentType)
	return time.Now().UTC().Format("2006/01/02") + "/" + uuid.NewString() + ext
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
