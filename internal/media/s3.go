package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Config configures the S3 media store.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`

	// Endpoint overrides the S3 endpoint for S3-compatible services.
	Endpoint string `yaml:"endpoint"`

	// PublicBaseURL, when set, is joined with the object key to form the
	// returned URL instead of the upload location.
	PublicBaseURL string `yaml:"public_base_url"`
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store uploads images to an S3 bucket with the SDK upload manager.
type S3Store struct {
	cfg    S3Config
	up     uploader
	logger *slog.Logger
	newKey func(ext string) string
}

// NewS3Store loads AWS credentials from the default chain and returns a
// store writing to cfg.Bucket.
func NewS3Store(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(cfg, manager.NewUploader(client), logger), nil
}

func newS3Store(cfg S3Config, up uploader, logger *slog.Logger) *S3Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &S3Store{
		cfg:    cfg,
		up:     up,
		logger: logger.With("component", "media-s3", "bucket", cfg.Bucket),
		newKey: func(ext string) string {
			return path.Join(cfg.Prefix, uuid.New().String()+ext)
		},
	}
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	mediaType, err := checkImage(filename, contentType)
	if err != nil {
		return "", err
	}
	key := s.newKey(strings.ToLower(path.Ext(filename)))

	out, err := s.up.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(mediaType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s to s3: %w", key, err)
	}
	s.logger.Info("image uploaded", "key", key)

	if s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + key, nil
	}
	return out.Location, nil
}
