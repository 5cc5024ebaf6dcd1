package batchstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store lays batches out as S3 objects under a configurable prefix,
// mirroring FileStore's three-blob-per-batch layout as object keys instead
// of filesystem paths.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3StoreConfig configures S3Store. Endpoint is optional, for MinIO or
// LocalStack during local testing.
type S3StoreConfig struct {
	Bucket   string
	Region   string
	Endpoint string
	Prefix   string
}

// NewS3Store constructs an S3-backed Store.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("batchstore: load AWS config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, clientOpts),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *S3Store) key(batchNumber uint32, name string) string {
	return s.prefix + "batches/" + strconv.FormatUint(uint64(batchNumber), 10) + "/" + name
}

func (s *S3Store) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("batchstore: s3 put %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("batchstore: s3 get %s: %w", key, err)
	}
	defer func() { _ = result.Body.Close() }()
	return io.ReadAll(result.Body)
}

func (s *S3Store) WriteWindow(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.key(batchNumber, "signed-validity-window"), data)
}

func (s *S3Store) ReadWindow(ctx context.Context, batchNumber uint32) ([]byte, error) {
	return s.get(ctx, s.key(batchNumber, "signed-validity-window"))
}

func (s *S3Store) WriteAssertions(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.key(batchNumber, "assertions"), data)
}

func (s *S3Store) ReadAssertions(ctx context.Context, batchNumber uint32) ([]byte, error) {
	return s.get(ctx, s.key(batchNumber, "assertions"))
}

func (s *S3Store) WriteCertificates(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.key(batchNumber, "certificates"), data)
}

func (s *S3Store) OpenCertificateStream(ctx context.Context, batchNumber uint32) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(batchNumber, "certificates")),
	})
	if err != nil {
		return nil, fmt.Errorf("batchstore: s3 get certificates: %w", err)
	}
	return result.Body, nil
}

// Latest writes/reads a small "latest" object. Since S3 offers no atomic
// compare-and-swap, concurrent issuers racing SetLatest should pair this
// backend with RedisPointer for strict linearizability.
func (s *S3Store) Latest(ctx context.Context) (uint32, bool, error) {
	key := s.prefix + "batches/latest"
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return 0, false, nil
	}
	data, err := s.get(ctx, key)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("batchstore: malformed latest pointer: %w", err)
	}
	return uint32(n), true, nil
}

func (s *S3Store) SetLatest(ctx context.Context, batchNumber uint32) error {
	return s.put(ctx, s.prefix+"batches/latest", []byte(strconv.FormatUint(uint64(batchNumber), 10)))
}
