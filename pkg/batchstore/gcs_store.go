//go:build gcp

package batchstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"cloud.google.com/go/storage"
)

// GCSStore lays batches out as GCS objects under a configurable prefix,
// mirroring FileStore's three-blob-per-batch layout.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSStoreConfig configures GCSStore.
type GCSStoreConfig struct {
	Bucket string
	Prefix string
}

// NewGCSStore constructs a GCS-backed Store, authenticating via Application
// Default Credentials.
func NewGCSStore(ctx context.Context, cfg GCSStoreConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("batchstore: create GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *GCSStore) objectPath(batchNumber uint32, name string) string {
	return s.prefix + "batches/" + strconv.FormatUint(uint64(batchNumber), 10) + "/" + name
}

func (s *GCSStore) put(ctx context.Context, path string, data []byte) error {
	obj := s.client.Bucket(s.bucket).Object(path)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("batchstore: gcs write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("batchstore: gcs close %s: %w", path, err)
	}
	return nil
}

func (s *GCSStore) get(ctx context.Context, path string) ([]byte, error) {
	reader, err := s.client.Bucket(s.bucket).Object(path).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("batchstore: gcs get %s: %w", path, err)
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}

func (s *GCSStore) WriteWindow(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.objectPath(batchNumber, "signed-validity-window"), data)
}

func (s *GCSStore) ReadWindow(ctx context.Context, batchNumber uint32) ([]byte, error) {
	return s.get(ctx, s.objectPath(batchNumber, "signed-validity-window"))
}

func (s *GCSStore) WriteAssertions(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.objectPath(batchNumber, "assertions"), data)
}

func (s *GCSStore) ReadAssertions(ctx context.Context, batchNumber uint32) ([]byte, error) {
	return s.get(ctx, s.objectPath(batchNumber, "assertions"))
}

func (s *GCSStore) WriteCertificates(ctx context.Context, batchNumber uint32, data []byte) error {
	return s.put(ctx, s.objectPath(batchNumber, "certificates"), data)
}

func (s *GCSStore) OpenCertificateStream(ctx context.Context, batchNumber uint32) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucket).Object(s.objectPath(batchNumber, "certificates")).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("batchstore: gcs get certificates: %w", err)
	}
	return reader, nil
}

func (s *GCSStore) Latest(ctx context.Context) (uint32, bool, error) {
	path := s.prefix + "batches/latest"
	obj := s.client.Bucket(s.bucket).Object(path)
	if _, err := obj.Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("batchstore: gcs attrs %s: %w", path, err)
	}
	data, err := s.get(ctx, path)
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("batchstore: malformed latest pointer: %w", err)
	}
	return uint32(n), true, nil
}

func (s *GCSStore) SetLatest(ctx context.Context, batchNumber uint32) error {
	return s.put(ctx, s.prefix+"batches/latest", []byte(strconv.FormatUint(uint64(batchNumber), 10)))
}

// Close closes the underlying GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
