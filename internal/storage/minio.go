package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Minio stores each signature as an object prefix in one bucket.
type Minio struct {
	client *minio.Client
	bucket string
}

// NewMinio connects to the endpoint and creates the bucket if it is missing.
func NewMinio(ctx context.Context, cfg MinioConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Minio{client: client, bucket: cfg.Bucket}, nil
}

func (s *Minio) Dir(signature string) string {
	return signature
}

// Prepare reports created=false when objects already live under dir.
func (s *Minio) Prepare(ctx context.Context, dir string) (bool, error) {
	if err := checkName(dir); err != nil {
		return false, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: dir + "/", MaxKeys: 1}) {
		if obj.Err != nil {
			return false, obj.Err
		}
		return false, nil
	}
	return true, nil
}

func (s *Minio) Put(ctx context.Context, dir, name string, data []byte) error {
	if err := checkObject(dir, name); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, s.bucket, path.Join(dir, name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *Minio) Open(ctx context.Context, dir, name string) (*Object, error) {
	if err := checkObject(dir, name); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, path.Join(dir, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}

	return &Object{ReadCloser: obj, Size: info.Size, ModTime: info.LastModified}, nil
}

func (s *Minio) Exists(ctx context.Context, dir, name string) (bool, error) {
	if err := checkObject(dir, name); err != nil {
		return false, err
	}

	_, err := s.client.StatObject(ctx, s.bucket, path.Join(dir, name), minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Minio) Remove(ctx context.Context, dir, name string) error {
	if err := checkObject(dir, name); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, path.Join(dir, name), minio.RemoveObjectOptions{})
}

func (s *Minio) RemoveDir(ctx context.Context, dir string) error {
	if err := checkName(dir); err != nil {
		return err
	}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: dir + "/", Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove %s: %w", obj.Key, err)
		}
	}
	return nil
}

// checkObject requires dir to be a single top-level prefix segment.
func checkObject(dir, name string) error {
	if err := checkName(dir); err != nil {
		return err
	}
	return checkName(name)
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
