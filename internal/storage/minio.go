package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"cv-analyzer/config"
	apperrors "cv-analyzer/pkg/errors"
)

const objectPrefix = "cvs/"

// MinioStore keeps documents in a MinIO (S3-compatible) bucket under cvs/<id>.
type MinioStore struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

func NewMinioStore(ctx context.Context, cfg *config.MinioConfig, log *zap.Logger) (*MinioStore, error) {
	if log == nil {
		log = zap.NewNop()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connection: %w", err)
	}

	s := &MinioStore{client: client, bucket: cfg.Bucket, log: log}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		s.log.Info("created bucket", zap.String("bucket", s.bucket))
	}
	return nil
}

func (s *MinioStore) objectName(id string) string {
	return objectPrefix + id
}

func (s *MinioStore) Put(ctx context.Context, id string, data []byte, contentType, filename string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := minio.PutObjectOptions{ContentType: contentType}
	if filename != "" {
		opts.UserMetadata = map[string]string{"filename": filename}
	}
	_, err := s.client.PutObject(ctx, s.bucket, s.objectName(id),
		bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return apperrors.WrapError(err, apperrors.ErrDependency.Code, "upload object", http.StatusBadGateway)
	}
	s.log.Info("file uploaded", zap.String("cv_id", id), zap.Int("size", len(data)))
	return nil
}

func (s *MinioStore) Get(ctx context.Context, id string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.objectName(id), minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code, "download object", http.StatusBadGateway)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// GetObject is lazy; a missing key surfaces here
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, apperrors.WrapError(err, apperrors.ErrNotFound.Code,
				fmt.Sprintf("document %s not found", id), http.StatusNotFound)
		}
		return nil, apperrors.WrapError(err, apperrors.ErrDependency.Code, "download object", http.StatusBadGateway)
	}

	stat, err := obj.Stat()
	contentType := "application/octet-stream"
	filename := ""
	if err == nil {
		if stat.ContentType != "" {
			contentType = stat.ContentType
		}
		// S3 canonicalizes user metadata keys
		if v, ok := stat.UserMetadata["Filename"]; ok {
			filename = v
		} else if v, ok := stat.UserMetadata["filename"]; ok {
			filename = v
		}
	}

	return &Object{Data: data, ContentType: contentType, Filename: filename}, nil
}

func (s *MinioStore) Delete(ctx context.Context, id string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(id), minio.RemoveObjectOptions{}); err != nil {
		return apperrors.WrapError(err, apperrors.ErrDependency.Code, "delete object", http.StatusBadGateway)
	}
	s.log.Info("file deleted", zap.String("cv_id", id))
	return nil
}

func (s *MinioStore) Ready(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s missing", s.bucket)
	}
	return nil
}
