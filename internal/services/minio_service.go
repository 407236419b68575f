package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"orgmanager/internal/domain"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioService interface {
	UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error
	GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context, bucketName string) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ObjectExists(ctx context.Context, bucketName, objectName string) (bool, error)
}

type minioClient struct {
	client *minio.Client
}

func NewMinioService(endpoint, accessKey, secretKey string, useSSL bool) (MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioClient{client: client}, nil
}

func (m *minioClient) UploadObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	_, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioClient) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioClient) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

func (m *minioClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return m.client.BucketExists(ctx, bucketName)
}

func (m *minioClient) ObjectExists(ctx context.Context, bucketName, objectName string) (bool, error) {
	_, err := m.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket":
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ArchiveExporter stores the final state of archived organizations.
type ArchiveExporter interface {
	Export(ctx context.Context, state domain.OrganizationState) (string, error)
	DownloadURL(ctx context.Context, organizationID uuid.UUID) (string, error)
	// Exported reports whether the archive object is present.
	Exported(ctx context.Context, organizationID uuid.UUID) (bool, error)
}

type archiveExporter struct {
	storage MinioService
	bucket  string
	expiry  time.Duration
}

func NewArchiveExporter(storage MinioService, bucket string, expiry time.Duration) ArchiveExporter {
	return &archiveExporter{storage: storage, bucket: bucket, expiry: expiry}
}

func archiveObjectName(organizationID uuid.UUID) string {
	return organizationID.String() + ".json"
}

// Export uploads the state as JSON and returns the object name.
func (a *archiveExporter) Export(ctx context.Context, state domain.OrganizationState) (string, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode archive: %w", err)
	}
	if err := a.storage.EnsureBucketExists(ctx, a.bucket); err != nil {
		return "", fmt.Errorf("ensure bucket %s: %w", a.bucket, err)
	}

	objectName := archiveObjectName(state.ID)
	if err := a.storage.UploadObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", fmt.Errorf("upload archive %s: %w", objectName, err)
	}
	return objectName, nil
}

func (a *archiveExporter) DownloadURL(ctx context.Context, organizationID uuid.UUID) (string, error) {
	return a.storage.GetPresignedURL(ctx, a.bucket, archiveObjectName(organizationID), a.expiry)
}

func (a *archiveExporter) Exported(ctx context.Context, organizationID uuid.UUID) (bool, error) {
	return a.storage.ObjectExists(ctx, a.bucket, archiveObjectName(organizationID))
}
