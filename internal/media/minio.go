package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/shenikar/binalert/pkg/imagedata"
)

// MinioStore загружает фотографии в бакет MinIO/S3
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(client *minio.Client, bucket string) *MinioStore {
	return &MinioStore{
		client: client,
		bucket: bucket,
	}
}

// ObjectName возвращает ключ объекта для фотографии отчета
func ObjectName(reportID, mimeType string) string {
	return fmt.Sprintf("reports/%s.%s", reportID, imagedata.Extension(mimeType))
}

// Save декодирует изображение, загружает его и возвращает URL объекта
func (s *MinioStore) Save(ctx context.Context, reportID string, image string) (string, error) {
	mimeType, data, err := imagedata.Decode(image)
	if err != nil {
		return "", fmt.Errorf("media: %w", err)
	}

	objectName := ObjectName(reportID, mimeType)
	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("media: failed to upload %s: %w", objectName, err)
	}

	endpoint := s.client.EndpointURL()
	return fmt.Sprintf("%s://%s/%s/%s", endpoint.Scheme, endpoint.Host, s.bucket, objectName), nil
}
