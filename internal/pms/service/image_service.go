package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ImageService 单元图片存储服务
type ImageService struct {
	minioClient   *minio.Client
	bucketName    string
	publicBaseURL string
	logger        *zap.Logger
}

// NewImageService 创建图片服务
func NewImageService(minioClient *minio.Client, bucketName, publicBaseURL string, logger *zap.Logger) *ImageService {
	return &ImageService{
		minioClient:   minioClient,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// Upload 上传单元图片，返回可公开访问的URL和存储对象名
func (s *ImageService) Upload(ctx context.Context, unitID, fileName string, reader io.Reader, fileSize int64, contentType string) (string, string, error) {
	if s.minioClient == nil {
		return "", "", fmt.Errorf("storage not configured")
	}

	objectName := newObjectName(unitID, fileName)

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("upload image: %w", err)
	}

	return s.publicURL(objectName), objectName, nil
}

// newObjectName 生成按单元和日期分目录的对象名，避免同名文件互相覆盖
func newObjectName(unitID, fileName string) string {
	return fmt.Sprintf("units/%s/%s/%s%s",
		unitID, time.Now().Format("2006/01/02"), uuid.New().String()[:8], filepath.Ext(fileName))
}

func (s *ImageService) publicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucketName, objectName)
}

// Remove 按URL删除图片对象。对象已不存在时视为成功。
func (s *ImageService) Remove(ctx context.Context, url string) error {
	if s.minioClient == nil {
		return nil
	}

	objectName, ok := s.objectNameFromURL(url)
	if !ok {
		s.logger.Warn("image url not under managed bucket, skip remove", zap.String("url", url))
		return nil
	}

	if err := s.minioClient.RemoveObject(ctx, s.bucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

// objectNameFromURL 从公开URL还原对象名
func (s *ImageService) objectNameFromURL(url string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.publicBaseURL, s.bucketName)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// Download 按URL读取图片对象
func (s *ImageService) Download(ctx context.Context, url string) (io.ReadCloser, error) {
	if s.minioClient == nil {
		return nil, fmt.Errorf("storage not configured")
	}
	objectName, ok := s.objectNameFromURL(url)
	if !ok {
		return nil, fmt.Errorf("image url not under managed bucket")
	}
	object, err := s.minioClient.GetObject(ctx, s.bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return object, nil
}
