package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageService persists uploaded documents. Files go to S3 when a
// bucket is configured, otherwise to a local uploads directory.
type StorageService struct {
	bucket  string
	dir     string
	client  *s3.Client
	presign *s3.PresignClient
}

// NewStorageService builds a StorageService from config.
func NewStorageService(region, bucket, uploadsDir string) *StorageService {
	svc := &StorageService{bucket: bucket, dir: uploadsDir}

	if bucket == "" {
		log.Printf("S3 bucket not configured, storing uploads under %s", uploadsDir)
		return svc
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		log.Printf("unable to load AWS config, storing uploads under %s: %v", uploadsDir, err)
		svc.bucket = ""
		return svc
	}

	svc.client = s3.NewFromConfig(cfg)
	svc.presign = s3.NewPresignClient(svc.client)
	return svc
}

// Save stores the file and returns the object key it was stored under.
func (s *StorageService) Save(ctx context.Context, file io.Reader, key, contentType string) (string, error) {
	if s.client != nil {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        file,
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload file to S3: %w", err)
		}
		return key, nil
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", err
	}
	return key, nil
}

// URL returns a presigned GET URL for an object key. When running on
// local storage it returns the filesystem path instead.
func (s *StorageService) URL(ctx context.Context, key string) (string, error) {
	if s.presign == nil {
		return filepath.Join(s.dir, filepath.FromSlash(key)), nil
	}

	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(1*time.Hour))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}

	return request.URL, nil
}
