package config

import (
	"context"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// NewMinIO connects to object storage and makes sure the group image bucket
// exists before the server accepts uploads.
func NewMinIO(config *koanf.Koanf, log *zap.Logger) *minio.Client {
	client, err := minio.New(config.String("MINIO_URL"), &minio.Options{
		Creds:  credentials.NewStaticV4(config.String("MINIO_USER"), config.String("MINIO_PASSWORD"), ""),
		Secure: strings.HasPrefix(config.String("MINIO_HTTP"), "https"),
		Region: config.String("MINIO_LOCATION"),
	})
	if err != nil {
		log.Fatal("failed to initialize minio client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bucket := config.String("MINIO_BUCKET_NAME")
	err = ensureBucket(ctx, client, bucket, config.String("MINIO_LOCATION"))
	if err != nil {
		log.Fatal("failed to prepare minio bucket", zap.String("bucket", bucket), zap.Error(err))
	}

	log.Info("minio bucket ready", zap.String("bucket", bucket))

	return client
}

func ensureBucket(ctx context.Context, client *minio.Client, bucket string, location string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: location})
}
