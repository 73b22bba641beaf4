//go:build integration

package s3

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func TestStoreListsAndReadsAgainstMinIO(t *testing.T) {
	endpoint := envOr("NLSQL_TEST_S3_ENDPOINT", "")
	if endpoint == "" {
		t.Skip("NLSQL_TEST_S3_ENDPOINT is not set")
	}

	cfg := Config{
		Endpoint:        endpoint,
		Region:          envOr("NLSQL_TEST_S3_REGION", "us-east-1"),
		Bucket:          envOr("NLSQL_TEST_S3_BUCKET", "nlsql-it"),
		AccessKeyID:     envOr("NLSQL_TEST_S3_ACCESS_KEY", "minio"),
		SecretAccessKey: envOr("NLSQL_TEST_S3_SECRET_KEY", "miniostorage"),
		Prefix:          "integration-tests",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	raw, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Region: cfg.Region,
	})
	if err != nil {
		t.Fatalf("minio.New() error = %v", err)
	}
	exists, err := raw.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		t.Fatalf("BucketExists() error = %v", err)
	}
	if !exists {
		if err := raw.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			t.Fatalf("MakeBucket() error = %v", err)
		}
	}
	payload := []byte("name,relation\nMarge Simpson,wife of Homer\n")
	objectKey := "integration-tests/raw/simpsons_characters.csv"
	if _, err := raw.PutObject(ctx, cfg.Bucket, objectKey, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{ContentType: "text/csv"}); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	t.Cleanup(func() { _ = raw.RemoveObject(context.Background(), cfg.Bucket, objectKey, minio.RemoveObjectOptions{}) })

	store, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	objects, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	found := false
	for _, object := range objects {
		if object.Key == "raw/simpsons_characters.csv" {
			found = true
		}
	}
	if !found {
		t.Fatalf("List() = %#v, missing raw/simpsons_characters.csv", objects)
	}

	reader, err := store.Get(ctx, "raw/simpsons_characters.csv")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	readPayload, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("io.ReadAll() error = %v", err)
	}
	if err := reader.Close(); err != nil {
		t.Fatalf("reader.Close() error = %v", err)
	}
	if !bytes.Equal(readPayload, payload) {
		t.Fatalf("Get() payload = %q, want %q", string(readPayload), string(payload))
	}
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
