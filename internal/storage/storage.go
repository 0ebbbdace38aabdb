// Package storage archives fetched transcripts in object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/config"
	"github.com/therealutkarshpriyadarshi/tubenotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/tubenotes/pkg/models"
)

const contentTypeJSON = "application/json"

// Archive keeps one JSON object per video
type Archive struct {
	client     *minio.Client
	bucketName string
}

// New creates a new archive client and ensures the bucket exists
func New(cfg config.StorageConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &Archive{
		client:     client,
		bucketName: cfg.BucketName,
	}, nil
}

// ObjectName returns the object key of a video's transcript
func ObjectName(videoID string) string {
	return "transcripts/" + videoID + ".json"
}

// Put stores a transcript, replacing any previous copy
func (a *Archive) Put(ctx context.Context, videoID string, t *models.Transcript) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageOperation("put", err, time.Since(start).Seconds())
	}()

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	_, err = a.client.PutObject(ctx, a.bucketName, ObjectName(videoID), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentTypeJSON,
	})
	if err != nil {
		return fmt.Errorf("failed to upload transcript: %w", err)
	}

	return nil
}

// Get loads an archived transcript. A missing object is reported as absent.
func (a *Archive) Get(ctx context.Context, videoID string) (_ *models.Transcript, _ bool, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordStorageOperation("get", err, time.Since(start).Seconds())
	}()

	object, err := a.client.GetObject(ctx, a.bucketName, ObjectName(videoID), minio.GetObjectOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("failed to download transcript: %w", err)
	}
	defer object.Close()

	var t models.Transcript
	if err := json.NewDecoder(object).Decode(&t); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to decode transcript: %w", err)
	}

	return &t, true, nil
}

// Delete removes a video's archived transcript
func (a *Archive) Delete(ctx context.Context, videoID string) error {
	err := a.client.RemoveObject(ctx, a.bucketName, ObjectName(videoID), minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete transcript: %w", err)
	}

	return nil
}

func isNotFound(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
