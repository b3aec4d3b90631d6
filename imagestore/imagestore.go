// Package imagestore writes rendered images to local disk, Google Cloud
// Storage, or S3.
package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uploadTimeout = 2 * time.Minute

type Scheme string

const (
	Local Scheme = "file"
	GCS   Scheme = "gs"
	S3    Scheme = "s3"
)

// Location names where an image goes.  For Local, Key is a filesystem path
// and Bucket is empty.
type Location struct {
	Scheme Scheme
	Bucket string
	Key    string
}

func (l Location) String() string {
	if l.Scheme == Local {
		return l.Key
	}
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}

// WithKey returns the same bucket with a different key.
func (l Location) WithKey(key string) Location {
	l.Key = key
	return l
}

// Parse accepts gs://bucket/key, s3://bucket/key, or a plain path.
func Parse(dest string) (Location, error) {
	for _, scheme := range []Scheme{GCS, S3} {
		prefix := string(scheme) + "://"
		if !strings.HasPrefix(dest, prefix) {
			continue
		}
		rest := strings.TrimPrefix(dest, prefix)
		slash := strings.Index(rest, "/")
		if slash <= 0 || slash == len(rest)-1 {
			return Location{}, fmt.Errorf("destination %q needs both a bucket and an object key", dest)
		}
		return Location{Scheme: scheme, Bucket: rest[:slash], Key: rest[slash+1:]}, nil
	}
	if strings.Contains(dest, "://") {
		return Location{}, fmt.Errorf("destination %q has an unsupported scheme", dest)
	}
	if dest == "" {
		return Location{}, fmt.Errorf("empty destination")
	}
	return Location{Scheme: Local, Key: dest}, nil
}

// IsPNG reports whether key names a PNG image rather than a raw raster.
func IsPNG(key string) bool {
	return strings.EqualFold(path.Ext(key), ".png")
}

func ContentType(key string) string {
	if IsPNG(key) {
		return "image/png"
	}
	return "application/octet-stream"
}

// ThumbnailKey derives the key for a PNG thumbnail of key.
//
//	renders/out.raster -> renders/out.thumb.png
func ThumbnailKey(key string) string {
	return strings.TrimSuffix(key, path.Ext(key)) + ".thumb.png"
}

type Store interface {
	Put(ctx context.Context, key string, data []byte) error
}

// FileStore writes to the local filesystem.  Keys are paths.
type FileStore struct{}

func (FileStore) Put(ctx context.Context, key string, data []byte) error {
	if dir := filepath.Dir(key); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("while creating directory for %q: %w", key, err)
		}
	}
	if err := os.WriteFile(key, data, 0644); err != nil {
		return fmt.Errorf("while writing %q: %w", key, err)
	}
	glog.Infof("Wrote %s (%d bytes)", key, len(data))
	return nil
}

type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (g *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	tracer := otel.Tracer("whitted/imagestore")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GCSStore.Put")
	defer span.End()
	span.SetAttributes(attribute.String("bucket", g.bucket), attribute.String("key", key))

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = ContentType(key)

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("while writing to object writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("while closing object writer: %w", err)
	}

	glog.Infof("Uploaded gs://%s/%s (%d bytes)", g.bucket, key, len(data))
	return nil
}

type S3Store struct {
	client s3iface.S3API
	bucket string
}

func NewS3Store(client s3iface.S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) error {
	tracer := otel.Tracer("whitted/imagestore")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "S3Store.Put")
	defer span.End()
	span.SetAttributes(attribute.String("bucket", s.bucket), attribute.String("key", key))

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType(key)),
	})
	if err != nil {
		return fmt.Errorf("while uploading s3://%s/%s: %w", s.bucket, key, err)
	}

	glog.Infof("Uploaded s3://%s/%s (%d bytes)", s.bucket, key, len(data))
	return nil
}
