package helpers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// BrochureSigner hands out short-lived read URLs for listing brochures kept in
// a private bucket.
type BrochureSigner struct {
	client *storage.Client
	bucket string
	ttl    time.Duration
}

func NewBrochureSigner(client *storage.Client, bucket string, ttl time.Duration) *BrochureSigner {
	return &BrochureSigner{client: client, bucket: bucket, ttl: ttl}
}

func (s *BrochureSigner) SignedURL(_ context.Context, object string) (string, error) {
	if s == nil || s.client == nil || s.bucket == "" {
		return "", errors.New("brochure storage not configured")
	}
	u, err := s.client.Bucket(s.bucket).SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: time.Now().Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", object, err)
	}
	return u, nil
}
