// Package storage implements the blob store on Supabase Storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore uploads files to one public bucket.
type SupabaseStore struct {
	client  *storage_go.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewSupabaseStore(supabaseURL, serviceKey, bucket string) *SupabaseStore {
	baseURL := strings.TrimRight(supabaseURL, "/")
	return &SupabaseStore{
		client:  storage_go.NewClient(baseURL+"/storage/v1", serviceKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Upload stores data under folder/<unix millis>-<sanitized filename> and returns
// its public URL.
func (s *SupabaseStore) Upload(ctx context.Context, folder, filename, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	storagePath := fmt.Sprintf("%s/%d-%s", folder, s.now().UnixMilli(), SanitizeFileName(filename))
	upsert := false
	cacheControl := "3600"
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType:  &contentType,
		Upsert:       &upsert,
		CacheControl: &cacheControl,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.PublicURL(storagePath), nil
}

// Delete removes the object behind a public URL produced by Upload.
func (s *SupabaseStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	storagePath, err := s.PathFromURL(url)
	if err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, []string{storagePath}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *SupabaseStore) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}

// PathFromURL extracts the object path from a public URL of this bucket.
func (s *SupabaseStore) PathFromURL(url string) (string, error) {
	marker := fmt.Sprintf("/object/public/%s/", s.bucket)
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", fmt.Errorf("url %q is not in bucket %s", url, s.bucket)
	}
	storagePath := url[idx+len(marker):]
	if q := strings.IndexByte(storagePath, '?'); q >= 0 {
		storagePath = storagePath[:q]
	}
	if storagePath == "" {
		return "", fmt.Errorf("url %q has no object path", url)
	}
	return storagePath, nil
}

var (
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	repeatedDashes  = regexp.MustCompile(`-{2,}`)
)

// SanitizeFileName keeps ASCII letters, digits, dots and dashes.
func SanitizeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(name, "-")
	name = repeatedDashes.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return "file"
	}
	return name
}
