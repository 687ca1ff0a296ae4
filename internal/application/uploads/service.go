package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"travel-backend/internal/pkg/apperr"

	"github.com/google/uuid"
)

// Buckets.
const (
	BucketAvatars      = "avatars"
	BucketTravelCovers = "travel-covers"
)

var (
	unsafeChars    = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	imageExts      = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}
	ErrBadFileName = apperr.Invalid("Validation failed", map[string]string{"file_name": "must be an image file (jpg, png, webp, gif)"})
)

// SupabaseClient is what the service needs from Supabase storage.
type SupabaseClient interface {
	CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error)
}

// HTTPClient is a SupabaseClient backed by the storage HTTP API.
type HTTPClient struct {
	BaseURL   string
	SecretKey string
	Client    *http.Client
}

type signedUploadResponse struct {
	SignedURL      string `json:"signedUrl"`
	SignedURLSnake string `json:"signed_url"`
	URL            string `json:"url"`
}

func (c *HTTPClient) CreateSignedUploadURL(ctx context.Context, bucket, objectPath string) (string, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if c.BaseURL == "" || c.SecretKey == "" {
		return "", fmt.Errorf("supabase: SUPABASE_URL and SUPABASE_SECRET_KEY must be set")
	}
	base := strings.TrimRight(c.BaseURL, "/")
	url := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", base, bucket, objectPath)
	body, _ := json.Marshal(map[string]interface{}{"expiresIn": 3600, "upsert": false})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	// Storage expects the service key both as apikey and as bearer token.
	req.Header.Set("apikey", c.SecretKey)
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("supabase error: status %d body: %s", resp.StatusCode, string(respBody))
	}

	var data signedUploadResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("supabase response decode: %w", err)
	}
	switch {
	case data.SignedURL != "":
		return data.SignedURL, nil
	case data.SignedURLSnake != "":
		return data.SignedURLSnake, nil
	case data.URL != "":
		return base + "/storage/v1" + "/" + strings.TrimLeft(data.URL, "/"), nil
	}
	return "", fmt.Errorf("supabase returned no signed URL")
}

// Service hands out signed upload URLs for user images.
type Service struct {
	Client      SupabaseClient
	SupabaseURL string
}

// UploadResult is returned to the client, which PUTs the file to UploadURL and then
// stores PublicURL on the profile or travel.
type UploadResult struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Path      string `json:"path"`
}

// SanitizeFileName keeps the base name, replaces unsafe characters and requires an
// image extension.
func SanitizeFileName(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	ext := strings.ToLower(path.Ext(name))
	if !imageExts[ext] {
		return "", ErrBadFileName
	}
	stem := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSuffix(name, path.Ext(name)), "-"), "-.")
	if stem == "" {
		stem = "image"
	}
	if len(stem) > 80 {
		stem = stem[:80]
	}
	return stem + ext, nil
}

// GetSignedUploadURL returns a signed URL for ownerID/<timestamp>-<file> in bucket.
func (s *Service) GetSignedUploadURL(ctx context.Context, bucket string, ownerID uuid.UUID, fileName string) (*UploadResult, error) {
	clean, err := SanitizeFileName(fileName)
	if err != nil {
		return nil, err
	}
	objectPath := fmt.Sprintf("%s/%d-%s", ownerID, time.Now().UnixMilli(), clean)

	signedURL, err := s.Client.CreateSignedUploadURL(ctx, bucket, objectPath)
	if err != nil {
		return nil, err
	}
	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", strings.TrimRight(s.SupabaseURL, "/"), bucket, objectPath)
	return &UploadResult{UploadURL: signedURL, PublicURL: publicURL, Path: objectPath}, nil
}
