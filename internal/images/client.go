package images

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"campus-commerce/internal/config"
)

// Client proxies image uploads to the external image service and returns the
// public URL of the stored image. The service owns conversion and hosting;
// this process never persists image bytes.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.ImagesConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("images: base URL is required")
	}
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type uploadResponse struct {
	ID string `json:"id"`
}

// Upload sends the file as multipart form data and returns the public URL.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data []byte, convertWebP bool) (string, error) {
	if filename == "" {
		filename = "upload"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.WriteField("convert_webp", fmt.Sprintf("%t", convertWebP)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/upload-image/", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("images: upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little for diagnostics without trusting the remote body size.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("images: upload failed with status %d: %s", resp.StatusCode, string(snippet))
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("images: decoding upload response: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("images: service returned no id")
	}
	return c.baseURL + "/images/" + out.ID, nil
}
