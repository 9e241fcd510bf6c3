// Package media stores images attached to bot messages.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
)

// ErrNotImage is returned for uploads whose content type is not image/*.
var ErrNotImage = errors.New("only image uploads are accepted")

// Store saves an image and returns the URL it can be fetched from.
type Store interface {
	Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// checkImage validates contentType, falling back to the filename extension.
func checkImage(filename, contentType string) (string, error) {
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(path.Ext(filename)))
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", fmt.Errorf("%q (%s): %w", filename, contentType, ErrNotImage)
	}
	return mediaType, nil
}

// Uploader is the part of the bot API client used for images.
type Uploader interface {
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

// BotAPIStore forwards images to the bot API's own file endpoint.
type BotAPIStore struct {
	client Uploader
}

// NewBotAPIStore creates a store backed by the bot API.
func NewBotAPIStore(client Uploader) *BotAPIStore {
	return &BotAPIStore{client: client}
}

// Put implements Store.
func (s *BotAPIStore) Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if _, err := checkImage(filename, contentType); err != nil {
		return "", err
	}
	return s.client.UploadImage(ctx, filename, r)
}
