package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadImage sends an image as multipart field "image" to /message/file and
// returns the URL the bot API stored it under.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	const op = "message.upload"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", WrapError(op, fmt.Errorf("creating form file: %w", err))
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", WrapError(op, fmt.Errorf("reading image: %w", err))
	}
	if err := mw.Close(); err != nil {
		return "", WrapError(op, fmt.Errorf("closing multipart body: %w", err))
	}

	var raw json.RawMessage
	err = c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/message/file",
		rawBody:     buf.Bytes(),
		contentType: mw.FormDataContentType(),
		out:         &raw,
		auth:        true,
	})
	if err != nil {
		return "", err
	}
	url := scalarBody(raw, "url")
	if url == "" {
		return "", WrapError(op, errors.New("empty upload response"))
	}
	return url, nil
}
