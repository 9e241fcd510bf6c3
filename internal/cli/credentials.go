package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/me/botadmin/pkg/botapi"
)

const credentialsFileName = "credentials.json"

// credentials is the operator session saved by `botadm login`.
type credentials struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// credentialsPath returns the path to the credentials file (~/.botadmin/credentials.json).
func credentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".botadmin", credentialsFileName), nil
}

func saveCredentials(creds credentials) (string, error) {
	p, err := credentialsPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(p, data, 0600); err != nil {
		return "", fmt.Errorf("write credentials: %w", err)
	}
	return p, nil
}

// loadCredentials reads the saved session. A missing file yields zero
// credentials and no error.
func loadCredentials() (credentials, error) {
	var creds credentials
	p, err := credentialsPath()
	if err != nil {
		return creds, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return creds, fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return creds, fmt.Errorf("parse credentials %s: %w", p, err)
	}
	return creds, nil
}

func removeCredentials() error {
	p, err := credentialsPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// authContext attaches the saved token to ctx. Without a saved token the
// context stays anonymous and authenticated calls fail with
// botapi.ErrNotAuthenticated. A token the bot API rejects is forgotten.
func authContext(ctx context.Context) (context.Context, error) {
	creds, err := loadCredentials()
	if err != nil {
		return ctx, err
	}
	if creds.Token == "" {
		return ctx, nil
	}
	return botapi.WithAuth(ctx, botapi.Credentials{
		Token: creds.Token,
		Invalidate: func() {
			if err := removeCredentials(); err != nil {
				logger.Warn("forget rejected token", "error", err)
			}
		},
	}), nil
}

// withLoginHint adds the login hint to errors caused by a missing or
// rejected session.
func withLoginHint(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, botapi.ErrNotAuthenticated):
		return fmt.Errorf("%w\nnot logged in: run `botadm login` first", err)
	case botapi.IsUnauthorized(err):
		return fmt.Errorf("%w\nsession expired: run `botadm login` again", err)
	}
	return err
}
