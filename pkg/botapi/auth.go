package botapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/me/botadmin/pkg/model"
)

// Credentials is the authentication context of one operator. Invalidate, if
// set, is called when the bot API rejects Token with 401.
type Credentials struct {
	Token      string
	Invalidate func()
}

type authKey struct{}

// WithAuth returns a context carrying creds for authenticated calls.
func WithAuth(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, authKey{}, creds)
}

// AuthFrom returns the credentials attached to ctx, if any.
func AuthFrom(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(authKey{}).(Credentials)
	return creds, ok && creds.Token != ""
}

func (c Credentials) invalidate() {
	if c.Invalidate != nil {
		c.Invalidate()
	}
}

// Login exchanges an email and password for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "auth.login", "/auth/login", model.Credentials{Email: email, Password: password})
}

// Signup registers a new operator account and returns its session token.
func (c *Client) Signup(ctx context.Context, name, email, password string) (string, error) {
	return c.authenticate(ctx, "auth.signup", "/auth/signup", model.Credentials{Name: name, Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, op, path string, body model.Credentials) (string, error) {
	var raw json.RawMessage
	if err := c.do(ctx, request{op: op, method: http.MethodPost, path: path, body: body, out: &raw}); err != nil {
		return "", err
	}
	token := scalarBody(raw, "token", "access_token")
	if token == "" {
		return "", WrapError(op, ErrEmptyToken)
	}
	return token, nil
}

// scalarBody extracts a single string from a response that is a JSON string,
// an object holding one of the named fields, or a bare non-JSON body.
func scalarBody(raw []byte, fields ...string) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, f := range fields {
			if v, ok := obj[f].(string); ok && v != "" {
				return v
			}
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}
