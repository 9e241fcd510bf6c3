package botapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/botadmin/pkg/model"
)

// Resource is one entity collection of the bot API. Single entities are
// addressed with an id query parameter (e.g. /group?group_id=5).
type Resource[T any] struct {
	client *Client
	name   string
	path   string
	idKey  string
}

// NewResource binds a collection at path whose entities are keyed by idKey.
func NewResource[T any](c *Client, path, idKey string) *Resource[T] {
	name := path
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return &Resource[T]{client: c, name: name, path: path, idKey: idKey}
}

// Users returns the /user collection.
func Users(c *Client) *Resource[model.User] {
	return NewResource[model.User](c, "/user", "user_id")
}

// Messages returns the /message collection.
func Messages(c *Client) *Resource[model.Message] {
	return NewResource[model.Message](c, "/message", "message_id")
}

// Groups returns the /group collection.
func Groups(c *Client) *Resource[model.Group] {
	return NewResource[model.Group](c, "/group", "group_id")
}

// Actions returns the /action collection.
func Actions(c *Client) *Resource[model.Action] {
	return NewResource[model.Action](c, "/action", "action_id")
}

// Broadcasts returns the /broadcast collection (mailings).
func Broadcasts(c *Client) *Resource[model.Broadcast] {
	return NewResource[model.Broadcast](c, "/broadcast", "broadcast_id")
}

// UserResponses returns the /user_response collection.
func UserResponses(c *Client) *Resource[model.UserResponse] {
	return NewResource[model.UserResponse](c, "/user_response", "user_response_id")
}

// Name returns the collection name used in operation labels.
func (r *Resource[T]) Name() string {
	return r.name
}

func (r *Resource[T]) byID(id string) url.Values {
	return url.Values{r.idKey: {id}}
}

// List fetches one page of the collection.
func (r *Resource[T]) List(ctx context.Context, pageNumber, pageLimit int) (*model.Page[T], error) {
	var page model.Page[T]
	err := r.client.do(ctx, request{
		op:     r.name + ".list",
		method: http.MethodGet,
		path:   r.path + "/list",
		query: url.Values{
			"page_number": {strconv.Itoa(pageNumber)},
			"page_limit":  {strconv.Itoa(pageLimit)},
		},
		out:  &page,
		auth: true,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches a single entity.
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	err := r.client.do(ctx, request{
		op:     r.name + ".get",
		method: http.MethodGet,
		path:   r.path,
		query:  r.byID(id),
		out:    &item,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create posts a new entity.
func (r *Resource[T]) Create(ctx context.Context, body any) error {
	return r.client.do(ctx, request{
		op:     r.name + ".create",
		method: http.MethodPost,
		path:   r.path,
		body:   body,
		auth:   true,
	})
}

// Update replaces the entity identified by id.
func (r *Resource[T]) Update(ctx context.Context, id string, body any) error {
	return r.client.do(ctx, request{
		op:     r.name + ".update",
		method: http.MethodPut,
		path:   r.path,
		query:  r.byID(id),
		body:   body,
		auth:   true,
	})
}

// Delete removes the entity identified by id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.do(ctx, request{
		op:     r.name + ".delete",
		method: http.MethodDelete,
		path:   r.path,
		query:  r.byID(id),
		auth:   true,
	})
}

// Names fetches the id/name lookup pairs used by selectors.
func (r *Resource[T]) Names(ctx context.Context) ([]model.NamePair, error) {
	var pairs []model.NamePair
	err := r.client.do(ctx, request{
		op:     r.name + ".names",
		method: http.MethodGet,
		path:   r.path + "/names/list",
		out:    &pairs,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}
