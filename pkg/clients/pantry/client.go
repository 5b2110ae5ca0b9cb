// Package pantry is an HTTP client for the pantry inventory API. It
// satisfies inventory.Intents so a view can drive a remote server the same
// way it drives a local controller.
package pantry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/repository"
	"github.com/mamadbah2/pantry/internal/service/inventory"
)

// Client talks to the /api/items routes of a pantry server.
type Client struct {
	httpClient *resty.Client

	mu   sync.Mutex
	last models.Snapshot
}

var _ inventory.Intents = (*Client)(nil)

// NewClient builds a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &Client{httpClient: restyClient}
}

// Refresh fetches the whole inventory.
func (c *Client) Refresh(ctx context.Context) (models.Snapshot, error) {
	return c.do(c.httpClient.R().SetContext(ctx), http.MethodGet, "/api/items", "refresh inventory")
}

// AddOne adds one unit of name on the server.
func (c *Client) AddOne(ctx context.Context, name string) (models.Snapshot, error) {
	return c.intent(ctx, name, "add")
}

// RemoveOne removes one unit of name on the server.
func (c *Client) RemoveOne(ctx context.Context, name string) (models.Snapshot, error) {
	return c.intent(ctx, name, "remove")
}

func (c *Client) intent(ctx context.Context, name, action string) (models.Snapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.snapshot(), inventory.ErrInvalidName
	}

	req := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("name", name)
	return c.do(req, http.MethodPost, "/api/items/{name}/"+action, fmt.Sprintf("%s %q", action, name))
}

func (c *Client) do(req *resty.Request, method, url, op string) (models.Snapshot, error) {
	body := new(models.ItemsResponse)
	resp, err := req.SetResult(body).SetError(body).Execute(method, url)
	if err != nil {
		return c.snapshot(), fmt.Errorf("%s: %w: %w", op, repository.ErrStoreUnavailable, err)
	}

	if resp.IsError() {
		if body.Items != nil {
			c.remember(body.Items)
		}
		return c.snapshot(), fmt.Errorf("%s: %w", op, statusError(resp.StatusCode(), body.Error))
	}

	c.remember(body.Items)
	return c.snapshot(), nil
}

// statusError maps the server's status codes back onto the inventory errors.
func statusError(status int, message string) error {
	switch status {
	case http.StatusBadRequest:
		return inventory.ErrInvalidName
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", repository.ErrStoreUnavailable, message)
	default:
		return fmt.Errorf("pantry api error: status=%d, message=%s", status, message)
	}
}

func (c *Client) remember(snapshot models.Snapshot) {
	if snapshot == nil {
		snapshot = models.Snapshot{}
	}
	c.mu.Lock()
	c.last = snapshot
	c.mu.Unlock()
}

func (c *Client) snapshot() models.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// IsUnavailable reports whether err means the server or its store could not
// be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, repository.ErrStoreUnavailable)
}
