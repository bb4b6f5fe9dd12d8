package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/nutrimenu/internal/apperr"
	"github.com/dukerupert/nutrimenu/internal/compose"
	"github.com/dukerupert/nutrimenu/internal/metrics"
	"github.com/dukerupert/nutrimenu/internal/model"
)

const defaultTimeout = 5 * time.Second

// PeerHeader is set by a peer's internal lookup routes to the entity they
// serve. A 404 without it did not come from those routes (wrong base URL,
// proxy without a route, another service on the port) and counts as the
// peer being unreachable.
const PeerHeader = "X-Nutrimenu-Peer"

// ClientConfig holds the settings for talking to a peer service.
type ClientConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// client performs authenticated GETs against a peer service's internal API
// and translates the outcome into apperr kinds:
//
//	200       decoded into out
//	404       NotFound if the peer's lookup route answered it
//	other     ServiceUnavailable
//	transport ServiceUnavailable, unless ctx itself ended
type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func newClient(cfg ClientConfig) client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c client) get(ctx context.Context, entity, path string, out any) error {
	start := time.Now()
	err := c.do(ctx, entity, path, out)
	metrics.ObserveRemoteLookup(entity, time.Since(start))
	metrics.RecordLookup(entity, sourceRemote, outcome(err))
	return err
}

func (c client) do(ctx context.Context, entity, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperr.Unavailable(err, "%s service unreachable", entity)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		if resp.Header.Get(PeerHeader) != entity {
			return apperr.Unavailable(fmt.Errorf("status 404 from %s", c.baseURL+path), "%s service has no lookup route", entity)
		}
		return apperr.NotFound("%s was not found", entity)
	default:
		return apperr.Unavailable(fmt.Errorf("status %d", resp.StatusCode), "%s service returned an error", entity)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Unavailable(err, "decode %s response", entity)
	}
	return nil
}

// DishClient looks up dish summaries on a remote dish service.
type DishClient struct {
	client
}

func NewDishClient(cfg ClientConfig) *DishClient {
	return &DishClient{client: newClient(cfg)}
}

func (c *DishClient) Dish(ctx context.Context, id int64) (*model.DishSummary, error) {
	var d model.DishSummary
	if err := c.get(ctx, "dish", "/internal/dishes/"+strconv.FormatInt(id, 10), &d); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("dish with id %d was not found", id)
		}
		return nil, err
	}
	return &d, nil
}

// UserClient looks up users on a remote user service.
type UserClient struct {
	client
}

func NewUserClient(cfg ClientConfig) *UserClient {
	return &UserClient{client: newClient(cfg)}
}

func (c *UserClient) UserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := c.get(ctx, "user", "/internal/users/"+strconv.FormatInt(id, 10), &u); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("user with id %d was not found", id)
		}
		return nil, err
	}
	return &u, nil
}

func (c *UserClient) UserByName(ctx context.Context, name string) (*model.User, error) {
	var u model.User
	if err := c.get(ctx, "user", "/internal/users?name="+url.QueryEscape(name), &u); err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("user with name %s was not found", name)
		}
		return nil, err
	}
	return &u, nil
}

var (
	_ compose.DishLookup = (*DishClient)(nil)
	_ compose.UserLookup = (*UserClient)(nil)
)
