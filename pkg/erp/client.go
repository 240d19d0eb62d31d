package erp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/negobi/negobi-gateway/pkg/config"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

// Client is the HTTP client for the Negobi ERP REST API. All gateway
// repositories go through it; it owns auth-token injection, the response
// envelope contract and error mapping.
type Client struct {
	http     *resty.Client
	tokens   *TokenManager
	logger   *logger.Logger
	pageSize int
}

// NewClient creates a client for the configured upstream.
func NewClient(cfg *config.UpstreamConfig, log *logger.Logger) *Client {
	c := &Client{
		logger:   log.WithComponent("erp-client"),
		pageSize: cfg.PageSize,
	}
	if c.pageSize <= 0 {
		c.pageSize = 100
	}

	if cfg.Email != "" {
		c.tokens = NewTokenManager(cfg.BaseURL, cfg.Email, cfg.Password, cfg.APIKey, cfg.RequestTimeout, log)
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		http.SetHeader("x-api-key", cfg.APIKey)
	}
	http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if c.tokens == nil {
			return nil
		}
		token, err := c.tokens.Token(req.Context())
		if err != nil {
			return err
		}
		req.SetAuthToken(token)
		return nil
	})

	c.http = http
	return c
}

// PageSize returns the configured page size for list requests.
func (c *Client) PageSize() int {
	return c.pageSize
}

func (c *Client) execute(ctx context.Context, method, path string, query map[string]string, body any) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("upstream request failed")
		return nil, errors.Upstream(err)
	}
	if resp.IsError() {
		if resp.StatusCode() == 401 && c.tokens != nil {
			// Stale session; the next request will log in again.
			c.tokens.Invalidate()
		}
		msg := upstreamMessage(resp.Body())
		c.logger.Warn().
			Int("status", resp.StatusCode()).
			Str("method", method).
			Str("path", path).
			Str("message", msg).
			Msg("upstream request rejected")
		return nil, errors.UpstreamStatus(resp.StatusCode(), msg)
	}
	return resp.Body(), nil
}

func upstreamMessage(body []byte) string {
	env, err := DecodeOne[Envelope](body)
	if err != nil {
		return ""
	}
	return env.Message
}

// ListQuery carries the common list parameters of the upstream API.
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	Order   string
	Filters map[string]string
}

func (q ListQuery) params() map[string]string {
	params := make(map[string]string, len(q.Filters)+4)
	for k, v := range q.Filters {
		if v != "" {
			params[k] = v
		}
	}
	if q.Page > 0 {
		params["page"] = strconv.Itoa(q.Page)
	}
	if q.PerPage > 0 {
		params["itemsPerPage"] = strconv.Itoa(q.PerPage)
	}
	if q.Search != "" {
		params["search"] = q.Search
	}
	if q.Order != "" {
		params["order"] = q.Order
	}
	return params
}

// GetList fetches one page of a list endpoint.
func GetList[T any](ctx context.Context, c *Client, path string, query ListQuery) (ListPage[T], error) {
	body, err := c.execute(ctx, "GET", path, query.params(), nil)
	if err != nil {
		return ListPage[T]{}, err
	}
	page, err := DecodeList[T](body)
	if err != nil {
		return ListPage[T]{}, errors.Wrap(err, "UPSTREAM_MALFORMED", "malformed upstream response", 502)
	}
	return page, nil
}

// FetchAll follows pages until the upstream set is exhausted. It replaces the
// dashboard habit of requesting a single huge page to mean "everything".
func FetchAll[T any](ctx context.Context, c *Client, path string, query ListQuery) ([]T, error) {
	query.PerPage = c.pageSize
	query.Page = 1

	var all []T
	for {
		page, err := GetList[T](ctx, c, path, query)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if !page.Paginated {
			// Bare array responses carry the full set.
			return all, nil
		}
		if len(page.Items) < query.PerPage {
			return all, nil
		}
		if page.TotalPages > 0 && query.Page >= page.TotalPages {
			return all, nil
		}
		query.Page++
	}
}

// GetOne fetches a single resource.
func GetOne[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	body, err := c.execute(ctx, "GET", path, nil, nil)
	if err != nil {
		return zero, err
	}
	out, err := DecodeOne[T](body)
	if err != nil {
		return zero, errors.Wrap(err, "UPSTREAM_MALFORMED", "malformed upstream response", 502)
	}
	return out, nil
}

// Post creates a resource and decodes the created representation.
func Post[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var zero T
	body, err := c.execute(ctx, "POST", path, nil, payload)
	if err != nil {
		return zero, err
	}
	out, err := DecodeOne[T](body)
	if err != nil {
		return zero, errors.Wrap(err, "UPSTREAM_MALFORMED", "malformed upstream response", 502)
	}
	return out, nil
}

// Patch partially updates a resource and decodes the updated representation.
func Patch[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var zero T
	body, err := c.execute(ctx, "PATCH", path, nil, payload)
	if err != nil {
		return zero, err
	}
	out, err := DecodeOne[T](body)
	if err != nil {
		return zero, errors.Wrap(err, "UPSTREAM_MALFORMED", "malformed upstream response", 502)
	}
	return out, nil
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.execute(ctx, "DELETE", path, nil, nil)
	return err
}

// Path joins a collection path with an id segment.
func Path(collection string, id int64) string {
	return fmt.Sprintf("%s/%d", collection, id)
}
