package prestashop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// maxPages bounds a single list call; a store that keeps returning full
// pages past it is treated as misbehaving.
const maxPages = 10000

// openLowerBound stands in for an empty window start
const openLowerBound = "1970-01-01 00:00:00"

var errNotJSON = errors.New("prestashop: response is not a JSON document")

// Client talks to one store's webservice. Records are decoded with
// json.Number so ids and amounts keep their exact text.
type Client struct {
	http     *resty.Client
	pageSize int
	logger   *zap.Logger
}

var _ integration.RemoteClient = (*Client)(nil)

// List returns every record of the resource matching the filter, in id
// order, following limit-based pages.
func (c *Client) List(ctx context.Context, resource integration.Resource, filter *integration.ListFilter) ([]integration.RemoteRecord, error) {
	params := map[string]string{
		"display": "full",
		"sort":    "[id_ASC]",
	}
	if filter != nil && (filter.UpdatedFrom != "" || filter.UpdatedTo != "") {
		from := filter.UpdatedFrom
		if from == "" {
			from = openLowerBound
		}
		params["date"] = "1"
		params["filter[date_upd]"] = "[" + from + "," + filter.UpdatedTo + "]"
	}

	var out []integration.RemoteRecord
	for page := 0; page < maxPages; page++ {
		if c.pageSize > 0 {
			params["limit"] = strconv.Itoa(page*c.pageSize) + "," + strconv.Itoa(c.pageSize)
		}
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetPathParam("resource", string(resource)).
			Get("/{resource}")
		if err := c.check(ctx, resp, err, resource, 0); err != nil {
			return nil, err
		}

		records, err := decodeList(resp.Body(), resource)
		if err != nil {
			return nil, integration.ErrWrongURL.Wrap(err)
		}
		out = append(out, records...)
		if c.pageSize <= 0 || len(records) < c.pageSize {
			c.logger.Debug("remote list fetched",
				zap.String("resource", string(resource)),
				zap.Int("records", len(out)),
				zap.Int("pages", page+1),
			)
			return out, nil
		}
	}
	return nil, fmt.Errorf("prestashop: %s listing exceeded %d pages", resource, maxPages)
}

// Get returns one record
func (c *Client) Get(ctx context.Context, resource integration.Resource, id int64) (integration.RemoteRecord, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"resource": string(resource),
			"id":       strconv.FormatInt(id, 10),
		}).
		Get("/{resource}/{id}")
	if err := c.check(ctx, resp, err, resource, id); err != nil {
		return nil, err
	}
	rec, err := decodeOne(resp.Body(), resource)
	if err != nil {
		return nil, integration.ErrWrongURL.Wrap(err)
	}
	return rec, nil
}

// Update replaces a record and returns the stored version. The payload is
// sent whole, as the webservice expects.
func (c *Client) Update(ctx context.Context, resource integration.Resource, id int64, payload integration.RemoteRecord) (integration.RemoteRecord, error) {
	body, err := json.Marshal(map[string]any{resource.Singular(): payload})
	if err != nil {
		return nil, fmt.Errorf("prestashop: encode %s %d: %w", resource.Singular(), id, err)
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("io_format", "JSON").
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetPathParams(map[string]string{
			"resource": string(resource),
			"id":       strconv.FormatInt(id, 10),
		}).
		Put("/{resource}/{id}")
	if err := c.check(ctx, resp, err, resource, id); err != nil {
		return nil, err
	}
	rec, err := decodeOne(resp.Body(), resource)
	if err != nil {
		return nil, integration.ErrWrongURL.Wrap(err)
	}
	c.logger.Debug("remote record updated",
		zap.String("resource", string(resource)),
		zap.Int64("remote_id", id),
	)
	return rec, nil
}

// check maps transport failures and HTTP statuses onto sync errors
func (c *Client) check(ctx context.Context, resp *resty.Response, err error, resource integration.Resource, id int64) error {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return integration.ErrWrongURL.Wrap(err)
	}

	status := resp.StatusCode()
	switch {
	case status < http.StatusBadRequest:
		return nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return integration.ErrAuthFailed
	case status == http.StatusNotFound && id > 0:
		return integration.RemoteNotFoundError(resource, id)
	case status == http.StatusNotFound:
		return integration.ErrWrongURL
	default:
		c.logger.Warn("remote request failed",
			zap.String("resource", string(resource)),
			zap.Int64("remote_id", id),
			zap.Int("status", status),
		)
		return integration.RemoteFailureError(status, resource)
	}
}

func decode(body []byte) (map[string]json.RawMessage, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, errNotJSON
	}
	// an empty result set is rendered as a bare []
	if trimmed[0] == '[' {
		var empty []any
		if err := json.Unmarshal(trimmed, &empty); err != nil || len(empty) != 0 {
			return nil, false, errNotJSON
		}
		return nil, true, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, false, fmt.Errorf("%w: %v", errNotJSON, err)
	}
	return envelope, false, nil
}

func decodeList(body []byte, resource integration.Resource) ([]integration.RemoteRecord, error) {
	envelope, empty, err := decode(body)
	if err != nil || empty {
		return nil, err
	}
	raw, ok := envelope[string(resource)]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", errNotJSON, resource)
	}
	var items []map[string]any
	if err := unmarshalNumbers(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotJSON, err)
	}
	records := make([]integration.RemoteRecord, 0, len(items))
	for _, item := range items {
		records = append(records, integration.RemoteRecord(item))
	}
	return records, nil
}

func decodeOne(body []byte, resource integration.Resource) (integration.RemoteRecord, error) {
	envelope, empty, err := decode(body)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, fmt.Errorf("%w: empty %s document", errNotJSON, resource.Singular())
	}
	raw, ok := envelope[resource.Singular()]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", errNotJSON, resource.Singular())
	}
	var item map[string]any
	if err := unmarshalNumbers(raw, &item); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotJSON, err)
	}
	return integration.RemoteRecord(item), nil
}

func unmarshalNumbers(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// apiURL returns the webservice root of a shop URL
func apiURL(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(base, "/api") {
		return base
	}
	return base + "/api"
}
