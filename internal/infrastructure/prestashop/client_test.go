package prestashop

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Test server
// ---------------------------------------------------------------------------

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	User   string
	Body   string
}

type webservice struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func newWebservice(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*webservice, *httptest.Server) {
	ws := &webservice{t: t, handler: handler}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, _, _ := r.BasicAuth()
		query := make(map[string]string)
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		ws.mu.Lock()
		ws.requests = append(ws.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  query,
			User:   user,
			Body:   string(body),
		})
		ws.mu.Unlock()
		ws.handler(w, r)
	}))
	t.Cleanup(server.Close)
	return ws, server
}

func (ws *webservice) last() recordedRequest {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	require.NotEmpty(ws.t, ws.requests)
	return ws.requests[len(ws.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestClient(t *testing.T, baseURL string, pageSize int) integration.RemoteClient {
	t.Helper()
	channel, err := integration.NewChannel("eu-shop", baseURL, "WSKEY", "Europe/Paris")
	require.NoError(t, err)
	factory := NewClientFactory(config.RemoteConfig{
		Timeout:   5 * time.Second,
		UserAgent: "storesync-test",
		PageSize:  pageSize,
	}, zap.NewNop())
	client, err := factory.ClientFor(channel)
	require.NoError(t, err)
	return client
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestClient_Get(t *testing.T) {
	ws, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"order":{"id":12,"reference":"REF12","total_paid_tax_excl":"62.000000",
			"associations":{"order_rows":[{"id":"1","product_id":"7","product_quantity":"2"}]}}}`)
	})
	client := newTestClient(t, server.URL+"/", 0)

	rec, err := client.Get(context.Background(), integration.ResourceOrders, 12)
	require.NoError(t, err)

	assert.Equal(t, int64(12), rec.ID())
	assert.Equal(t, "REF12", rec.String("reference"))
	assert.Equal(t, json.Number("12"), rec["id"])
	total, err := rec.Decimal("total_paid_tax_excl")
	require.NoError(t, err)
	assert.Equal(t, "62", total.String())
	rows := rec.Rows("order_rows")
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].Int64("product_id"))

	req := ws.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/orders/12", req.Path)
	assert.Equal(t, "WSKEY", req.User)
	assert.Equal(t, "JSON", req.Query["output_format"])
}

func TestClient_ListWithWindowFilter(t *testing.T) {
	ws, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"orders":[{"id":12},{"id":13}]}`)
	})
	client := newTestClient(t, server.URL, 0)

	records, err := client.List(context.Background(), integration.ResourceOrders, &integration.ListFilter{
		UpdatedFrom: "2021-06-15 14:00:00",
		UpdatedTo:   "2021-06-15 15:00:00",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(13), records[1].ID())

	req := ws.last()
	assert.Equal(t, "/api/orders", req.Path)
	assert.Equal(t, "full", req.Query["display"])
	assert.Equal(t, "1", req.Query["date"])
	assert.Equal(t, "[2021-06-15 14:00:00,2021-06-15 15:00:00]", req.Query["filter[date_upd]"])
	assert.NotContains(t, req.Query, "limit")
}

func TestClient_ListWithoutFilter(t *testing.T) {
	ws, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	client := newTestClient(t, server.URL, 0)

	records, err := client.List(context.Background(), integration.ResourceLanguages, nil)
	require.NoError(t, err)
	assert.Empty(t, records)

	req := ws.last()
	assert.NotContains(t, req.Query, "filter[date_upd]")
	assert.NotContains(t, req.Query, "date")
}

func TestClient_ListPages(t *testing.T) {
	ws, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Query().Get("limit"), ",")
		offset, _ := strconv.Atoi(parts[0])
		size, _ := strconv.Atoi(parts[1])
		var items []string
		for id := offset + 1; id <= offset+size && id <= 5; id++ {
			items = append(items, `{"id":`+strconv.Itoa(id)+`}`)
		}
		if len(items) == 0 {
			writeJSON(w, http.StatusOK, `[]`)
			return
		}
		writeJSON(w, http.StatusOK, `{"customers":[`+strings.Join(items, ",")+`]}`)
	})
	client := newTestClient(t, server.URL, 2)

	records, err := client.List(context.Background(), integration.ResourceCustomers, nil)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, int64(i+1), rec.ID())
	}
	assert.Len(t, ws.requests, 3)
	assert.Equal(t, "4,2", ws.last().Query["limit"])
}

func TestClient_Update(t *testing.T) {
	ws, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"order":{"id":12,"current_state":"4"}}`)
	})
	client := newTestClient(t, server.URL, 0)

	rec, err := client.Update(context.Background(), integration.ResourceOrders, 12, integration.RemoteRecord{
		"id":            json.Number("12"),
		"current_state": 4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), rec.Int64("current_state"))

	req := ws.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/orders/12", req.Path)
	assert.Equal(t, "JSON", req.Query["io_format"])
	assert.JSONEq(t, `{"order":{"id":12,"current_state":4}}`, req.Body)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		id     int64
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			id:     1,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, integration.ErrAuthFailed)
				assert.Equal(t, "Connection Failed! Please check URL and Key", err.Error())
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			id:     1,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, integration.ErrAuthFailed)
			},
		},
		{
			name:   "record not found",
			status: http.StatusNotFound,
			id:     404,
			check: func(t *testing.T, err error) {
				assert.True(t, integration.IsRecordScoped(err))
				assert.Equal(t, "Remote customers with id 404 not found", err.Error())
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			id:     1,
			check: func(t *testing.T, err error) {
				kind, ok := integration.KindOf(err)
				require.True(t, ok)
				assert.Equal(t, integration.KindConnectivity, kind)
				assert.Contains(t, err.Error(), "500")
			},
		},
		{
			name:   "html landing page",
			status: http.StatusOK,
			body:   "<html>Welcome</html>",
			id:     1,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, integration.ErrWrongURL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {
				body := tt.body
				if body == "" {
					body = `{"errors":[{"code":0,"message":"nope"}]}`
				}
				writeJSON(w, tt.status, body)
			})
			client := newTestClient(t, server.URL, 0)

			_, err := client.Get(context.Background(), integration.ResourceCustomers, tt.id)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClient_WrongURL(t *testing.T) {
	_, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {})
	url := server.URL
	server.Close()

	client := newTestClient(t, url, 0)
	_, err := client.List(context.Background(), integration.ResourceShops, nil)
	assert.ErrorIs(t, err, integration.ErrWrongURL)
	assert.False(t, integration.IsRecordScoped(err))
}

func TestClient_CanceledContext(t *testing.T) {
	_, server := newWebservice(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})
	client := newTestClient(t, server.URL, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.List(ctx, integration.ResourceShops, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientFactory(t *testing.T) {
	factory := NewClientFactory(config.RemoteConfig{Timeout: time.Second}, nil)

	t.Run("incomplete settings", func(t *testing.T) {
		channel, err := integration.NewChannel("eu-shop", "https://shop.example.com", "", "UTC")
		require.NoError(t, err)
		_, err = factory.ClientFor(channel)
		assert.ErrorIs(t, err, integration.ErrSettingsIncomplete)
	})

	t.Run("client is reused until the settings change", func(t *testing.T) {
		channel, err := integration.NewChannel("eu-shop", "https://shop.example.com", "KEY", "UTC")
		require.NoError(t, err)

		first, err := factory.ClientFor(channel)
		require.NoError(t, err)
		second, err := factory.ClientFor(channel)
		require.NoError(t, err)
		assert.Same(t, first, second)

		channel.Key = "ROTATED"
		third, err := factory.ClientFor(channel)
		require.NoError(t, err)
		assert.NotSame(t, first, third)
	})
}

func TestAPIURL(t *testing.T) {
	assert.Equal(t, "https://shop.example.com/api", apiURL("https://shop.example.com"))
	assert.Equal(t, "https://shop.example.com/api", apiURL(" https://shop.example.com/ "))
	assert.Equal(t, "https://shop.example.com/api", apiURL("https://shop.example.com/api/"))
}
