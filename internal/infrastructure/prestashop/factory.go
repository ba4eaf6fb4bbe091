package prestashop

import (
	"sync"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/infrastructure/config"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientFactory builds webservice clients per channel and reuses them while
// the channel's URL and key are unchanged.
type ClientFactory struct {
	cfg    config.RemoteConfig
	logger *zap.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]cachedClient
}

type cachedClient struct {
	baseURL string
	key     string
	client  *Client
}

var _ integration.RemoteClientFactory = (*ClientFactory)(nil)

// NewClientFactory creates a ClientFactory
func NewClientFactory(cfg config.RemoteConfig, logger *zap.Logger) *ClientFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientFactory{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[uuid.UUID]cachedClient),
	}
}

// ClientFor returns the channel's client. Incomplete settings fail before
// any request is made.
func (f *ClientFactory) ClientFor(channel *integration.Channel) (integration.RemoteClient, error) {
	if err := channel.Validate(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if cached, ok := f.clients[channel.ID]; ok && cached.baseURL == channel.BaseURL && cached.key == channel.Key {
		return cached.client, nil
	}

	client := f.newClient(channel)
	f.clients[channel.ID] = cachedClient{baseURL: channel.BaseURL, key: channel.Key, client: client}
	return client, nil
}

func (f *ClientFactory) newClient(channel *integration.Channel) *Client {
	log := f.logger.With(
		zap.String("channel_id", channel.ID.String()),
		zap.String("channel", channel.Name),
	)
	// the webservice key is the basic auth user, with no password
	rc := resty.New().
		SetBaseURL(apiURL(channel.BaseURL)).
		SetBasicAuth(channel.Key, "").
		SetTimeout(f.cfg.Timeout).
		SetHeader("User-Agent", f.cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetQueryParam("output_format", "JSON").
		SetDebug(f.cfg.Debug).
		SetLogger(log.Sugar())
	return &Client{http: rc, pageSize: f.cfg.PageSize, logger: log}
}
