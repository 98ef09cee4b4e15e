package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// maxBodyBytes caps provider responses (max-range daily history is well below this).
const maxBodyBytes = 32 << 20

// -----------------------------------------------------------------------------

// StatusError is returned for non-200 responses.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %d", e.StatusCode)
}

// -----------------------------------------------------------------------------

type AsyncNetworkManager struct {
	Config       *models.MConfig
	ProxyManager interfaces.IProxyManager
	Logger       *logger.Logger

	client   *http.Client
	clientMu sync.RWMutex
	sem      chan struct{}
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	concurrency := cfg.Network.ConcurrentRequests
	if concurrency <= 0 {
		concurrency = 1
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		ProxyManager: helpers.NewProxyManager(proxies, cfg.Network.UserAgent, log.Named("ProxyManager")),
		Logger:       log,
		sem:          make(chan struct{}, concurrency),
	}
	nm.client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if nm.ProxyManager.HasProxies() {
		proxyStr, err := nm.ProxyManager.GetCurrentProxy()
		if err == nil && proxyStr != "" {
			proxyURL, err := url.Parse(proxyStr)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(nm.Config.Network.RequestTimeout) * time.Second,
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) rotateProxy() {
	if !nm.ProxyManager.HasProxies() {
		return
	}

	nm.ProxyManager.RotateProxy()
	c := nm.createClient()
	nm.clientMu.Lock()
	nm.client = c
	nm.clientMu.Unlock()
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) httpClient() *http.Client {
	nm.clientMu.RLock()
	defer nm.clientMu.RUnlock()
	return nm.client
}

// -----------------------------------------------------------------------------

// Get performs a GET request with timeout, retries and proxy rotation.
// 404 is not retried and is returned as a *StatusError.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()
	finalUrl := reqUrl.String()

	select {
	case nm.sem <- struct{}{}:
		defer func() { <-nm.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	attempts := nm.Config.Network.MaxRetries + 1
	baseDelay := time.Duration(nm.Config.Network.RetryDelayMs) * time.Millisecond

	var body []byte
	err = helpers.RetryWithBackoff(ctx, attempts, baseDelay, func(attempt int) error {
		if attempt > 0 {
			nm.rotateProxy()
		}
		b, err := nm.do(ctx, finalUrl)
		if err != nil {
			nm.Logger.Info("Request failed (attempt %d/%d): %v", attempt+1, attempts, err)
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(ctx context.Context, finalUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, helpers.Permanent(err)
	}
	req.Header.Set("User-Agent", nm.ProxyManager.GetUserAgent())

	resp, err := nm.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, helpers.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		nm.Logger.Info("Request blocked (%d). Rotating proxy.", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, helpers.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: body})
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: body}
	}
}
