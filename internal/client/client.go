package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"urap-polar/internal/config"
	"urap-polar/internal/domain"
)

const maxErrorBody = 512

// Recordings read access to recordings, remote or cached
type Recordings interface {
	ListRecordings(ctx context.Context) ([]domain.RecordingSummary, error)
	GetRecording(ctx context.Context, id string) (*domain.Session, error)
}

// Client HTTP client for the recording API the mobile app serves on the
// local network.
type Client struct {
	httpClient  *resty.Client
	baseURL     string
	listTimeout time.Duration
	getTimeout  time.Duration
	logger      *zap.Logger
}

func New(cfg config.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	listTimeout := cfg.ListTimeout
	if listTimeout <= 0 {
		listTimeout = 10 * time.Second
	}
	getTimeout := cfg.GetTimeout
	if getTimeout <= 0 {
		getTimeout = 30 * time.Second // full sessions can be large
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		SetLogger(logger.Sugar())

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		listTimeout: listTimeout,
		getTimeout:  getTimeout,
		logger:      logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// ListRecordings GET /recordings
func (c *Client) ListRecordings(ctx context.Context) ([]domain.RecordingSummary, error) {
	body, err := c.get(ctx, "/recordings", c.listTimeout)
	if err != nil {
		return nil, err
	}
	summaries, err := domain.DecodeSummaries(body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("listed recordings", zap.Int("count", len(summaries)))
	return summaries, nil
}

// GetRecordingRaw GET /recordings/{id}, body undecoded.
func (c *Client) GetRecordingRaw(ctx context.Context, id string) ([]byte, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("recording id is required")
	}
	return c.get(ctx, "/recordings/"+url.PathEscape(id), c.getTimeout)
}

// GetRecording GET /recordings/{id}
func (c *Client) GetRecording(ctx context.Context, id string) (*domain.Session, error) {
	body, err := c.GetRecordingRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := domain.DecodeSession(body)
	if err != nil {
		return nil, fmt.Errorf("recording %s: %w", id, err)
	}
	return domain.NewSession(doc), nil
}

func (c *Client) get(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fullURL := c.baseURL + path
	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", requestID).
		Get(path)
	if err != nil {
		c.logger.Warn("recording API call failed",
			zap.String("url", fullURL),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, &ConnectivityError{URL: fullURL, Err: err}
	}

	c.logger.Debug("recording API call",
		zap.String("url", fullURL),
		zap.String("request_id", requestID),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)

	if !resp.IsSuccess() {
		body := strings.TrimSpace(resp.String())
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{URL: fullURL, StatusCode: resp.StatusCode(), Body: body}
	}
	return resp.Body(), nil
}
