package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"urap-polar/internal/domain"
	"urap-polar/internal/store"
)

const recordingKeyPrefix = "urap:recording:"

// CachedClient keeps raw session bodies in a KV so repeated plots/exports
// of the same recording do not hit the phone again. Listing is always live.
type CachedClient struct {
	client *Client
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedClient(client *Client, kv store.KV, ttl time.Duration, logger *zap.Logger) *CachedClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedClient{client: client, kv: kv, ttl: ttl, logger: logger}
}

func recordingKey(id string) string { return recordingKeyPrefix + id }

func (c *CachedClient) ListRecordings(ctx context.Context) ([]domain.RecordingSummary, error) {
	return c.client.ListRecordings(ctx)
}

func (c *CachedClient) GetRecording(ctx context.Context, id string) (*domain.Session, error) {
	key := recordingKey(id)

	cached, err := c.kv.Get(ctx, key)
	switch {
	case err == nil:
		doc, decodeErr := domain.DecodeSession([]byte(cached))
		if decodeErr == nil {
			c.logger.Debug("recording cache hit", zap.String("recording_id", id))
			return domain.NewSession(doc), nil
		}
		c.logger.Warn("discarding undecodable cached recording",
			zap.String("recording_id", id),
			zap.Error(decodeErr),
		)
	case errors.Is(err, store.ErrMiss):
	default:
		c.logger.Warn("recording cache read failed", zap.String("recording_id", id), zap.Error(err))
	}

	body, err := c.client.GetRecordingRaw(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, err := domain.DecodeSession(body)
	if err != nil {
		return nil, err
	}
	if err := c.kv.Set(ctx, key, string(body), c.ttl); err != nil {
		c.logger.Warn("recording cache write failed", zap.String("recording_id", id), zap.Error(err))
	}
	return domain.NewSession(doc), nil
}

// CachedIDs ids currently held in the cache, sorted as the KV returns them.
func (c *CachedClient) CachedIDs(ctx context.Context) ([]string, error) {
	keys, err := c.kv.ScanKeys(ctx, recordingKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, recordingKeyPrefix))
	}
	return ids, nil
}
