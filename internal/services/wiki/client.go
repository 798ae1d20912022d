package wiki

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"osrs-flipper/internal/quant"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://prices.runescape.wiki/api/v1/osrs"

// Client talks to the public price API. All responses are cached with short
// TTLs so a burst of suggestion requests costs at most one upstream fetch,
// and stale data is retained when a refresh fails.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *logrus.Logger

	marketTTL     time.Duration
	timeseriesTTL time.Duration
	batchSize     int

	mu            sync.RWMutex
	latest        map[int]LatestPrice
	mapping       map[int]MappingItem
	marketFetched time.Time
	timeseries    map[string]timeseriesEntry
}

type timeseriesEntry struct {
	points  []quant.PricePoint
	fetched time.Time
}

// NewClient builds a client against the public API. The user agent is
// required by the API's usage policy.
func NewClient(userAgent string, cfg *quant.TradingConfig, log *logrus.Logger) *Client {
	http := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("User-Agent", userAgent)

	return &Client{
		http:          http,
		limiter:       rate.NewLimiter(rate.Limit(4), 8),
		log:           log,
		marketTTL:     time.Duration(cfg.MarketDataTTLSeconds) * time.Second,
		timeseriesTTL: time.Duration(cfg.TimeseriesTTLSeconds) * time.Second,
		batchSize:     cfg.ParallelBatchSize,
		timeseries:    make(map[string]timeseriesEntry),
	}
}

// SetBaseURL points the client at a different API host. Used in tests.
func (c *Client) SetBaseURL(url string) {
	c.http.SetBaseURL(url)
}

// EnsureFresh refreshes the latest prices and the item mapping when the
// cached copies are older than the market TTL. On upstream failure the stale
// copies stay in place and the error is returned so the caller can decide
// whether stale data is acceptable.
func (c *Client) EnsureFresh(ctx context.Context) error {
	c.mu.RLock()
	fresh := time.Since(c.marketFetched) < c.marketTTL && c.latest != nil
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	latest, err := c.fetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("refresh latest prices: %w", err)
	}
	mapping, err := c.fetchMapping(ctx)
	if err != nil {
		return fmt.Errorf("refresh item mapping: %w", err)
	}

	c.mu.Lock()
	c.latest = latest
	c.mapping = mapping
	c.marketFetched = time.Now()
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"prices": len(latest),
		"items":  len(mapping),
	}).Debug("market data refreshed")
	return nil
}

// MarketData returns the cached latest prices and mapping without blocking
// on the network. ok is false until the first successful refresh.
func (c *Client) MarketData() (latest map[int]LatestPrice, mapping map[int]MappingItem, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.mapping, c.latest != nil
}

// Timeseries returns 5-minute snapshots for one item, newest last, served
// from cache within the timeseries TTL.
func (c *Client) Timeseries(ctx context.Context, itemID int) ([]quant.PricePoint, error) {
	key := strconv.Itoa(itemID)

	c.mu.RLock()
	entry, cached := c.timeseries[key]
	c.mu.RUnlock()
	if cached && time.Since(entry.fetched) < c.timeseriesTTL {
		return entry.points, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body timeseriesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"timestep": "5m",
			"id":       key,
		}).
		SetResult(&body).
		Get("/timeseries")
	if err != nil {
		return nil, fmt.Errorf("fetch timeseries for item %d: %w", itemID, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("timeseries for item %d: status %d", itemID, resp.StatusCode())
	}

	points := make([]quant.PricePoint, 0, len(body.Data))
	for _, p := range body.Data {
		if p.AvgHighPrice <= 0 && p.AvgLowPrice <= 0 {
			continue
		}
		points = append(points, quant.PricePoint{
			Timestamp:       p.Timestamp,
			AvgHighPrice:    p.AvgHighPrice,
			AvgLowPrice:     p.AvgLowPrice,
			HighPriceVolume: p.HighPriceVolume,
			LowPriceVolume:  p.LowPriceVolume,
		})
	}

	c.mu.Lock()
	c.timeseries[key] = timeseriesEntry{points: points, fetched: time.Now()}
	c.mu.Unlock()
	return points, nil
}

// BulkTimeseries fetches snapshots for many items with bounded concurrency.
// Per-item failures are logged and skipped; the map holds only the items
// that resolved.
func (c *Client) BulkTimeseries(ctx context.Context, itemIDs []int) map[int][]quant.PricePoint {
	results := make(map[int][]quant.PricePoint, len(itemIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.batchSize)
	for _, id := range itemIDs {
		id := id
		g.Go(func() error {
			points, err := c.Timeseries(gctx, id)
			if err != nil {
				c.log.WithError(err).WithField("item_id", id).Warn("timeseries fetch failed")
				return nil
			}
			mu.Lock()
			results[id] = points
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only observes context cancellation.
	_ = g.Wait()
	return results
}

func (c *Client) fetchLatest(ctx context.Context) (map[int]LatestPrice, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var body latestResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).Get("/latest")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}

	latest := make(map[int]LatestPrice, len(body.Data))
	for idStr, price := range body.Data {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		latest[id] = price
	}
	return latest, nil
}

func (c *Client) fetchMapping(ctx context.Context) (map[int]MappingItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var body []MappingItem
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).Get("/mapping")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}

	mapping := make(map[int]MappingItem, len(body))
	for _, item := range body {
		mapping[item.ID] = item
	}
	return mapping, nil
}
