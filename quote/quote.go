// Package quote fetches delayed quotes and the full market listing from the
// public push2 endpoints. These endpoints require no authentication; they
// serve the watchlist summary and the one-shot market snapshot.
package quote

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
)

const (
	defaultQuoteURL = "https://push2delay.eastmoney.com/api/qt/ulist.np/get"
	defaultListURL  = "http://84.push2.eastmoney.com/api/qt/clist/get"

	// f2 price, f3 change percent, f12 code, f13 market type, f14 name,
	// f15 high, f16 low, f18 previous close.
	quoteFields = "f2,f3,f12,f13,f14,f15,f16,f18"
)

// marketTypes are the secid prefixes tried when the market of a code is
// unknown: Shenzhen, Shanghai, the US listings and Hong Kong.
var marketTypes = []int{0, 1, 105, 106, 107, 116}

// Quote is a single delayed quote.
type Quote struct {
	Code      string          `json:"f12"`
	Name      string          `json:"f14"`
	Type      int             `json:"f13"`
	Price     decimal.Decimal `json:"f2"`
	Diff      decimal.Decimal `json:"f3"`
	High      decimal.Decimal `json:"f15"`
	Low       decimal.Decimal `json:"f16"`
	PrevClose decimal.Decimal `json:"f18"`
}

// Config groups the quote client knobs.
type Config struct {
	QuoteURL    string
	ListURL     string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	CacheExpiry time.Duration
}

// DefaultConfig returns sensible defaults for interactive use.
func DefaultConfig() Config {
	return Config{
		QuoteURL:    defaultQuoteURL,
		ListURL:     defaultListURL,
		Timeout:     10 * time.Second,
		MaxRetries:  3,
		RetryDelay:  time.Second,
		CacheExpiry: 5 * time.Minute,
	}
}

// Client queries the public quote endpoints, keeping answers in a short-lived
// in-memory cache so a command hitting the same codes twice does not fetch
// twice.
type Client struct {
	cfg   Config
	cache *cache.Cache
}

// NewClient returns a quote client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:   cfg,
		cache: cache.New(cfg.CacheExpiry, 2*cfg.CacheExpiry),
	}
}

// Quotes returns the delayed quote for each requested code that the endpoint
// knows about, keyed by code. Cached answers are served without a fetch.
func (c *Client) Quotes(ctx context.Context, codes []string) (map[string]Quote, error) {
	result := make(map[string]Quote, len(codes))
	missing := make([]string, 0, len(codes))
	for _, code := range codes {
		if cached, found := c.cache.Get("quote_" + code); found {
			if q, ok := cached.(Quote); ok {
				result[code] = q
				continue
			}
		}
		missing = append(missing, code)
	}
	if len(missing) == 0 {
		return result, nil
	}

	var response struct {
		Data struct {
			Diff []Quote `json:"diff"`
		} `json:"data"`
	}
	err := c.retry(ctx, func() error {
		return gout.GET(c.cfg.QuoteURL).
			SetTimeout(c.cfg.Timeout).
			SetQuery(gout.H{
				"fields": quoteFields,
				"fltt":   2,
				"secids": secids(missing),
			}).
			BindJSON(&response).
			Do()
	})
	if err != nil {
		// stale cached entries beat no answer at all
		if len(result) > 0 {
			log.Printf("quote fetch failed, serving %d cached quotes: %v", len(result), err)
			return result, nil
		}
		return nil, fmt.Errorf("cannot fetch quotes: %w", err)
	}

	for _, q := range response.Data.Diff {
		q.Name = strings.ReplaceAll(q.Name, " ", "")
		c.cache.Set("quote_"+q.Code, q, cache.DefaultExpiration)
		result[q.Code] = q
	}
	return result, nil
}

// secids expands each bare code into every market it could live on; the
// endpoint silently drops the combinations that do not exist.
func secids(codes []string) string {
	ids := make([]string, 0, len(codes)*len(marketTypes))
	for _, code := range codes {
		for _, market := range marketTypes {
			ids = append(ids, strconv.Itoa(market)+"."+code)
		}
	}
	return strings.Join(ids, ",")
}

// retry calls the request function up to MaxRetries times, waiting a little
// longer after each failure.
func (c *Client) retry(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = call(); lastErr == nil {
			return nil
		}
		if attempt < c.cfg.MaxRetries {
			wait := time.Duration(attempt) * c.cfg.RetryDelay
			log.Printf("quote request failed (attempt %d/%d), retrying in %v: %v", attempt, c.cfg.MaxRetries, wait, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", c.cfg.MaxRetries, lastErr)
}
