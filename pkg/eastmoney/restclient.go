// Package eastmoney pulls market snapshots, futures quotes and the trading
// calendar from the Eastmoney push API, with a Sina text-protocol fallback
// for futures quotes.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"watchdog/internal/watchdog/rollover"
	"watchdog/internal/watchdog/snapshot"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RESTClient struct {
	baseURL     string
	fallbackURL string
	calendarURL string
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *zap.Logger
}

// NewRESTClient builds a client. Quote requests are paced by the limiter so
// back-to-back contract fetches do not hammer the provider.
func NewRESTClient(baseURL, fallbackURL, calendarURL string, timeout time.Duration, log *zap.Logger) *RESTClient {
	return &RESTClient{
		baseURL:     baseURL,
		fallbackURL: fallbackURL,
		calendarURL: calendarURL,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Every(800*time.Millisecond), 1),
		log:         log,
	}
}

// Field ids served by the fund list endpoint, with the localized labels the
// provider's own frontend uses and the fixed-point divisor of each field.
// The snapshot normalizer rediscovers these columns by keyword, so label
// changes upstream stay contained here.
var fundFields = []struct {
	field string
	label string
	scale float64
}{
	{"f12", "代码", 0},
	{"f14", "名称", 0},
	{"f2", "最新价", 1000},
	{"f3", "涨跌幅", 100},
	{"f18", "昨收", 1000},
}

// FundSpot fetches the whole exchange-traded fund board as a raw table.
func (c *RESTClient) FundSpot(ctx context.Context) (*snapshot.Table, error) {
	endpoint := c.baseURL + "/api/qt/clist/get?pn=1&pz=5000&po=1&fltt=2" +
		"&fs=b:MK0404,b:MK0405,b:MK0406,b:MK0407&fields=f2,f3,f12,f14,f18"

	var env pushEnvelope
	if err := c.getJSON(ctx, endpoint, &env); err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("fund list: empty data")
	}

	var data fundListData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}

	table := &snapshot.Table{}
	for _, f := range fundFields {
		table.Columns = append(table.Columns, f.label)
	}
	for _, entry := range data.Diff {
		row := make([]any, 0, len(fundFields))
		for _, f := range fundFields {
			v := entry[f.field]
			if f.scale > 0 {
				if num, ok := v.(float64); ok {
					v = num / f.scale
				}
			}
			row = append(row, v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// FuturesQuote fetches volume and open interest for one contract, trying
// the push API first and the Sina text protocol second.
func (c *RESTClient) FuturesQuote(ctx context.Context, code string) (rollover.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return rollover.Quote{}, err
	}

	q, err := c.futuresQuotePrimary(ctx, code)
	if err == nil {
		return q, nil
	}
	c.log.Debug("primary futures quote failed, trying fallback",
		zap.String("contract", code), zap.Error(err))

	return c.futuresQuoteFallback(ctx, code)
}

func (c *RESTClient) futuresQuotePrimary(ctx context.Context, code string) (rollover.Quote, error) {
	// secid prefix 8 selects the CFFEX board.
	endpoint := fmt.Sprintf("%s/api/qt/stock/get?secid=8.%s&fields=f47,f108", c.baseURL, code)

	var env pushEnvelope
	if err := c.getJSON(ctx, endpoint, &env); err != nil {
		return rollover.Quote{}, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return rollover.Quote{}, fmt.Errorf("futures quote %s: empty data", code)
	}

	var data futuresQuoteData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return rollover.Quote{}, fmt.Errorf("decode result: %w", err)
	}

	return rollover.Quote{
		Volume:       asInt64(data.Volume),
		OpenInterest: asInt64(data.OpenInterest),
	}, nil
}

// Sina serves quotes as a JS assignment with a fixed comma-separated field
// layout; volume and open interest sit at these positions for CFFEX index
// contracts.
const (
	sinaVolumeField       = 4
	sinaOpenInterestField = 13
)

func (c *RESTClient) futuresQuoteFallback(ctx context.Context, code string) (rollover.Quote, error) {
	endpoint := fmt.Sprintf("%s/list=nf_%s", c.fallbackURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return rollover.Quote{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rollover.Quote{}, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rollover.Quote{}, fmt.Errorf("sina error: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rollover.Quote{}, fmt.Errorf("read response: %w", err)
	}

	// var hq_str_nf_IC2602="...,...";
	text := string(body)
	start := strings.Index(text, `"`)
	end := strings.LastIndex(text, `"`)
	if start < 0 || end <= start {
		return rollover.Quote{}, fmt.Errorf("sina quote %s: unexpected payload", code)
	}
	fields := strings.Split(text[start+1:end], ",")
	if len(fields) <= sinaOpenInterestField {
		return rollover.Quote{}, fmt.Errorf("sina quote %s: %d fields", code, len(fields))
	}

	return rollover.Quote{
		Volume:       parseInt64(fields[sinaVolumeField]),
		OpenInterest: parseInt64(fields[sinaOpenInterestField]),
	}, nil
}

// TradingDates fetches the bulk trading-day list: a JSON array of
// "YYYY-MM-DD" strings covering the whole exchange calendar.
func (c *RESTClient) TradingDates(ctx context.Context) ([]time.Time, error) {
	var raw []string
	if err := c.getJSON(ctx, c.calendarURL, &raw); err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func (c *RESTClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider error: %s", body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		return parseInt64(n)
	}
	return 0
}

func parseInt64(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
