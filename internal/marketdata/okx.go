package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"btc-journal-lab/internal/domain"
	"btc-journal-lab/internal/observability"
)

const (
	okxCandlePath  = "/api/v5/market/candles"
	okxFundingPath = "/api/v5/public/funding-rate"

	// candlePageLimit is the OKX per-page maximum for the candles endpoint.
	candlePageLimit = 100
	// maxCandlePages bounds backward paging; 12 pages of 100 15m bars cover
	// well beyond one scoring day.
	maxCandlePages = 12
	// pagePause keeps paging under the public rate limit.
	pagePause = 150 * time.Millisecond
)

// okxEnvelope is the common OKX REST response wrapper.
type okxEnvelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (e *okxEnvelope) ok() bool { return e.Code == "0" }

// FundingSnapshot fetches the current funding state for the configured
// instrument.
func (c *Client) FundingSnapshot(ctx context.Context) (*domain.FundingSnapshot, error) {
	u := fmt.Sprintf("%s%s?instId=%s", c.okxBaseURL, okxFundingPath, url.QueryEscape(c.instID))

	var env okxEnvelope
	if err := c.getJSON(ctx, "okx_funding", u, &env); err != nil {
		return nil, fmt.Errorf("fetch funding rate: %w", err)
	}
	if !env.ok() {
		return nil, fmt.Errorf("fetch funding rate: okx code %s: %s", env.Code, env.Msg)
	}

	var rows []struct {
		InstID          string `json:"instId"`
		FundingRate     string `json:"fundingRate"`
		Premium         string `json:"premium"`
		FundingTime     string `json:"fundingTime"`
		NextFundingTime string `json:"nextFundingTime"`
		Ts              string `json:"ts"`
		Method          string `json:"method"`
	}
	if err := json.Unmarshal(env.Data, &rows); err != nil {
		return nil, fmt.Errorf("decode funding rate: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fetch funding rate: empty response for %s", c.instID)
	}

	row := rows[0]
	rate, err := strconv.ParseFloat(row.FundingRate, 64)
	if err != nil {
		return nil, fmt.Errorf("parse funding rate %q: %w", row.FundingRate, err)
	}
	premium, err := strconv.ParseFloat(row.Premium, 64)
	if err != nil {
		return nil, fmt.Errorf("parse premium %q: %w", row.Premium, err)
	}

	return &domain.FundingSnapshot{
		InstID:            row.InstID,
		FundingRate:       rate,
		Premium:           premium,
		FundingTimeMs:     parseMs(row.FundingTime),
		NextFundingTimeMs: parseMs(row.NextFundingTime),
		TsMs:              parseMs(row.Ts),
		Method:            row.Method,
	}, nil
}

// Candles fetches all bars whose open time falls in [startMs, endMs],
// normalized to unique ascending order. OKX returns newest first; paging
// walks backward with the `after` timestamp cursor until the window start is
// covered or the page budget runs out.
func (c *Client) Candles(ctx context.Context, startMs, endMs int64) ([]domain.Candle, error) {
	var out []domain.Candle
	var after int64

	for page := 0; page < maxCandlePages; page++ {
		if page > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pagePause):
			}
		}

		rows, err := c.candlePage(ctx, after)
		if err != nil {
			observability.RecordCandleFetchError()
			return nil, err
		}
		if len(rows) == 0 {
			break
		}

		oldestInPage := rows[len(rows)-1].OpenTimeMs
		for _, candle := range rows {
			if candle.OpenTimeMs >= startMs && candle.OpenTimeMs <= endMs {
				out = append(out, candle)
			}
		}

		c.log.Debug("fetched candle page",
			zap.Int("page", page),
			zap.Int("rows", len(rows)),
			zap.Int64("oldest_ms", oldestInPage))

		if oldestInPage <= startMs {
			break
		}
		after = oldestInPage
	}

	normalized := Normalize(out)
	observability.RecordCandlesFetched(len(normalized))
	return normalized, nil
}

// candlePage fetches one page, newest first. after == 0 means latest page.
func (c *Client) candlePage(ctx context.Context, after int64) ([]domain.Candle, error) {
	q := url.Values{}
	q.Set("instId", c.instID)
	q.Set("bar", c.bar)
	q.Set("limit", strconv.Itoa(candlePageLimit))
	if after != 0 {
		q.Set("after", strconv.FormatInt(after, 10))
	}
	u := fmt.Sprintf("%s%s?%s", c.okxBaseURL, okxCandlePath, q.Encode())

	var env okxEnvelope
	if err := c.getJSON(ctx, "okx_candles", u, &env); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	if !env.ok() {
		return nil, fmt.Errorf("fetch candles: okx code %s: %s", env.Code, env.Msg)
	}

	// Rows are arrays of strings: [ts, o, h, l, c, vol, ...].
	var raw [][]string
	if err := json.Unmarshal(env.Data, &raw); err != nil {
		return nil, fmt.Errorf("decode candles: %w", err)
	}

	candles := make([]domain.Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 5 {
			return nil, fmt.Errorf("decode candles: row has %d fields, need 5", len(row))
		}
		candle, err := parseCandleRow(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseCandleRow(row []string) (domain.Candle, error) {
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parse candle ts %q: %w", row[0], err)
	}

	vals := make([]float64, 4)
	for i, s := range row[1:5] {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("parse candle field %q: %w", s, err)
		}
		vals[i] = v
	}

	return domain.Candle{
		OpenTimeMs: ts,
		Open:       vals[0],
		High:       vals[1],
		Low:        vals[2],
		Close:      vals[3],
	}, nil
}

// parseMs parses an OKX millisecond timestamp string, 0 when absent.
func parseMs(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
