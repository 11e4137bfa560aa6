package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"btc-journal-lab/internal/observability"
)

// candleRow renders one OKX candle row for a flat bar at the given price.
func candleRow(tsMs int64, price float64) []string {
	p := strconv.FormatFloat(price, 'f', -1, 64)
	return []string{strconv.FormatInt(tsMs, 10), p, p, p, p, "1"}
}

func okxOK(w http.ResponseWriter, data any) {
	raw, _ := json.Marshal(data)
	fmt.Fprintf(w, `{"code":"0","msg":"","data":%s}`, raw)
}

func TestCandles_PagesBackwardAndNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != okxCandlePath {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("instId"); got != DefaultInstID {
			t.Errorf("instId = %q", got)
		}
		// Newest first; the second page repeats the cursor bar to mimic
		// the overlap real paging produces.
		switch r.URL.Query().Get("after") {
		case "":
			okxOK(w, [][]string{
				candleRow(5000, 103),
				candleRow(4000, 102),
				candleRow(3000, 101),
			})
		case "3000":
			okxOK(w, [][]string{
				candleRow(3000, 101),
				candleRow(2000, 100),
				candleRow(1000, 99),
				candleRow(500, 98),
			})
		default:
			okxOK(w, [][]string{})
		}
	}))
	defer srv.Close()

	c := fastClient(WithOKXBaseURL(srv.URL))
	candles, err := c.Candles(context.Background(), 1000, 5000)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}

	if len(candles) != 5 {
		t.Fatalf("expected 5 candles in window, got %d", len(candles))
	}
	for i, want := range []int64{1000, 2000, 3000, 4000, 5000} {
		if candles[i].OpenTimeMs != want {
			t.Errorf("candle %d: open time %d, want %d", i, candles[i].OpenTimeMs, want)
		}
	}
	if err := Validate(candles); err != nil {
		t.Errorf("normalized series failed validation: %v", err)
	}
}

func TestCandles_StopsAtPageBudget(t *testing.T) {
	var pages int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		// Every page claims there is always older data.
		after := r.URL.Query().Get("after")
		cursor := int64(1_000_000)
		if after != "" {
			cursor, _ = strconv.ParseInt(after, 10, 64)
		}
		okxOK(w, [][]string{candleRow(cursor-1000, 100)})
	}))
	defer srv.Close()

	c := fastClient(WithOKXBaseURL(srv.URL))
	if _, err := c.Candles(context.Background(), 0, 2_000_000); err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if pages != maxCandlePages {
		t.Errorf("expected %d pages, got %d", maxCandlePages, pages)
	}
}

func TestCandles_OKXErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`)
	}))
	defer srv.Close()

	c := fastClient(WithOKXBaseURL(srv.URL))
	if _, err := c.Candles(context.Background(), 0, 1000); err == nil {
		t.Fatal("expected error for non-zero okx code")
	}
}

func TestCandles_RecordsFetchMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okxOK(w, [][]string{
			candleRow(3000, 101),
			candleRow(2000, 100),
			candleRow(1000, 99),
		})
	}))
	defer srv.Close()

	fetchedBefore := testutil.ToFloat64(observability.DefaultMetrics.CandlesFetched)
	errorsBefore := testutil.ToFloat64(observability.DefaultMetrics.CandleFetchErrors)

	c := fastClient(WithOKXBaseURL(srv.URL))
	candles, err := c.Candles(context.Background(), 1000, 3000)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}

	fetched := testutil.ToFloat64(observability.DefaultMetrics.CandlesFetched) - fetchedBefore
	if fetched != float64(len(candles)) {
		t.Errorf("candles fetched counter moved by %v, want %d", fetched, len(candles))
	}
	if got := testutil.ToFloat64(observability.DefaultMetrics.CandleFetchErrors) - errorsBefore; got != 0 {
		t.Errorf("error counter moved by %v on a clean fetch", got)
	}
	if testutil.CollectAndCount(observability.DefaultMetrics.FetchLatency) == 0 {
		t.Error("fetch latency histogram has no series")
	}
}

func TestCandles_RecordsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"51001","msg":"Instrument ID does not exist","data":[]}`)
	}))
	defer srv.Close()

	errorsBefore := testutil.ToFloat64(observability.DefaultMetrics.CandleFetchErrors)

	c := fastClient(WithOKXBaseURL(srv.URL))
	if _, err := c.Candles(context.Background(), 0, 1000); err == nil {
		t.Fatal("expected error for non-zero okx code")
	}
	if got := testutil.ToFloat64(observability.DefaultMetrics.CandleFetchErrors) - errorsBefore; got != 1 {
		t.Errorf("error counter moved by %v, want 1", got)
	}
}

func TestCandles_MalformedRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		okxOK(w, [][]string{{"1000", "100"}})
	}))
	defer srv.Close()

	c := fastClient(WithOKXBaseURL(srv.URL))
	if _, err := c.Candles(context.Background(), 0, 2000); err == nil {
		t.Fatal("expected error for short candle row")
	}
}

func TestFundingSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != okxFundingPath {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"code":"0","msg":"","data":[{
			"instId":"BTC-USDT-SWAP",
			"fundingRate":"0.00025",
			"premium":"0.0001",
			"fundingTime":"1700000000000",
			"nextFundingTime":"1700028800000",
			"ts":"1699999000000",
			"method":"current_period"
		}]}`)
	}))
	defer srv.Close()

	c := fastClient(WithOKXBaseURL(srv.URL))
	snap, err := c.FundingSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FundingSnapshot: %v", err)
	}
	if snap.InstID != "BTC-USDT-SWAP" {
		t.Errorf("InstID = %q", snap.InstID)
	}
	if snap.FundingRate != 0.00025 {
		t.Errorf("FundingRate = %v", snap.FundingRate)
	}
	if snap.Premium != 0.0001 {
		t.Errorf("Premium = %v", snap.Premium)
	}
	if snap.FundingTimeMs != 1700000000000 {
		t.Errorf("FundingTimeMs = %d", snap.FundingTimeMs)
	}
}

func TestFundingSnapshot_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"0","msg":"","data":[]}`)
	}))
	defer srv.Close()

	c := fastClient(WithOKXBaseURL(srv.URL))
	if _, err := c.FundingSnapshot(context.Background()); err == nil {
		t.Fatal("expected error for empty funding data")
	}
}
