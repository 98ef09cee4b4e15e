package server

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) FetchHistory(_ context.Context, ticker string, req models.MHistoryRequest) (models.MRawHistory, error) {
	out := models.MRawHistory{Ticker: ticker, Timezone: "America/New_York"}
	var start time.Time
	switch ticker {
	case "AAPL", "^GSPC":
		start = time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	case "^N225":
		start = time.Date(2022, 1, 3, 14, 30, 0, 0, time.UTC)
	default:
		return out, nil
	}
	step := 24 * time.Hour
	if req.Interval == "1m" {
		step = time.Minute
	}
	for i := 0; i < 30; i++ {
		c, v := 100+float64(i%7), 1000.0
		out.Rows = append(out.Rows, models.MRawRow{
			Timestamp: start.Add(time.Duration(i) * step).Unix(),
			Open:      &c, High: &c, Low: &c, Close: &c, Volume: &v,
		})
	}
	return out, nil
}

func (stubProvider) FetchQuoteMetadata(_ context.Context, ticker string) (models.MQuoteMetadata, error) {
	if ticker != "AAPL" {
		return models.MQuoteMetadata{Ticker: ticker, LogoURL: models.Absent[string]("no website")}, nil
	}
	return models.MQuoteMetadata{
		Ticker:        ticker,
		ShortName:     models.Present("Apple Inc."),
		CurrentPrice:  models.Present(150.0),
		PreviousClose: models.Present(148.5),
		LogoURL:       models.Present("https://logo.example.com/apple.com"),
	}, nil
}

type stubImages struct{ fail bool }

func (s stubImages) FetchImage(context.Context, string) (image.Image, string, error) {
	if s.fail {
		return nil, "", errors.New("decode failed")
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	return img, "jpeg", nil
}

func newTestServer(t *testing.T, images stubImages) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, stubProvider{}, images)
}

func newTestServerWith(t *testing.T, provider interfaces.IMarketDataProvider, images stubImages) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &models.MConfig{Host: "127.0.0.1", Port: 8080, LogLevel: "ERROR"}
	log := logger.NewLoggerTo(io.Discard, "ERROR", "server")
	settings := models.MDashboardConfig{
		DefaultTicker: "AAPL", DefaultPeriod: models.PeriodSixMonths, Benchmark: "^GSPC",
		BandLookback: 5, BandStdDev: 2, ForecastWeeksMax: 8,
	}
	dash := pipeline.NewDashboard(settings, provider, nil, nil, nil, log)
	s := NewDashboardServer(cfg, dash, images, log)

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		srv.Close()
		s.Stop(context.Background())
	})
	return srv
}

func getJSON(t *testing.T, rawURL string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", rawURL, err)
		}
	}
	return resp.StatusCode
}

func TestHealthAndPeriods(t *testing.T) {
	srv := newTestServer(t, stubImages{})

	var health map[string]interface{}
	if code := getJSON(t, srv.URL+"/api/health", &health); code != http.StatusOK || health["provider"] != "stub" {
		t.Errorf("health = %d %v", code, health)
	}

	var periods struct {
		Periods []string `json:"periods"`
		Default string   `json:"default"`
	}
	getJSON(t, srv.URL+"/api/periods", &periods)
	if len(periods.Periods) != len(models.PeriodTokens) || periods.Default != models.PeriodSixMonths {
		t.Errorf("periods = %+v", periods)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t, stubImages{})

	var resp struct {
		Ticker     string          `json:"ticker"`
		Bands      json.RawMessage `json:"bands"`
		Comparison json.RawMessage `json:"comparison"`
		Snapshot   *struct {
			AbsoluteChange float64 `json:"absolute_change"`
		} `json:"snapshot"`
		Warnings []string `json:"warnings"`
	}
	q := url.Values{"ticker": {"aapl"}, "bands": {"true"}, "compare": {"true"}, "snapshot": {"true"}}
	if code := getJSON(t, srv.URL+"/api/dashboard?"+q.Encode(), &resp); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if resp.Ticker != "AAPL" || len(resp.Bands) == 0 || len(resp.Comparison) == 0 || resp.Snapshot == nil {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Snapshot.AbsoluteChange != 1.5 {
		t.Errorf("absolute change = %v", resp.Snapshot.AbsoluteChange)
	}
	if len(resp.Warnings) != 0 {
		t.Errorf("warnings = %v", resp.Warnings)
	}
}

func TestDashboardPost(t *testing.T) {
	srv := newTestServer(t, stubImages{})
	body := strings.NewReader(`{"ticker":"AAPL","forecast":true,"forecast_weeks":2}`)
	resp, err := http.Post(srv.URL+"/api/dashboard", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out models.MDashboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || out.Forecast == nil || out.Forecast.Weeks != 2 {
		t.Errorf("status=%d forecast=%+v", resp.StatusCode, out.Forecast)
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t, stubImages{})
	cases := []struct {
		path string
		want int
	}{
		{"/api/dashboard?ticker=ZZZZ", http.StatusNotFound},
		{"/api/series?ticker=AAPL&period=fortnight", http.StatusBadRequest},
		{"/api/bands?ticker=AAPL&lookback=abc", http.StatusBadRequest},
		{"/api/comparison?ticker=AAPL&benchmark=%5EN225", http.StatusUnprocessableEntity},
		{"/api/forecast?ticker=AAPL&weeks=99", http.StatusBadRequest},
	}
	for _, tc := range cases {
		var body map[string]string
		if code := getJSON(t, srv.URL+tc.path, &body); code != tc.want {
			t.Errorf("%s: status %d, want %d (%v)", tc.path, code, tc.want, body)
		}
		if body["error"] == "" {
			t.Errorf("%s: missing error message", tc.path)
		}
	}

	var body map[string]string
	getJSON(t, srv.URL+"/api/series?ticker=ZZZZ", &body)
	if body["error"] != helpers.NewEmptyResultError("ZZZZ").Error() {
		t.Errorf("empty result message = %q", body["error"])
	}
}

func TestStageEndpoints(t *testing.T) {
	srv := newTestServer(t, stubImages{})

	var series models.MSeries
	if code := getJSON(t, srv.URL+"/api/series?ticker=AAPL&period=1+day", &series); code != http.StatusOK {
		t.Fatalf("series status %d", code)
	}
	if series.Granularity != models.GranularityIntraday || series.Len() != 30 {
		t.Errorf("series = %s/%d", series.Granularity, series.Len())
	}

	var bands struct {
		Overlays []models.MOverlay `json:"overlays"`
	}
	getJSON(t, srv.URL+"/api/bands?ticker=AAPL&overlays=sma,rsi", &bands)
	if len(bands.Overlays) != 2 {
		t.Errorf("overlays = %d", len(bands.Overlays))
	}

	var profile map[string]json.RawMessage
	getJSON(t, srv.URL+"/api/profile?ticker=AAPL", &profile)
	if string(profile["short_name"]) != `{"value":"Apple Inc."}` {
		t.Errorf("short_name = %s", profile["short_name"])
	}
}

func TestLogo(t *testing.T) {
	srv := newTestServer(t, stubImages{})
	resp, err := http.Get(srv.URL + "/api/logo/AAPL")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("status=%d type=%s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	var body map[string]string
	if code := getJSON(t, srv.URL+"/api/logo/SPY", &body); code != http.StatusNotFound || body["logo"] != "no logo available" {
		t.Errorf("missing logo: %d %v", code, body)
	}

	broken := newTestServer(t, stubImages{fail: true})
	if code := getJSON(t, broken.URL+"/api/logo/AAPL", &body); code != http.StatusNotFound {
		t.Errorf("undecodable logo: %d", code)
	}
}

func TestWebSocketSession(t *testing.T) {
	srv := newTestServer(t, stubImages{})
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(models.MSessionEvent{Event: "ticker", Ticker: "AAPL"}); err != nil {
		t.Fatal(err)
	}
	var reply models.MSessionReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Event != "ticker" || reply.Error != "" || reply.Data == nil || reply.Data.Series == nil {
		t.Fatalf("ticker reply = %+v", reply)
	}

	on := true
	conn.WriteJSON(models.MSessionEvent{Event: "bands", Enabled: &on})
	reply = models.MSessionReply{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Event != "bands" || reply.Data == nil || reply.Data.Bands == nil || reply.Data.Series != nil {
		t.Errorf("bands reply = %+v", reply)
	}

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	reply = models.MSessionReply{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(reply.Error, "invalid event") {
		t.Errorf("bad message reply = %+v", reply)
	}
}

// gatedProvider holds every history fetch until release is closed.
type gatedProvider struct {
	stubProvider
	release chan struct{}
}

func (p gatedProvider) FetchHistory(ctx context.Context, ticker string, req models.MHistoryRequest) (models.MRawHistory, error) {
	select {
	case <-p.release:
	case <-ctx.Done():
		return models.MRawHistory{}, ctx.Err()
	}
	return p.stubProvider.FetchHistory(ctx, ticker, req)
}

func TestWebSocketReadsWhileRendering(t *testing.T) {
	provider := gatedProvider{release: make(chan struct{})}
	srv := newTestServerWith(t, provider, stubImages{})
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := conn.WriteJSON(models.MSessionEvent{Event: "ticker", Ticker: "AAPL"}); err != nil {
		t.Fatal(err)
	}
	// the ticker event is stuck in the provider; this message must still be read and answered
	conn.WriteMessage(websocket.TextMessage, []byte("not json"))

	var reply models.MSessionReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(reply.Error, "invalid event") {
		t.Fatalf("first reply = %+v, want the invalid-event reply", reply)
	}

	close(provider.release)
	reply = models.MSessionReply{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.Event != "ticker" || reply.Error != "" || reply.Data == nil || reply.Data.Series == nil {
		t.Errorf("ticker reply = %+v", reply)
	}
}
