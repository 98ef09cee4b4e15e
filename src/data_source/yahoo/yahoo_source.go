package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
)

const (
	DefaultBaseURL        = "https://query1.finance.yahoo.com"
	DefaultSummaryBaseURL = "https://query2.finance.yahoo.com"
	DefaultLogoBaseURL    = "https://logo.clearbit.com"

	chartPath   = "/v8/finance/chart/"
	summaryPath = "/v10/finance/quoteSummary/"
)

// YahooFinanceSource reads history and profile data from the public Yahoo Finance endpoints.
type YahooFinanceSource struct {
	Provider models.MProviderConfig
	Network  interfaces.INetworkManager
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg models.MProviderConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *YahooFinanceSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.SummaryBaseURL == "" {
		cfg.SummaryBaseURL = DefaultSummaryBaseURL
	}
	if cfg.LogoBaseURL == "" {
		cfg.LogoBaseURL = DefaultLogoBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.SummaryBaseURL = strings.TrimRight(cfg.SummaryBaseURL, "/")
	return &YahooFinanceSource{
		Provider: cfg,
		Network:  netMgr,
		Logger:   log,
	}
}

// Name identifies the source by its chart host so failover logs tell mirrors apart.
func (s *YahooFinanceSource) Name() string {
	if u, err := url.Parse(s.Provider.BaseURL); err == nil && u.Host != "" {
		return "yahoo:" + u.Host
	}
	return "yahoo"
}

// -----------------------------------------------------------------------------

type chartMeta struct {
	Currency             string   `json:"currency"`
	Symbol               string   `json:"symbol"`
	ExchangeName         string   `json:"exchangeName"`
	FullExchangeName     string   `json:"fullExchangeName"`
	InstrumentType       string   `json:"instrumentType"`
	ShortName            string   `json:"shortName"`
	LongName             string   `json:"longName"`
	ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
	RegularMarketPrice   *float64 `json:"regularMarketPrice"`
	PreviousClose        *float64 `json:"previousClose"`
	ChartPreviousClose   *float64 `json:"chartPreviousClose"`
	DataGranularity      string   `json:"dataGranularity"`
}

// YahooChartResponse is the v8 chart payload. Quote arrays hold nulls for missing samples.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta       chartMeta `json:"meta"`
			Timestamp  []int64   `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type assetProfile struct {
	Sector              string `json:"sector"`
	Industry            string `json:"industry"`
	Website             string `json:"website"`
	LongBusinessSummary string `json:"longBusinessSummary"`
}

// quoteSummaryResponse carries the assetProfile module only.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile assetProfile `json:"assetProfile"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// -----------------------------------------------------------------------------

// errNotFound marks an unknown symbol; callers turn it into zero rows.
var errNotFound = errors.New("symbol not found")

func (s *YahooFinanceSource) fetchChart(ctx context.Context, ticker string, params map[string]string) (*YahooChartResponse, error) {
	body, err := s.Network.Get(ctx, s.Provider.BaseURL+chartPath+url.PathEscape(ticker), params)
	if err != nil {
		var se *network.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, errNotFound
		}
		return nil, helpers.NewProviderError("chart request for "+ticker, err)
	}

	var resp YahooChartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewProviderError("chart payload for "+ticker, err)
	}
	if e := resp.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, errNotFound
		}
		return nil, helpers.NewProviderError(fmt.Sprintf("yahoo api error: %s - %s", e.Code, e.Description), nil)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, errNotFound
	}
	return &resp, nil
}

// -----------------------------------------------------------------------------

// FetchHistory requests a named range or an explicit period1/period2 span.
func (s *YahooFinanceSource) FetchHistory(ctx context.Context, ticker string, req models.MHistoryRequest) (models.MRawHistory, error) {
	params := map[string]string{
		"interval":       req.Interval,
		"includePrePost": "false",
		"events":         "div,splits",
	}
	if req.Range != "" {
		params["range"] = req.Range
	} else {
		params["period1"] = strconv.FormatInt(req.Start.Unix(), 10)
		params["period2"] = strconv.FormatInt(req.End.Unix(), 10)
	}

	out := models.MRawHistory{Ticker: ticker}
	resp, err := s.fetchChart(ctx, ticker, params)
	if errors.Is(err, errNotFound) {
		s.Logger.Info("No chart data for %s", ticker)
		return out, nil
	}
	if err != nil {
		return out, err
	}

	result := resp.Chart.Result[0]
	out.Timezone = result.Meta.ExchangeTimezoneName
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return out, nil
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n ||
		len(quote.Low) != n || len(quote.Volume) != n {
		return out, helpers.NewProviderError("data alignment error for "+ticker+": mismatched array lengths", nil)
	}

	out.Rows = make([]models.MRawRow, n)
	for i, ts := range result.Timestamp {
		out.Rows[i] = models.MRawRow{
			Timestamp: ts,
			Open:      quote.Open[i],
			High:      quote.High[i],
			Low:       quote.Low[i],
			Close:     quote.Close[i],
			Volume:    quote.Volume[i],
		}
	}

	s.Logger.Debug("Fetched %s: %d raw rows (%s, %s)", ticker, n, req.Interval, result.Meta.DataGranularity)
	return out, nil
}

// -----------------------------------------------------------------------------

// FetchQuoteMetadata combines chart meta (prices, names, exchange) with the asset profile.
// Profile lookup failures only mark the affected fields absent.
func (s *YahooFinanceSource) FetchQuoteMetadata(ctx context.Context, ticker string) (models.MQuoteMetadata, error) {
	md := models.MQuoteMetadata{Ticker: ticker}

	resp, err := s.fetchChart(ctx, ticker, map[string]string{"range": "1d", "interval": "1d"})
	if errors.Is(err, errNotFound) {
		return md, helpers.NewEmptyResultError(ticker)
	}
	if err != nil {
		return md, err
	}

	meta := resp.Chart.Result[0].Meta
	md.CurrentPrice = floatField(meta.RegularMarketPrice, "no market price")
	md.PreviousClose = floatField(meta.PreviousClose, "no previous close")
	md.ShortName = stringField(meta.ShortName)
	md.LongName = stringField(meta.LongName)
	md.Currency = stringField(meta.Currency)
	md.Exchange = stringField(firstNonEmpty(meta.FullExchangeName, meta.ExchangeName))
	md.InstrumentType = stringField(meta.InstrumentType)

	profile, perr := s.fetchProfile(ctx, ticker)
	if perr != nil {
		if ctx.Err() != nil {
			return md, ctx.Err()
		}
		s.Logger.Warning("Asset profile for %s unavailable: %v", ticker, perr)
		reason := "profile unavailable"
		md.Sector = models.Absent[string](reason)
		md.Industry = models.Absent[string](reason)
		md.Website = models.Absent[string](reason)
		md.BusinessSummary = models.Absent[string](reason)
		md.LogoURL = models.Absent[string](reason)
		return md, nil
	}

	md.Sector = stringField(profile.Sector)
	md.Industry = stringField(profile.Industry)
	md.Website = stringField(profile.Website)
	md.BusinessSummary = stringField(profile.LongBusinessSummary)
	md.LogoURL = s.logoURL(profile.Website)
	return md, nil
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) fetchProfile(ctx context.Context, ticker string) (assetProfile, error) {
	body, err := s.Network.Get(ctx, s.Provider.SummaryBaseURL+summaryPath+url.PathEscape(ticker), map[string]string{"modules": "assetProfile"})
	if err != nil {
		return assetProfile{}, err
	}
	var resp quoteSummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return assetProfile{}, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return assetProfile{}, fmt.Errorf("%s - %s", e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return assetProfile{}, errors.New("empty quote summary")
	}
	return resp.QuoteSummary.Result[0].AssetProfile, nil
}

// logoURL derives a logo image address from the company website's host.
func (s *YahooFinanceSource) logoURL(website string) models.Field[string] {
	if website == "" {
		return models.Absent[string]("no website")
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return models.Absent[string]("unparsable website")
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	return models.Present(strings.TrimRight(s.Provider.LogoBaseURL, "/") + "/" + host)
}

// -----------------------------------------------------------------------------

func floatField(v *float64, reason string) models.Field[float64] {
	if v == nil {
		return models.Absent[float64](reason)
	}
	return models.Present(*v)
}

func stringField(v string) models.Field[string] {
	if strings.TrimSpace(v) == "" {
		return models.Absent[string]("N/A")
	}
	return models.Present(v)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
