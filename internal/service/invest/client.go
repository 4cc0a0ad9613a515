package invest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	xhttp "MarketPulse/pkg/http"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

// Client talks to the exchange REST API: instrument directory and historical
// candles. Requests are rate-limited and retried with exponential backoff.
type Client struct {
	baseURL string
	token   string
	http    *xhttp.Client
	log     *logger.Logger
}

// NewClient creates a new exchange REST client.
func NewClient(baseURL, token string, httpClient *xhttp.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    httpClient,
		log:     log.With("invest_client"),
	}
}

// GetCandles returns a time-ascending candle series covering up to
// lookbackDays ending at now.
func (c *Client) GetCandles(ctx context.Context, figi string, lookbackDays int, interval drepo.Interval) ([]models.Candle, error) {
	now := time.Now().UTC()
	// Align the window to candle boundaries so repeated calls within the
	// same bucket ask for the same range.
	from, to := util.AlignRange(now.AddDate(0, 0, -lookbackDays), now, string(interval))

	var resp candlesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/md/candles",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.token,
		},
		QueryParams: map[string][]string{
			"figi":     {figi},
			"from":     {from.Format(time.RFC3339)},
			"to":       {to.Format(time.RFC3339)},
			"interval": {string(interval)},
		},
	}, &resp)
	if err != nil {
		c.log.Warn("candle fetch failed",
			logger.String("figi", figi),
			logger.String("interval", string(interval)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}

	candles := make([]models.Candle, 0, len(resp.Candles))
	for _, wc := range resp.Candles {
		candles = append(candles, models.Candle{
			OpenTime: wc.Time.Time,
			Open:     wc.Open.Decimal(),
			High:     wc.High.Decimal(),
			Low:      wc.Low.Decimal(),
			Close:    wc.Close.Decimal(),
			Volume:   wc.Volume,
		})
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].OpenTime.Before(candles[j].OpenTime)
	})

	// The upstream occasionally repeats the forming bucket; keep the last one.
	deduped := candles[:0]
	for i, cd := range candles {
		if i > 0 && cd.OpenTime.Equal(deduped[len(deduped)-1].OpenTime) {
			deduped[len(deduped)-1] = cd
			continue
		}
		deduped = append(deduped, cd)
	}

	return deduped, nil
}

// ListInstruments returns the tradable universe.
func (c *Client) ListInstruments(ctx context.Context) ([]models.Instrument, error) {
	var resp instrumentsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/instruments/shares",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.token,
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}

	instruments := make([]models.Instrument, 0, len(resp.Instruments))
	for _, wi := range resp.Instruments {
		instruments = append(instruments, models.Instrument{
			FIGI:   wi.FIGI,
			Ticker: wi.Ticker,
			Name:   wi.Name,
			Class:  wi.Type,
		})
	}
	return instruments, nil
}

var (
	_ drepo.CandleSource     = (*Client)(nil)
	_ drepo.InstrumentSource = (*Client)(nil)
)
