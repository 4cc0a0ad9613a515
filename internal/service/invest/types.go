package invest

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MarketPulse/pkg/util"
)

// quotation is the exchange wire format for prices: integer units plus
// nanoseconds of a unit. Decoded into decimal, never float.
type quotation struct {
	Units int64 `json:"units"`
	Nano  int32 `json:"nano"`
}

func (q quotation) Decimal() decimal.Decimal {
	return decimal.New(q.Units, 0).Add(decimal.New(int64(q.Nano), -9))
}

// wireTime accepts RFC3339 or unix seconds; older exchange endpoints
// still emit the latter.
type wireTime struct {
	time.Time
}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, ok := util.ParseTime(s)
	if !ok {
		return fmt.Errorf("unsupported time value %q", s)
	}
	t.Time = parsed
	return nil
}

type wireCandle struct {
	Time   wireTime  `json:"time"`
	Open   quotation `json:"open"`
	High   quotation `json:"high"`
	Low    quotation `json:"low"`
	Close  quotation `json:"close"`
	Volume int64     `json:"volume"`
}

type candlesResponse struct {
	Candles []wireCandle `json:"candles"`
}

type wireInstrument struct {
	FIGI   string `json:"figi"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

type instrumentsResponse struct {
	Instruments []wireInstrument `json:"instruments"`
}

type wireLevel struct {
	Price    quotation `json:"price"`
	Quantity int64     `json:"quantity"`
}

type subscribeMessage struct {
	Event string `json:"event"`
	FIGI  string `json:"figi"`
	Depth int    `json:"depth"`
}

type streamEvent struct {
	Event   string           `json:"event"`
	Payload orderBookPayload `json:"payload"`
}

type orderBookPayload struct {
	FIGI string      `json:"figi"`
	Bids []wireLevel `json:"bids"`
	Asks []wireLevel `json:"asks"`
}
