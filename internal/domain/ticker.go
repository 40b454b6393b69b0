package domain

// Ticker is the unified ticker shape. The live-rate payload carries only a
// handful of fields; everything the exchange does not report stays nil.
type Ticker struct {
	Symbol      string
	Bid         *float64
	Ask         *float64
	Last        *float64
	Close       *float64
	High        *float64
	Low         *float64
	Open        *float64
	Percentage  *float64
	BaseVolume  *float64
	QuoteVolume *float64
	// Info preserves the raw exchange payload for diagnostics.
	Info map[string]any
}

// Candle is one OHLCV bar, passed through exactly as the exchange reports it.
// No aggregation or resampling is performed.
type Candle struct {
	Time   int64 // milliseconds since epoch
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
