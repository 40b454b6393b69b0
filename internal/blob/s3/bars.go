package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// multipartThreshold is the payload size above which an archive upload
// switches from a single PutObject to a multipart upload.
const multipartThreshold = 8 * 1024 * 1024

// BarArchiver serializes fetched OHLCV bars to JSONL and uploads them to
// object storage, partitioned by symbol and day. It keeps no state of its
// own; re-archiving the same day overwrites the previous object.
type BarArchiver struct {
	writer domain.BlobWriter
}

// NewBarArchiver creates a new BarArchiver.
func NewBarArchiver(writer domain.BlobWriter) *BarArchiver {
	return &BarArchiver{writer: writer}
}

// ArchiveBars uploads the given candles to
// bars/{SYMBOL}/{timeframe}/YYYY-MM-DD.jsonl, using day as the partition
// date. Payloads over the multipart threshold upload in parts. It returns the
// number of bars written. An empty candle slice is a no-op.
func (a *BarArchiver) ArchiveBars(ctx context.Context, symbol, timeframe string, day time.Time, candles []domain.Candle) (int64, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, c := range candles {
		if err := enc.Encode(c); err != nil {
			return 0, fmt.Errorf("s3blob: encode bar %d: %w", i, err)
		}
	}

	path := barPath(symbol, timeframe, day)
	if buf.Len() >= multipartThreshold {
		if err := a.writer.PutMultipart(ctx, path, bytes.NewReader(buf.Bytes()), minPartSize); err != nil {
			return 0, fmt.Errorf("s3blob: archive bars upload: %w", err)
		}
	} else if err := a.writer.Put(ctx, path, bytes.NewReader(buf.Bytes()), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive bars upload: %w", err)
	}

	return int64(len(candles)), nil
}

// barPath builds the object key for one day of bars. The symbol's slash is
// flattened so keys stay one level per component:
//
//	bars/BTC-AUD/1h/2026-08-31.jsonl
func barPath(symbol, timeframe string, day time.Time) string {
	flat := strings.ReplaceAll(symbol, "/", "-")
	return fmt.Sprintf("bars/%s/%s/%s.jsonl", flat, timeframe, day.Format("2006-01-02"))
}
