package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"TrendLab/internal/domain/models"
	domainrepo "TrendLab/internal/domain/repository"
	"TrendLab/pkg/logger"
	"TrendLab/pkg/util"
)

// BarMessage is the wire format of one daily bar on the ingest topic.
type BarMessage struct {
	Ticker string  `json:"ticker"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume uint64  `json:"volume"`
}

// BarIngestHandler consumes bar messages and appends them to the raw
// bar store. Malformed messages fail permanently so the consumer's
// retry/DLQ path takes over.
type BarIngestHandler struct {
	topic   string
	bars    domainrepo.BarStore
	log     *logger.Logger
	metrics domainrepo.Metrics
}

func NewBarIngestHandler(topic string, bars domainrepo.BarStore, log *logger.Logger, metrics domainrepo.Metrics) *BarIngestHandler {
	return &BarIngestHandler{topic: topic, bars: bars, log: log, metrics: metrics}
}

func (h *BarIngestHandler) Topic() string { return h.topic }

func (h *BarIngestHandler) Handle(ctx context.Context, data []byte) error {
	var msg BarMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.metrics.RecordError("ingest_decode")
		return fmt.Errorf("decode bar message: %w", err)
	}

	date, ok := util.ParseDate(msg.Date)
	if !ok {
		h.metrics.RecordError("ingest_date")
		return fmt.Errorf("bar %s has unparseable date %q", msg.Ticker, msg.Date)
	}

	bar := models.PriceBar{
		Ticker: msg.Ticker,
		Date:   date,
		Open:   msg.Open,
		High:   msg.High,
		Low:    msg.Low,
		Close:  msg.Close,
		Volume: msg.Volume,
	}
	if err := bar.Validate(); err != nil {
		h.metrics.RecordError("ingest_validate")
		return fmt.Errorf("invalid bar %s/%s: %w", msg.Ticker, msg.Date, err)
	}

	if err := h.bars.Append(ctx, []models.PriceBar{bar}); err != nil {
		h.metrics.RecordError("ingest_append")
		return fmt.Errorf("append bar: %w", err)
	}
	h.log.Debug("bar ingested",
		logger.String("ticker", bar.Ticker),
		logger.String("date", bar.Date.Format("2006-01-02")))
	return nil
}
