// Command backfill publishes historical daily bars from a CSV file onto
// the bars topic, letting the regular ingestion path load them. Expected
// columns: ticker,date,open,high,low,close,volume with a header row.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"TrendLab/internal/usecase"
	"TrendLab/pkg/config"
	"TrendLab/pkg/kafka"
	"TrendLab/pkg/logger"
	"TrendLab/pkg/util"
)

const publishBatchSize = 500

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to CSV file with daily bars")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill -file bars.csv [-config config/config.yaml]")
		os.Exit(1)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log, *filePath); err != nil {
		log.Error("backfill failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger, path string) error {
	producer, err := kafka.NewProducer(
		kafka.WithProducerBrokers(cfg.Kafka.Brokers),
		kafka.WithProducerCompression(cfg.Kafka.Compression),
		kafka.WithProducerBatch(cfg.Kafka.Producer.BatchSize, 1048576, cfg.Kafka.Producer.BatchTimeout),
		kafka.WithProducerRetry(cfg.Kafka.Producer.MaxAttempts),
		kafka.WithProducerWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		kafka.WithProducerHashByKey(),
	)
	if err != nil {
		return fmt.Errorf("create producer: %w", err)
	}
	defer producer.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	ctx := context.Background()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 7

	batch := make([]kafka.Message, 0, publishBatchSize)
	line, published := 0, 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv line %d: %w", line+1, err)
		}
		line++
		if line == 1 && record[0] == "ticker" {
			continue
		}

		msg, err := parseRecord(record)
		if err != nil {
			log.Warn("skipping bad row", logger.Int("line", line), logger.Error(err))
			continue
		}
		batch = append(batch, kafka.Message{Key: []byte(msg.Ticker), Value: msg})

		if len(batch) >= publishBatchSize {
			if err := producer.PublishBatch(ctx, cfg.Kafka.BarsTopic, batch); err != nil {
				return fmt.Errorf("publish batch: %w", err)
			}
			published += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := producer.PublishBatch(ctx, cfg.Kafka.BarsTopic, batch); err != nil {
			return fmt.Errorf("publish batch: %w", err)
		}
		published += len(batch)
	}

	log.Info("backfill complete",
		logger.String("topic", cfg.Kafka.BarsTopic),
		logger.Int("published", published))
	return nil
}

func parseRecord(record []string) (*usecase.BarMessage, error) {
	if record[0] == "" {
		return nil, fmt.Errorf("empty ticker")
	}
	if _, ok := util.ParseDate(record[1]); !ok {
		return nil, fmt.Errorf("unparseable date %q", record[1])
	}
	vals := make([]float64, 4)
	for i, field := range record[2:6] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("parse field %d: %w", i+2, err)
		}
		vals[i] = v
	}
	volume, err := strconv.ParseUint(record[6], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse volume: %w", err)
	}
	return &usecase.BarMessage{
		Ticker: record[0],
		Date:   record[1],
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: volume,
	}, nil
}
