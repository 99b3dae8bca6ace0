package kafka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/application/dto"
	"github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/internal/domain/model"
	pkgkafka "github.com/akinyeraakintunde/enterprise-risk-intelligence-engine/pkg/kafka"
)

// EventsScorer is the use case the log stream feeds.
type EventsScorer interface {
	Execute(ctx context.Context, req dto.ScoreEventsRequest) (dto.ScoreEventsResponse, error)
}

// NewLogHandler returns a consumer handler for raw log messages. A message
// holds either one JSON log record or a JSON array of them. Undecodable
// messages are logged and skipped so they do not block the partition.
func NewLogHandler(scorer EventsScorer, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		records, err := DecodeLogRecords(msg.Value)
		if err != nil {
			logger.WarnContext(ctx, "skipping undecodable log message",
				"key", string(msg.Key),
				"error", err,
			)
			return nil
		}
		if len(records) == 0 {
			return nil
		}

		resp, err := scorer.Execute(ctx, dto.ScoreEventsRequest{Records: records})
		if err != nil {
			return fmt.Errorf("score log events: %w", err)
		}

		logger.DebugContext(ctx, "log message scored",
			"records", resp.Examined,
			"flagged", len(resp.Events),
			"critical", resp.CriticalCount,
		)
		return nil
	}
}

// DecodeLogRecords parses a single record object or an array of records.
func DecodeLogRecords(value []byte) ([]model.LogRecord, error) {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty log message")
	}

	if trimmed[0] == '[' {
		var records []model.LogRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode log records: %w", err)
		}
		return records, nil
	}

	var record model.LogRecord
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return nil, fmt.Errorf("decode log record: %w", err)
	}
	return []model.LogRecord{record}, nil
}
