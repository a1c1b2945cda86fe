package services

import (
	"context"
	"time"
)

// EventPublisher is satisfied by the SNS client.
type EventPublisher interface {
	Publish(ctx context.Context, topicArn string, message []byte) error
}

// MetricsRecorder is satisfied by the CloudWatch metrics client.
type MetricsRecorder interface {
	RecordValue(ctx context.Context, metricName string, value float64, dimensions map[string]string) error
	RecordLatency(ctx context.Context, metricName string, duration time.Duration, dimensions map[string]string) error
}

const EventImportCompleted = "catalog.import.completed"

// ImportCompletedEvent is published once an import has written its records.
type ImportCompletedEvent struct {
	Event     string    `json:"event"`
	JobID     string    `json:"job_id,omitempty"`
	TotalRows int       `json:"total_rows"`
	Invalid   int       `json:"invalid"`
	Created   int       `json:"created"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}
