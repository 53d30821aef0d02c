// Package kafka publishes finished risk assessments to a sink topic for
// downstream alerting and archival.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/config"
	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces assessments to a Kafka topic.
type Publisher struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a Kafka producer for the configured sink topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes one assessment and writes it to the sink topic. Messages
// are keyed by neighborhood id so per-neighborhood ordering is preserved.
func (p *Publisher) Publish(ctx context.Context, assessment domain.RiskAssessment) error {
	msg, err := serializeToMessage(assessment)
	if err != nil {
		p.metrics.PublishErrors.Inc()
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish assessment: %w", err)
	}
	p.metrics.AssessmentsPublished.Inc()
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a RiskAssessment into a Kafka message.
func serializeToMessage(assessment domain.RiskAssessment) (kafkago.Message, error) {
	data, err := json.Marshal(assessment)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize assessment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(assessment.NeighborhoodID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "risk_level", Value: []byte(assessment.RiskLevel)},
			{Key: "assessed_at", Value: []byte(assessment.AssessedAt.Format(time.RFC3339))},
		},
	}, nil
}
