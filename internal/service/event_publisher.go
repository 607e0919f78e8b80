package service

import (
	"context"
	"errors"

	"github.com/mahimasingh04/OpenEvent/internal/domain"
	"github.com/mahimasingh04/OpenEvent/pkg/kafka"
)

// EventPublisher defines the interface for publishing committed engine changes
type EventPublisher interface {
	// Publish writes one engine event to the stream
	Publish(ctx context.Context, event *domain.EngineEvent) error

	// Close closes the event publisher
	Close() error
}

// Producer is the part of the Kafka producer the publisher uses
type Producer interface {
	ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Topic       string
	ServiceName string
}

// NewKafkaEventPublisher creates a publisher over an existing producer
func NewKafkaEventPublisher(producer Producer, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if producer == nil {
		return nil, errors.New("kafka producer is required")
	}
	topic := "ticket-engine.events"
	serviceName := "openevent-engine"
	if cfg != nil {
		if cfg.Topic != "" {
			topic = cfg.Topic
		}
		if cfg.ServiceName != "" {
			serviceName = cfg.ServiceName
		}
	}
	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// Publish writes the event keyed by event id so per-event order is kept
func (p *KafkaEventPublisher) Publish(ctx context.Context, event *domain.EngineEvent) error {
	if event == nil {
		return errors.New("engine event cannot be nil")
	}
	headers := map[string]string{
		"event_type":   string(event.Type),
		"event_id":     event.ID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}
	return p.producer.ProduceJSON(ctx, p.topic, event.Key(), event, headers)
}

// Close closes the underlying producer when it owns one
func (p *KafkaEventPublisher) Close() error {
	if closer, ok := p.producer.(*kafka.Producer); ok {
		closer.Close()
	}
	return nil
}

// NoOpEventPublisher drops every event
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a publisher for runs without Kafka
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// Publish does nothing
func (p *NoOpEventPublisher) Publish(ctx context.Context, event *domain.EngineEvent) error {
	return nil
}

// Close does nothing
func (p *NoOpEventPublisher) Close() error {
	return nil
}
