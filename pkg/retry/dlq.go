package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DeadLetter is an operation that kept failing and was parked for manual handling
type DeadLetter struct {
	ID             string            `json:"id"`
	Topic          string            `json:"topic"`
	Key            string            `json:"key"`
	Payload        json.RawMessage   `json:"payload"`
	Headers        map[string]string `json:"headers,omitempty"`
	Error          string            `json:"error"`
	Attempts       int               `json:"attempts"`
	FirstAttemptAt time.Time         `json:"first_attempt_at"`
	LastAttemptAt  time.Time         `json:"last_attempt_at"`
	Source         string            `json:"source"`
}

// DLQPublisher parks dead letters somewhere durable
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg *DeadLetter) error
}

// JSONProducer is the subset of a Kafka producer the DLQ needs
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error
}

// KafkaDLQPublisher writes dead letters to a single Kafka topic
type KafkaDLQPublisher struct {
	producer JSONProducer
	topic    string
	source   string
}

// NewKafkaDLQPublisher creates a DLQ publisher writing to topic
func NewKafkaDLQPublisher(producer JSONProducer, topic, source string) *KafkaDLQPublisher {
	return &KafkaDLQPublisher{producer: producer, topic: topic, source: source}
}

// PublishToDLQ publishes a dead letter
func (p *KafkaDLQPublisher) PublishToDLQ(ctx context.Context, msg *DeadLetter) error {
	if msg == nil {
		return errors.New("dead letter cannot be nil")
	}
	msg.Source = p.source

	headers := map[string]string{
		"content_type":   "application/json",
		"original_topic": msg.Topic,
		"error":          msg.Error,
		"attempts":       fmt.Sprintf("%d", msg.Attempts),
		"source":         msg.Source,
	}
	for k, v := range msg.Headers {
		if _, exists := headers[k]; !exists {
			headers["original_"+k] = v
		}
	}

	return p.producer.ProduceJSON(ctx, p.topic, msg.Key, msg, headers)
}

// NoOpDLQPublisher drops dead letters
type NoOpDLQPublisher struct{}

func (NoOpDLQPublisher) PublishToDLQ(ctx context.Context, msg *DeadLetter) error { return nil }

// DLQHandler runs an operation with retries and parks it on exhaustion
type DLQHandler struct {
	retrier   *Retrier
	publisher DLQPublisher
	onDLQ     func(msg *DeadLetter)
}

// NewDLQHandler creates a DLQ handler. onDLQ may be nil.
func NewDLQHandler(config *Config, publisher DLQPublisher, onDLQ func(msg *DeadLetter)) *DLQHandler {
	if publisher == nil {
		publisher = NoOpDLQPublisher{}
	}
	return &DLQHandler{
		retrier:   New(config),
		publisher: publisher,
		onDLQ:     onDLQ,
	}
}

// Process runs op; if it still fails after retries, letter is completed and published.
// The operation error is returned either way.
func (h *DLQHandler) Process(ctx context.Context, letter *DeadLetter, op Operation) error {
	if letter.FirstAttemptAt.IsZero() {
		letter.FirstAttemptAt = time.Now()
	}

	result := h.retrier.Do(ctx, op)
	if result.Err == nil {
		return nil
	}

	cause := result.LastError
	if cause == nil {
		cause = result.Err
	}
	letter.Error = cause.Error()
	letter.Attempts = result.Attempts
	letter.LastAttemptAt = time.Now()

	if h.onDLQ != nil {
		h.onDLQ(letter)
	}

	// the caller's context may already be done; parking must still happen
	if err := h.publisher.PublishToDLQ(context.WithoutCancel(ctx), letter); err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w (original error: %v)", err, cause)
	}
	return cause
}
