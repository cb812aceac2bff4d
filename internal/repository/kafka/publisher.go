// Package kafka streams completed analyses to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/smartcity/evsite/internal/domain"
)

// PredictionEvent is the message published for each completed analysis.
type PredictionEvent struct {
	AnalysisID   string                  `json:"analysis_id"`
	LocationName string                  `json:"location_name"`
	Location     domain.LocationRecord   `json:"location"`
	Result       domain.PredictionResult `json:"result"`
	CreatedAt    time.Time               `json:"created_at"`
}

// Publisher implements domain.PredictionRecorder over a sarama SyncProducer.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher wraps an existing producer.
func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

// Dial connects a SyncProducer to a comma-separated broker list.
func Dial(brokerList, topic string) (*Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second

	brokers := strings.Split(brokerList, ",")
	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, eris.Wrap(err, "kafka: create producer")
	}

	zap.L().Info("kafka producer connected", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return NewPublisher(producer, topic), nil
}

// RecordPrediction publishes the analysis keyed by analysis id.
func (p *Publisher) RecordPrediction(_ context.Context, rec domain.PredictionRecord) error {
	msg, err := json.Marshal(PredictionEvent{
		AnalysisID:   rec.AnalysisID,
		LocationName: rec.LocationName,
		Location:     rec.Location,
		Result:       rec.Result,
		CreatedAt:    rec.CreatedAt,
	})
	if err != nil {
		return eris.Wrap(err, "kafka: marshal prediction event")
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(rec.AnalysisID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return eris.Wrapf(err, "kafka: send to topic %s", p.topic)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
