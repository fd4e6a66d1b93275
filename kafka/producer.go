package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"pos-service/models"
)

// Producer mirrors every committed sale onto a Kafka topic. Receipt
// printing and other downstream consumers hang off this stream; the core
// treats it as a best-effort sink.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

func (p *Producer) PublishSale(ctx context.Context, sale models.Sale) error {
	payload, err := json.Marshal(sale)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(sale.ID),
		Value: payload,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
