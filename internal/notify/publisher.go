package notify

import (
	"fmt"

	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

const (
	DriverLog   = "log"
	DriverAMQP  = "amqp"
	DriverKafka = "kafka"
)

// NewPublisher builds the publisher selected by cfg.Driver.
func NewPublisher(cfg utils.NotifyConfig, log *zap.Logger) (Publisher, error) {
	switch cfg.Driver {
	case "", DriverLog:
		return NewLogPublisher(log), nil
	case DriverAMQP:
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, log)
	case DriverKafka:
		producer, err := NewKafkaProducer(cfg.Brokers)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return NewKafkaPublisher(producer, cfg.Topic, log), nil
	}
	return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
}
