package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func Test_KafkaPublisher_SendsJSON(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got Event
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != EventReservationConfirmed || got.ReservationID != "r-1" {
			return errors.New("unexpected event")
		}
		return nil
	})

	p := NewKafkaPublisher(producer, "reservation-events", zap.NewNop())
	err := p.Publish(context.Background(), Event{ID: "e-1", Type: EventReservationConfirmed, ReservationID: "r-1"})

	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func Test_KafkaPublisher_ReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisher(producer, "reservation-events", zap.NewNop())
	err := p.Publish(context.Background(), Event{Type: EventPaymentReceived})

	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func Test_KafkaPublisher_SkipsWhenCancelled(t *testing.T) {
	producer := mocks.NewSyncProducer(t, sarama.NewConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewKafkaPublisher(producer, "t", zap.NewNop()).Publish(ctx, Event{})

	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, producer.Close())
}
