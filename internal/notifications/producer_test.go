package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReservationEvent(t *testing.T) {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true
	sp := mocks.NewSyncProducer(t, cfg)

	event := NewReservationConfirmed("R-100", "T1")
	event.PassengerCount = 2
	event.Authenticated = true

	sp.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "R-100" {
			return errors.New("unexpected partition key " + string(key))
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var decoded ReservationEvent
		if err := json.Unmarshal(value, &decoded); err != nil {
			return err
		}
		if decoded.Type != EventTypeReservationConfirmed || decoded.PassengerCount != 2 {
			return errors.New("unexpected payload")
		}
		return nil
	})

	producer := NewKafkaEventProducerWith(sp, "reservation-events")
	require.NoError(t, producer.PublishReservationEvent(context.Background(), event))
	require.NoError(t, producer.Close())
}

func TestPublishReservationEventFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewKafkaEventProducerWith(sp, "reservation-events")
	err := producer.PublishReservationEvent(context.Background(), NewReservationConfirmed("R-1", "T1"))
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, producer.Close())
}
