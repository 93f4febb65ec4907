//go:build unit

package broker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"court-booking/internal/usecase/shared"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(t *testing.T, reservationID uuid.UUID) shared.NotificationJob {
	t.Helper()
	payload := []byte(`{"reservation_id":"` + reservationID.String() + `","status":"confirmed"}`)
	return shared.NotificationJob{
		ID:      uuid.New(),
		Kind:    shared.NotificationKindConfirmed,
		Topic:   shared.NotificationTopic,
		Payload: payload,
		RunAt:   time.Now(),
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	reservationID := uuid.New()
	job := testJob(t, reservationID)

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "reservation-notifications" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != reservationID.String() {
			return errors.New("key is not the reservation id")
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		if !bytes.Equal(value, job.Payload) {
			return errors.New("payload mismatch")
		}
		return nil
	})

	p := NewKafkaPublisher(producer, "reservation-notifications", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, p.Publish(context.Background(), job))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaPublisher(producer, "", slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := p.Publish(context.Background(), testJob(t, uuid.New()))

	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestPartitionKey(t *testing.T) {
	reservationID := uuid.New()
	assert.Equal(t, reservationID.String(), partitionKey(testJob(t, reservationID)))

	job := shared.NotificationJob{ID: uuid.New(), Payload: []byte("not json")}
	assert.Equal(t, job.ID.String(), partitionKey(job))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, p.Publish(context.Background(), testJob(t, uuid.New())))
	assert.Contains(t, buf.String(), shared.NotificationKindConfirmed)
}
