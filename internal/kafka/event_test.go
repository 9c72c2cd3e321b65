package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBookingEvent(t *testing.T) {
	at := time.Date(2025, 1, 10, 19, 0, 0, 0, time.UTC)
	payload, err := json.Marshal(BookingEvent{Type: EventBookingCreated, BookingID: 7, TableID: 2, Guests: 4, Time: at})
	require.NoError(t, err)

	event, err := DecodeBookingEvent(kafka.Message{Value: payload})
	require.NoError(t, err)
	assert.Equal(t, EventBookingCreated, event.Type)
	assert.Equal(t, 7, event.BookingID)
	assert.True(t, at.Equal(event.Time))
	assert.Equal(t, "7", event.Key())

	_, err = DecodeBookingEvent(kafka.Message{Value: []byte("{"), Offset: 3})
	assert.Error(t, err)
}

func TestBookingEventsHandler(t *testing.T) {
	var got BookingEvent
	handler := BookingEvents(func(_ context.Context, e BookingEvent) error {
		got = e
		return nil
	})

	payload, _ := json.Marshal(BookingEvent{Type: EventBookingCancelled, BookingID: 3})
	require.NoError(t, handler(context.Background(), kafka.Message{Value: payload}))
	assert.Equal(t, 3, got.BookingID)

	failing := BookingEvents(func(context.Context, BookingEvent) error { return errors.New("boom") })
	assert.Error(t, failing(context.Background(), kafka.Message{Value: payload}))
	assert.Error(t, handler(context.Background(), kafka.Message{Value: []byte("not json")}))
}

func TestCheckConnection_NoBrokers(t *testing.T) {
	p := NewProducer(nil)
	defer p.Close()
	assert.Error(t, p.CheckConnection(context.Background()))
}
