package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ChannelMock struct {
	mock.Mock
}

func (m *ChannelMock) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublisher_Publish(t *testing.T) {
	until := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	ev := Event{Type: KeyPremiumGranted, UserID: 3, Source: "admin", PremiumUntil: &until, At: until}

	chMock := new(ChannelMock)
	chMock.On("Publish", "entitlements", KeyPremiumGranted, false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got Event
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.ContentType == "application/json" &&
			msg.DeliveryMode == amqp.Persistent &&
			got.UserID == 3 && got.Source == "admin" && got.PremiumUntil.Equal(until)
	})).Return(nil).Once()

	p := NewPublisher(chMock, "entitlements")
	require.NoError(t, p.Publish(context.Background(), KeyPremiumGranted, ev))
	chMock.AssertExpectations(t)
}

func TestPublisher_Errors(t *testing.T) {
	t.Run("marshal error", func(t *testing.T) {
		chMock := new(ChannelMock)
		p := NewPublisher(chMock, "entitlements")

		err := p.Publish(context.Background(), "x", struct {
			Ch chan int `json:"ch"`
		}{Ch: make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.Publish")
		chMock.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("channel error", func(t *testing.T) {
		chMock := new(ChannelMock)
		chMock.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("channel closed")).Once()
		p := NewPublisher(chMock, "entitlements")

		err := p.Publish(context.Background(), KeyPremiumRevoked, Event{Type: KeyPremiumRevoked})
		assert.ErrorContains(t, err, "channel closed")
	})

	t.Run("canceled context", func(t *testing.T) {
		chMock := new(ChannelMock)
		p := NewPublisher(chMock, "entitlements")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.ErrorIs(t, p.Publish(ctx, "x", Event{}), context.Canceled)
	})
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), KeyUserRegistered, Event{}))
}
