package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse/internal/core/domain"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestPublish_KeyedBySale(t *testing.T) {
	w := &captureWriter{}
	p := NewKafkaPublisher(w)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	err := p.Publish(context.Background(), domain.SaleEvent{
		Type:       domain.SaleEventStockDeducted,
		Sale:       domain.Sale{ID: "s1", ProductID: "p1", AmountSold: 3},
		Deductions: []domain.StockDeduction{{ID: "a1", AmountToSubtract: 6}},
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "s1", string(msg.Key))
	assert.Equal(t, "stock.deducted", string(msg.Headers[0].Value))
	assert.Equal(t, at, msg.Time)

	var decoded domain.SaleEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, 6, decoded.Deductions[0].AmountToSubtract)
}

func TestPublish_WriterError(t *testing.T) {
	p := NewKafkaPublisher(&captureWriter{err: errors.New("broker down")})

	err := p.Publish(context.Background(), domain.SaleEvent{Type: domain.SaleEventCreated})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewKafkaWriter_DefaultTopic(t *testing.T) {
	w := NewKafkaWriter("localhost:9092", "")
	assert.Equal(t, DefaultTopic, w.Topic)
}
