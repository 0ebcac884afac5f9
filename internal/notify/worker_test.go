package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/embervale/backend-vapor/internal/common"
)

func TestHandleOrderConfirmation(t *testing.T) {
	outbox := &common.InMemoryEmail{}
	w := &Worker{Email: outbox, Log: zerolog.Nop()}

	task, err := NewOrderConfirmationTask(OrderConfirmationPayload{
		OrderID:    "5d2f1b34-9f1c-4a6c-90c8-0f6f2a9f7f11",
		CustomerID: "customer-1",
		Total:      "45",
		ItemCount:  5,
	})
	require.NoError(t, err)
	require.Equal(t, TypeOrderConfirmation, task.Type())

	require.NoError(t, w.HandleOrderConfirmation(context.Background(), task))
	require.Len(t, outbox.Outbox, 1)
	require.Contains(t, outbox.Outbox[0].Subject, "5d2f1b34")
	require.Contains(t, outbox.Outbox[0].HTML, "45")
}

func TestHandleOrderConfirmationMalformedPayloadSkipsRetry(t *testing.T) {
	w := &Worker{Log: zerolog.Nop()}
	task := asynq.NewTask(TypeOrderConfirmation, []byte("{not json"))

	err := w.HandleOrderConfirmation(context.Background(), task)
	require.Error(t, err)
	require.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestPayloadRoundTrip(t *testing.T) {
	task, err := NewOrderConfirmationTask(OrderConfirmationPayload{OrderID: "o1", ItemCount: 2})
	require.NoError(t, err)

	var p OrderConfirmationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	require.Equal(t, "o1", p.OrderID)
	require.Equal(t, 2, p.ItemCount)
}
