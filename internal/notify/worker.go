package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/embervale/backend-vapor/internal/common"
	"github.com/embervale/backend-vapor/internal/obs"
)

// Worker consumes confirmation tasks and delivers them over email.
type Worker struct {
	Email common.EmailSender
	Log   zerolog.Logger
}

// HandleOrderConfirmation processes a single order confirmation task.
func (w *Worker) HandleOrderConfirmation(ctx context.Context, t *asynq.Task) error {
	var p OrderConfirmationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		countConfirmation("malformed")
		// A payload that cannot decode will never decode. Do not retry.
		return fmt.Errorf("decode confirmation payload: %v: %w", err, asynq.SkipRetry)
	}

	subject := fmt.Sprintf("Order %s confirmed", p.OrderID)
	body := fmt.Sprintf("<p>Thanks for your order.</p><p>Order <b>%s</b> (%d items) totals %s.</p>",
		p.OrderID, p.ItemCount, p.Total)

	sender := w.Email
	if sender == nil {
		sender = common.NopEmailSender{}
	}
	if err := sender.Send(p.CustomerID, subject, body); err != nil {
		countConfirmation("failed")
		return fmt.Errorf("send confirmation email: %w", err)
	}

	w.Log.Info().
		Str("order_id", p.OrderID).
		Str("customer_id", p.CustomerID).
		Msg("order confirmation sent")
	countConfirmation("sent")
	return nil
}

// Register attaches the worker handlers to the asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderConfirmation, w.HandleOrderConfirmation)
}

func countConfirmation(result string) {
	if obs.OrderConfirmationTotal != nil {
		obs.OrderConfirmationTotal.WithLabelValues(result).Inc()
	}
}
