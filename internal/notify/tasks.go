package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeOrderConfirmation is the asynq task type emitted after checkout.
const TypeOrderConfirmation = "order:confirmation"

// OrderConfirmationPayload carries everything the worker needs to render
// the confirmation without hitting the database again.
type OrderConfirmationPayload struct {
	OrderID    string `json:"orderId"`
	CustomerID string `json:"customerId"`
	Total      string `json:"total"`
	ItemCount  int    `json:"itemCount"`
}

// NewOrderConfirmationTask builds the queue task for a placed order.
func NewOrderConfirmationTask(p OrderConfirmationPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal confirmation payload: %w", err)
	}
	return asynq.NewTask(TypeOrderConfirmation, payload,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}
