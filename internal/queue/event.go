// Package queue carries loan lifecycle events over RabbitMQ: the payload,
// a publisher used by the console and the consumer behind cmd/loan-consumer.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/ludoteca-console/internal/model"
)

// LoanQueueName is the durable queue both sides declare.
const LoanQueueName = "loan.events"

// LoanEvent is published after the backend accepted a loan mutation. It
// carries enough for downstream consumers to log or notify without calling
// the backend.
type LoanEvent struct {
	EventID    string          `json:"event_id"`
	Operation  model.Operation `json:"operation"`
	LoanID     string          `json:"loan_id"`
	GameID     string          `json:"game_id,omitempty"`
	GameTitle  string          `json:"game_title,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	ClientName string          `json:"client_name,omitempty"`
	StartDate  string          `json:"start_date,omitempty"`
	EndDate    string          `json:"end_date,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

// NewLoanEvent stamps a fresh event for l.
func NewLoanEvent(op model.Operation, l model.Loan, now time.Time) LoanEvent {
	return LoanEvent{
		EventID:    uuid.NewString(),
		Operation:  op,
		LoanID:     l.ID,
		GameID:     l.Game.ID,
		GameTitle:  l.Game.Title,
		ClientID:   l.Client.ID,
		ClientName: l.Client.Name,
		StartDate:  l.StartDate,
		EndDate:    l.EndDate,
		OccurredAt: now.UTC().Format(time.RFC3339),
	}
}
