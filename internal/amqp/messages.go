package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Op is the kind of mutation a TransactionEvent reports.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

func (o Op) Valid() bool {
	return o == OpCreate || o == OpUpdate || o == OpDelete
}

// TransactionEvent announces a committed change to one transaction.
// It carries only the id; consumers read the current row from the store.
type TransactionEvent struct {
	EventID   string    `json:"event_id"`
	Op        Op        `json:"op"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(op Op, id int64) *TransactionEvent {
	return &TransactionEvent{
		EventID:   uuid.NewString(),
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionEventFromJSON decodes and checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Op.Valid() {
		return nil, fmt.Errorf("unknown op %q", msg.Op)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid transaction id %d", msg.ID)
	}
	return &msg, nil
}
