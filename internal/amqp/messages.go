package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ledger/internal/core"
)

// TransactionCreatedMessage announces a transaction appended to the ledger.
// It carries the full record so consumers never need to read the store.
type TransactionCreatedMessage struct {
	MessageID   string           `json:"message_id"`
	Transaction core.Transaction `json:"transaction"`
	Timestamp   time.Time        `json:"timestamp"`
}

func NewTransactionCreatedMessage(tx core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		MessageID:   uuid.NewString(),
		Transaction: tx,
		Timestamp:   time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCreatedMessageFromJSON decodes a message body.
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
