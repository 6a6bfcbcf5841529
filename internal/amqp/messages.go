package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entities a change event can refer to.
const (
	EntityCategory    = "category"
	EntityTransaction = "transaction"
	EntityBudget      = "budget"
)

// Operations a change event can carry.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// LedgerChangedMessage announces that one record changed and that the ledger
// snapshot moved to Version. Consumers reload from the store; the message
// carries no record payload.
type LedgerChangedMessage struct {
	ID        string    `json:"id"`
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	RecordID  int64     `json:"record_id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(entity, op string, recordID, version int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		ID:        uuid.NewString(),
		Entity:    entity,
		Op:        op,
		RecordID:  recordID,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) String() string {
	return fmt.Sprintf("%s %s #%d (v%d)", m.Entity, m.Op, m.RecordID, m.Version)
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message and checks its required fields.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Entity == "" || msg.Op == "" {
		return nil, fmt.Errorf("incomplete ledger change message %q", msg.ID)
	}
	return &msg, nil
}
