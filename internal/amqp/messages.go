package amqp

import (
	"encoding/json"
	"time"
)

// PurchaseLoggedMessage announces a newly persisted purchase. It carries
// only the id; consumers fetch the full record from storage so the queue
// never holds stale copies.
type PurchaseLoggedMessage struct {
	ID        string    `json:"id"`
	Manual    bool      `json:"manual"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPurchaseLoggedMessage builds a message for a saved purchase id.
func NewPurchaseLoggedMessage(id string, manual bool) *PurchaseLoggedMessage {
	return &PurchaseLoggedMessage{
		ID:        id,
		Manual:    manual,
		Timestamp: time.Now(),
	}
}

func (m *PurchaseLoggedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PurchaseLoggedMessageFromJSON(data []byte) (*PurchaseLoggedMessage, error) {
	var msg PurchaseLoggedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
