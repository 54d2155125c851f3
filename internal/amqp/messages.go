package amqp

import (
	"encoding/json"
	"time"
)

// SummarySyncMessage asks the worker to mirror one stored expense summary.
// It carries only the row id; the worker reads the row itself.
type SummarySyncMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSummarySyncMessage(id int64) *SummarySyncMessage {
	return &SummarySyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *SummarySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SummarySyncMessageFromJSON(data []byte) (*SummarySyncMessage, error) {
	var msg SummarySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
