package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ExtractionMessage asks a worker to extract transactions from statement text.
// The text travels inside the message since it is never persisted.
type ExtractionMessage struct {
	JobID     string    `json:"job_id"`
	Source    string    `json:"source,omitempty"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

var ErrEmptyStatement = errors.New("statement text is empty")

// NewExtractionMessage creates a message with a fresh job id
func NewExtractionMessage(source, text string) *ExtractionMessage {
	return &ExtractionMessage{
		JobID:     uuid.NewString(),
		Source:    source,
		Text:      text,
		Timestamp: time.Now(),
	}
}

func (m *ExtractionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExtractionMessageFromJSON decodes a message and checks it carries a job
// id and some text.
func ExtractionMessageFromJSON(data []byte) (*ExtractionMessage, error) {
	var msg ExtractionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.JobID == "" {
		return nil, errors.New("message has no job_id")
	}
	if msg.Text == "" {
		return nil, ErrEmptyStatement
	}
	return &msg, nil
}
