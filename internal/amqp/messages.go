package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExportMessage asks the worker to export one user's calendar month to the
// spreadsheet. It carries only identifiers; the worker reads the rows from
// the database so the sheet always reflects the state at processing time.
type ExportMessage struct {
	JobID     string    `json:"jobId"`
	UserID    int64     `json:"userId"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExportMessage creates an export message with a fresh job id.
func NewExportMessage(userID int64, year, month int) *ExportMessage {
	return &ExportMessage{
		JobID:     uuid.NewString(),
		UserID:    userID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportMessageFromJSON creates a message from JSON bytes.
func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
