package amqp

import (
	"encoding/json"
	"time"
)

// Message kinds carried on the sync queue.
const (
	KindTaskSync   = "task.sync"
	KindTaskDelete = "task.delete"
)

// Envelope wraps a payload with its kind so one queue can carry both
// sync and delete messages.
type Envelope struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// TaskSyncMessage is a lightweight pointer to a task that needs syncing.
// The worker fetches the full task from the database by ID.
type TaskSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskDeleteMessage carries enough task data for the worker to locate and
// remove the exported row after the local record is already gone.
type TaskDeleteMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Minutes   int64     `json:"minutes"`
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTaskSyncMessage(id, version int64) *TaskSyncMessage {
	return &TaskSyncMessage{
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewTaskDeleteMessage(id int64, name string, minutes int64, date string) *TaskDeleteMessage {
	return &TaskDeleteMessage{
		ID:        id,
		Name:      name,
		Minutes:   minutes,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON wraps the sync message in its envelope and marshals it.
func (m *TaskSyncMessage) ToJSON() ([]byte, error) {
	return marshalEnvelope(KindTaskSync, m)
}

// ToJSON wraps the delete message in its envelope and marshals it.
func (m *TaskDeleteMessage) ToJSON() ([]byte, error) {
	return marshalEnvelope(KindTaskDelete, m)
}

func marshalEnvelope(kind string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Kind: kind, Payload: body})
}

// EnvelopeFromJSON decodes a queue message back into its envelope.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// SyncMessage decodes the envelope payload as a TaskSyncMessage.
func (e *Envelope) SyncMessage() (*TaskSyncMessage, error) {
	var msg TaskSyncMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeleteMessage decodes the envelope payload as a TaskDeleteMessage.
func (e *Envelope) DeleteMessage() (*TaskDeleteMessage, error) {
	var msg TaskDeleteMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
