package model

import "time"

// Load statuses recorded in the history
const (
	LoadStatusOK     = "ok"
	LoadStatusFailed = "failed"
)

// LoadEvent describes one Loader fetch of a source
type LoadEvent struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Variant   Variant       `json:"variant"`
	Status    string        `json:"status"`
	Rows      int           `json:"rows"`
	Bytes     int           `json:"bytes"`
	FromBlob  bool          `json:"from_blob"` // bytes came from the shared blob cache
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}
