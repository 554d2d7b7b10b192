package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskManifestArchive renders and stores the manifest of one or more days.
	TaskManifestArchive = "manifest:archive"
)

// ManifestArchivePayload lists the days (YYYY-MM-DD) to archive. An empty
// list means today and tomorrow in the configured time zone.
type ManifestArchivePayload struct {
	Days []string `json:"days,omitempty"`
}

// NewManifestArchiveTask constructs an Asynq task.
func NewManifestArchiveTask(payload ManifestArchivePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskManifestArchive, data), nil
}
