package job

import (
	"quill/database"
	"quill/logger"
)

// CheckpointJob periodically folds the SQLite WAL back into the main
// database file so the log does not grow without bound.
type CheckpointJob struct{}

// NewCheckpointJob creates a new checkpoint job instance.
func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	if err := database.Checkpoint(); err != nil {
		logger.Warning("wal checkpoint failed:", err)
	}
}
