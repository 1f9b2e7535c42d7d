package job

import (
	"quill/util/limiter"
)

// LimiterSweepJob drops expired login-throttle windows from the in-memory
// fallback store. Redis expires its own keys.
type LimiterSweepJob struct{}

// NewLimiterSweepJob creates a new sweep job instance.
func NewLimiterSweepJob() *LimiterSweepJob {
	return new(LimiterSweepJob)
}

func (j *LimiterSweepJob) Run() {
	limiter.Sweep()
}
