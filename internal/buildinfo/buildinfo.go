package buildinfo

import "time"

// Set via -ldflags at build time
var (
	BuildTime  string
	CommitTime string
	CommitHash string
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC()

// Info describes the running binary
type Info struct {
	Commit     string `json:"commit"`
	BuildTime  string `json:"build_time,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	StartedAt  string `json:"started_at"`
	Uptime     string `json:"uptime"`
}

// Current returns the build information at now
func Current(now time.Time) Info {
	commit := CommitHash
	if commit == "" {
		commit = "dev"
	}
	return Info{
		Commit:     commit,
		BuildTime:  BuildTime,
		CommitTime: CommitTime,
		StartedAt:  StartTime.Format(time.RFC3339),
		Uptime:     now.Sub(StartTime).Truncate(time.Second).String(),
	}
}
