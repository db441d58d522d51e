package types

import "time"

// State is the build/runtime info block shared by the bus, worker, and
// autopilot state endpoints. The per-service responses embed it alongside
// their own fields.
type State struct {
	StartTime time.Time `json:"startTime"`
	Network   string    `json:"network"`
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	OS        string    `json:"os"`
	BuildTime time.Time `json:"buildTime"`
}
