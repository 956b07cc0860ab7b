package constants

// StageStatus is the lifecycle state of a single stage orchestrator.
type StageStatus string

// Stable values; Idle is the zero state of a fresh orchestrator.
const (
	StageIdle      StageStatus = "IDLE"      // nothing submitted yet
	StagePending   StageStatus = "PENDING"   // latest request in flight
	StageSucceeded StageStatus = "SUCCEEDED" // latest request returned a result
	StageFailed    StageStatus = "FAILED"    // latest request failed
)
