package ui

import (
	"github.com/linuxmatters/debleed/internal/engine"
	"github.com/linuxmatters/debleed/internal/processor"
)

// ProgressMsg represents a progress update from a running session
type ProgressMsg struct {
	Progress float64 // 0.0 to 1.0
	Level    float64 // Current output level (linear, 0-1)
	Metrics  engine.Metrics
}

// SessionStartMsg indicates a new microphone file has started processing
type SessionStartMsg struct {
	FileIndex int
	FileName  string
}

// SessionCompleteMsg indicates a microphone file has finished processing
type SessionCompleteMsg struct {
	FileIndex int
	Result    *processor.SessionResult
	Error     error
}

// AllCompleteMsg indicates all microphone files have been processed
type AllCompleteMsg struct{}
