// Package ui provides the Bubbletea terminal user interface for debleed
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/debleed/internal/engine"
	"github.com/linuxmatters/debleed/internal/processor"
)

// SessionStatus represents the processing state of a single microphone file
type SessionStatus int

const (
	StatusQueued SessionStatus = iota
	StatusSeparating
	StatusComplete
	StatusError
)

// SessionProgress tracks progress for one microphone file
type SessionProgress struct {
	MicPath string
	Status  SessionStatus

	// Progress tracking (percentage-based)
	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration

	// Live statistics from the engine
	CurrentLevel float64 // Current output level (linear)
	PeakLevel    float64 // Peak level seen so far
	Metrics      engine.Metrics

	// Completion results
	Result *processor.SessionResult

	// Error tracking
	Error error
}

// Model is the Bubbletea model for the separation UI
type Model struct {
	// Session queue, one entry per microphone file
	RefPath           string
	Sessions          []SessionProgress
	CurrentIndex      int
	TotalSessions     int
	CompletedSessions int
	FailedSessions    int

	// Global state
	StartTime time.Time
	Done      bool

	// Spinner state
	spinnerIndex int

	// Channel for receiving progress updates from the processor
	ProgressChan chan tea.Msg

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model for the given microphone files
func NewModel(refPath string, micFiles []string) Model {
	sessions := make([]SessionProgress, len(micFiles))
	for i, path := range micFiles {
		sessions[i] = SessionProgress{
			MicPath: path,
			Status:  StatusQueued,
		}
	}

	return Model{
		RefPath:       refPath,
		Sessions:      sessions,
		CurrentIndex:  -1, // No session running yet
		TotalSessions: len(micFiles),
		StartTime:     time.Now(),
		ProgressChan:  make(chan tea.Msg, 100), // Buffered channel
	}
}

// tickMsg drives the spinner animation
type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForProgress(m.ProgressChan), tickCmd())
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if !m.Done {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		return m, nil

	case ProgressMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Sessions) {
			m.Sessions[m.CurrentIndex] = updateSessionProgress(m.Sessions[m.CurrentIndex], msg)
		}

		// Listen for the next progress message
		return m, waitForProgress(m.ProgressChan)

	case SessionStartMsg:
		m.CurrentIndex = msg.FileIndex
		m.Sessions[m.CurrentIndex].Status = StatusSeparating
		m.Sessions[m.CurrentIndex].StartTime = time.Now()
		return m, waitForProgress(m.ProgressChan)

	case SessionCompleteMsg:
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Sessions) {
			m.Sessions[m.CurrentIndex].Result = msg.Result
			m.Sessions[m.CurrentIndex].Error = msg.Error

			if msg.Error != nil {
				m.Sessions[m.CurrentIndex].Status = StatusError
				m.FailedSessions++
			} else {
				m.Sessions[m.CurrentIndex].Status = StatusComplete
				m.CompletedSessions++
			}
		}
		return m, waitForProgress(m.ProgressChan)

	case AllCompleteMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing..."
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderSeparationView(m)
}

// updateSessionProgress folds a ProgressMsg into a SessionProgress
func updateSessionProgress(sp SessionProgress, msg ProgressMsg) SessionProgress {
	sp.Progress = msg.Progress
	sp.Metrics = msg.Metrics
	sp.ElapsedTime = time.Since(sp.StartTime)

	sp.CurrentLevel = msg.Level
	if msg.Level > sp.PeakLevel {
		sp.PeakLevel = msg.Level
	}

	return sp
}

// waitForProgress creates a command that waits for progress messages
func waitForProgress(progressChan chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-progressChan
	}
}
