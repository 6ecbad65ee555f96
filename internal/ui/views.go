package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Spinner frames for the active session indicator
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// renderSeparationView renders the main processing view
func renderSeparationView(m Model) string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	// Session queue
	b.WriteString(renderSessionQueue(m))
	b.WriteString("\n\n")

	// Overall progress
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#0087AF")).
		Render("Debleed 🎚 - Microphone Bleed Separator")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Reference: %s | %d microphone file(s)",
			filepath.Base(m.RefPath), m.TotalSessions))

	return title + "\n" + subtitle
}

// renderSessionQueue renders the list of microphone files with their status
func renderSessionQueue(m Model) string {
	var b strings.Builder

	for i, session := range m.Sessions {
		b.WriteString(renderSessionEntry(session, m.spinnerIndex, i == m.CurrentIndex))
		b.WriteString("\n")
	}

	return b.String()
}

// renderSessionEntry renders a single microphone file in the queue
func renderSessionEntry(session SessionProgress, spinnerIndex int, active bool) string {
	fileName := filepath.Base(session.MicPath)

	switch session.Status {
	case StatusComplete:
		// ✓ completed session with summary
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		r := session.Result
		summary := fmt.Sprintf("Echo: -%.1f%% | SNR: %+.1f dB | Delay: %d smp",
			r.Metrics.EchoReductionPercent, r.Metrics.SNRImprovementDb, r.Metrics.Delay.Lag)
		return fmt.Sprintf(" %s %s → %s\n   %s",
			icon, fileName, filepath.Base(r.OutputPath), summary)

	case StatusSeparating:
		// active session with live details
		spinner := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0087AF")).
			Render(spinnerFrames[spinnerIndex])
		return fmt.Sprintf(" %s %s → %s\n%s",
			spinner, fileName, generateOutputName(fileName),
			renderSessionDetails(session))

	case StatusError:
		// ✗ failed session
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, session.Error)

	default:
		// ○ queued session
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)
	}
}

// renderSessionDetails renders live progress for the active session
func renderSessionDetails(session SessionProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#0087AF")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	// Progress bar
	content.WriteString(renderProgressBar(session.Progress, 40))
	content.WriteString("\n\n")

	// Time estimates
	elapsed := session.ElapsedTime.Seconds()
	var remaining float64
	if session.Progress > 0 {
		remaining = (elapsed / session.Progress) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs\n", elapsed, remaining))

	// Live engine metrics
	metrics := session.Metrics
	content.WriteString(fmt.Sprintf("🎛  Echo Reduction: %.1f%% | Delay: %d smp\n",
		metrics.EchoReductionPercent, metrics.Delay.Lag))
	content.WriteString(fmt.Sprintf("📊 Level: %s | Peak: %.2f",
		renderLevelMeter(session.CurrentLevel, 20), session.PeakLevel))

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderLevelMeter renders a simple linear level meter for 0-1 amplitude
func renderLevelMeter(level float64, width int) string {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(level * float64(width))
	return strings.Repeat("▮", filled) + strings.Repeat("▯", width-filled)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Sessions) {
		currentFile := m.CurrentIndex + 1 // 1-indexed for display
		content = fmt.Sprintf("Separating file %d of %d (%d complete)",
			currentFile, m.TotalSessions, m.CompletedSessions)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedSessions, m.TotalSessions)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Separation Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	for _, session := range m.Sessions {
		if session.Status == StatusComplete {
			b.WriteString(renderCompletedSession(session))
			b.WriteString("\n")
		}
	}

	if m.FailedSessions > 0 {
		b.WriteString("\n")
		failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000"))
		b.WriteString(failStyle.Render(fmt.Sprintf("%d file(s) failed - see errors above", m.FailedSessions)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString("Separated voice tracks written next to the originals ✓\n")

	return b.String()
}

// renderCompletedSession renders a summary for a completed session
func renderCompletedSession(session SessionProgress) string {
	fileName := filepath.Base(session.MicPath)
	r := session.Result
	outputName := filepath.Base(r.OutputPath)

	icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")

	delayMs := float64(r.Metrics.Delay.Lag) / float64(r.SampleRate) * 1000

	return fmt.Sprintf(" %s %s → %s\n"+
		"   Echo Reduction: %.1f%% | SNR: %+.1f dB\n"+
		"   Echo Path Delay: %d samples (%.1f ms)",
		icon, fileName, outputName,
		r.Metrics.EchoReductionPercent, r.Metrics.SNRImprovementDb,
		r.Metrics.Delay.Lag, delayMs)
}

// generateOutputName generates the output filename from input
func generateOutputName(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "-voice" + ext
}
