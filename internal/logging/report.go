// Package logging handles generation of session reports for separated audio files

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/linuxmatters/debleed/internal/engine"
	"github.com/linuxmatters/debleed/internal/processor"
)

// ============================================================================
// Measurement Interpretation Functions
// ============================================================================
// These functions interpret session measurements and return human-readable
// descriptions of the separation outcome.

// interpretEchoReduction describes how much of the reference bleed was
// removed from the microphone signal.
func interpretEchoReduction(percent float64) string {
	switch {
	case percent < 10:
		return "little bleed removed, check the reference track"
	case percent < 40:
		return "partial cancellation"
	case percent < 70:
		return "good cancellation"
	case percent < 90:
		return "strong cancellation"
	default:
		return "near-complete cancellation"
	}
}

// interpretSNRChange describes the voice-to-noise improvement between input
// and output.
func interpretSNRChange(db float64) string {
	switch {
	case db < -1:
		return "degraded, processing hurt the voice"
	case db < 1:
		return "unchanged"
	case db < 6:
		return "modest improvement"
	case db < 12:
		return "clear improvement"
	default:
		return "dramatic improvement"
	}
}

// interpretDelayScore describes how confidently the delay scan locked onto
// the echo path.
func interpretDelayScore(score float64) string {
	switch {
	case score < 0.2:
		return "weak alignment, little coherent bleed"
	case score < 0.5:
		return "moderate alignment"
	case score < 0.8:
		return "strong alignment"
	default:
		return "locked on"
	}
}

// interpretCentroid describes spectral "brightness" based on centre of gravity.
//
// Centroid is the "centre of gravity" of the spectrum - where spectral energy is concentrated.
//
// Reference values for speech:
// - Male voiced speech: 500-2500 Hz
// - Female voiced speech: 800-3500 Hz
// - Unvoiced consonants: 3000-8000+ Hz
func interpretCentroid(hz float64) string {
	switch {
	case hz < 500:
		return "very dark, bass-heavy"
	case hz < 1500:
		return "warm, full-bodied"
	case hz < 2500:
		return "balanced, natural voice"
	case hz < 4000:
		return "present, forward"
	case hz < 6000:
		return "bright, crisp"
	default:
		return "very bright, potentially harsh"
	}
}

// interpretRolloff describes effective bandwidth via 85% energy threshold.
// Returns Hz below which 85% of spectral energy resides.
func interpretRolloff(hz float64) string {
	switch {
	case hz < 2000:
		return "dark, muffled, heavy filtering"
	case hz < 4000:
		return "warm, controlled high frequencies"
	case hz < 7000:
		return "balanced brightness, natural speech"
	case hz < 11000:
		return "bright, airy, good articulation"
	default:
		return "very bright, significant sibilance"
	}
}

// interpretFlatness describes tonality vs noisiness (Wiener entropy).
// Ratio of geometric mean to arithmetic mean. 0=pure tone, 1=white noise.
//
// Clean voiced speech 0.1-0.3; breathy voice 0.3-0.5; fricatives 0.4-0.7.
func interpretFlatness(flatness float64) string {
	switch {
	case flatness < 0.1:
		return "highly tonal, pure harmonics"
	case flatness < 0.25:
		return "tonal with some noise, clean voiced"
	case flatness < 0.4:
		return "moderate tonality, typical speech"
	case flatness < 0.6:
		return "mixed tonal/noise, breathy content"
	default:
		return "noise-dominant, very breathy"
	}
}

// interpretHum describes mains hum contamination in the residual.
// The ratio is the share of output energy sitting on mains harmonics.
func interpretHum(ratio float64) string {
	switch {
	case ratio < 0.02:
		return "negligible"
	case ratio < 0.1:
		return "faint hum"
	case ratio < 0.3:
		return "audible hum"
	default:
		return "dominant hum, check grounding"
	}
}

// =============================================================================
// Report Section Formatting Helpers
// =============================================================================

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a session report
type ReportData struct {
	MicPath   string
	RefPath   string
	StartTime time.Time
	EndTime   time.Time

	// LocalMainsHz is the expected mains frequency (50 or 60) for the
	// machine's location. Zero skips the hum origin note.
	LocalMainsHz int

	Result *processor.SessionResult
}

// GenerateReport creates a detailed session report and saves it alongside the
// output file. The report filename will be <output>.log
//
// Report structure:
// 1. Header - file info and timestamp
// 2. Processing Summary - timing and real-time factor
// 3. Cancellation Settings - the parameters the session ran with
// 4. Separation Quality - metrics table with interpretations
// 5. Residual Spectrum - what is left in the output
// 6. Recording Tips - actionable advice derived from the session
func GenerateReport(data ReportData) error {
	if data.Result == nil {
		return fmt.Errorf("no session result to report")
	}

	logPath := strings.TrimSuffix(data.Result.OutputPath, filepath.Ext(data.Result.OutputPath)) + ".log"

	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, data)
	writeProcessingSummary(f, data)
	writeCancellationSettings(f, data.Result.Params)
	writeQualityTable(f, data.Result)
	writeResidualTable(f, data.Result.Residual, data.LocalMainsHz)
	writeRecordingTips(f, data.Result)

	return nil
}

// writeReportHeader outputs the report header with file info and timestamp.
func writeReportHeader(f *os.File, data ReportData) {
	fmt.Fprintln(f, "Debleed Separation Report")
	fmt.Fprintln(f, "=========================")
	fmt.Fprintf(f, "Microphone: %s\n", filepath.Base(data.MicPath))
	fmt.Fprintf(f, "Reference:  %s\n", filepath.Base(data.RefPath))
	fmt.Fprintf(f, "Output:     %s\n", filepath.Base(data.Result.OutputPath))
	fmt.Fprintf(f, "Processed:  %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(f, "Duration:   %s\n", formatDuration(time.Duration(data.Result.Duration*float64(time.Second))))
	fmt.Fprintln(f, "")
}

// writeProcessingSummary outputs timing and throughput.
func writeProcessingSummary(f *os.File, data ReportData) {
	writeSection(f, "Processing Summary")

	totalTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(f, "Frames processed: %d\n", data.Result.FramesProcessed)
	fmt.Fprintf(f, "Total time:       %s", formatDuration(totalTime))

	if data.Result.Duration > 0 && totalTime > 0 {
		audioDuration := time.Duration(data.Result.Duration * float64(time.Second))
		rtf := float64(audioDuration) / float64(totalTime)
		fmt.Fprintf(f, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(f, "")
	fmt.Fprintln(f, "")
}

// writeCancellationSettings outputs the engine parameters used.
func writeCancellationSettings(f *os.File, p engine.Params) {
	writeSection(f, "Cancellation Settings")

	fmt.Fprintf(f, "Mode:              %s\n", p.Mode)
	if p.Mode == engine.ModeAdaptive || p.Mode == engine.ModeHybrid {
		fmt.Fprintf(f, "Adaptive gain:     %.2f\n", p.AdaptiveGain)
	}
	if p.Mode == engine.ModeSpectral || p.Mode == engine.ModeHybrid {
		fmt.Fprintf(f, "Spectral strength: %.2f\n", p.SpectralStrength)
	}
	if p.Mode == engine.ModeCrossCorr {
		fmt.Fprintf(f, "Max lag:           %d samples\n", p.MaxLag)
	}
	if p.GateThreshold > 0 {
		fmt.Fprintf(f, "Gate threshold:    %.4f\n", p.GateThreshold)
	} else {
		fmt.Fprintln(f, "Gate threshold:    disabled")
	}
	fmt.Fprintln(f, "")
}

// writeQualityTable outputs the separation quality metrics table.
func writeQualityTable(f *os.File, result *processor.SessionResult) {
	writeSection(f, "Separation Quality")

	m := result.Metrics
	table := NewMetricTable("Measured")

	table.AddMetricRow("Echo Reduction", m.EchoReductionPercent, 1, "%", interpretEchoReduction(m.EchoReductionPercent))
	table.AddRow("SNR Improvement",
		[]string{formatMetricSigned(m.SNRImprovementDb, 1)},
		"dB", interpretSNRChange(m.SNRImprovementDb))

	if m.Delay.Score > 0 {
		delayMs := float64(m.Delay.Lag) / float64(result.SampleRate) * 1000
		table.AddRow("Echo Path Delay",
			[]string{fmt.Sprintf("%d (%.1f ms)", m.Delay.Lag, delayMs)},
			"smp", interpretDelayScore(m.Delay.Score))
	}

	table.AddMetricRow("CPU Load", m.CPULoadPercent, 1, "%", "")
	if m.OverloadFrames > 0 {
		table.AddRow("Overload Frames",
			[]string{fmt.Sprintf("%d", m.OverloadFrames)},
			"", "processing fell behind real time")
	}
	if result.ClippedSamples > 0 {
		table.AddRow("Clipped Samples",
			[]string{fmt.Sprintf("%d", result.ClippedSamples)},
			"", "output exceeded full scale")
	}

	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

// writeResidualTable outputs the residual spectrum analysis table.
func writeResidualTable(f *os.File, r engine.ResidualSpectrum, localMainsHz int) {
	writeSection(f, "Residual Spectrum")

	if r.FramesAnalyzed == 0 {
		fmt.Fprintln(f, "No full frames analysed - session too short")
		fmt.Fprintln(f, "")
		return
	}

	table := NewMetricTable("Measured")
	table.AddMetricRow("Spectral Centroid", r.SpectralCentroid, 0, "Hz", interpretCentroid(r.SpectralCentroid))
	table.AddMetricRow("Spectral Rolloff", r.SpectralRolloff, 0, "Hz", interpretRolloff(r.SpectralRolloff))
	table.AddMetricRow("Spectral Flatness", r.SpectralFlatness, 3, "", interpretFlatness(r.SpectralFlatness))

	// Report the dominant mains family only; the other reflects noise floor.
	humHz, humRatio := 50, r.Hum50Ratio
	if r.Hum60Ratio > r.Hum50Ratio {
		humHz, humRatio = 60, r.Hum60Ratio
	}
	table.AddMetricRow(fmt.Sprintf("%d Hz Hum Share", humHz), humRatio*100, 1, "%", interpretHum(humRatio))

	fmt.Fprint(f, table.String())

	// Audible hum on the wrong mains family did not come from this room.
	if localMainsHz > 0 && humHz != localMainsHz && humRatio >= 0.1 {
		fmt.Fprintf(f, "Note: local mains is %d Hz but the hum sits at %d Hz; it was likely\n"+
			"recorded elsewhere or carried in by the reference track.\n", localMainsHz, humHz)
	}
	fmt.Fprintln(f, "")
}

// writeRecordingTips outputs prioritised advice derived from the session.
func writeRecordingTips(f *os.File, result *processor.SessionResult) {
	tips := GenerateRecordingTips(result)
	if len(tips) == 0 {
		return
	}

	writeSection(f, "Recording Tips")
	for i, tip := range tips {
		fmt.Fprintf(f, "%d. %s\n", i+1, wrapText(tip.Message, 76, "   "))
	}
	fmt.Fprintln(f, "")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
