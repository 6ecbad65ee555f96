package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/linuxmatters/debleed/internal/processor"
)

// RecordingTip represents a single piece of actionable advice derived from a
// separation session.
type RecordingTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "mains_hum")
}

// MaxRecordingTips is the maximum number of tips to return.
const MaxRecordingTips = 5

// GenerateRecordingTips analyses the session result and returns prioritised
// suggestions for better separation next time.
func GenerateRecordingTips(result *processor.SessionResult) []RecordingTip {
	if result == nil {
		return nil
	}

	var tips []RecordingTip
	firedRules := make(map[string]bool)

	rules := []func(*processor.SessionResult) *RecordingTip{
		tipDelayAtSearchBound,
		tipLowEchoReduction,
		tipSNRDegraded,
		tipMainsHum,
		tipCPUOverload,
		tipOutputClipping,
		tipNoisyResidual,
	}

	for _, rule := range rules {
		if tip := rule(result); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	tips = applyExclusions(tips, firedRules)

	// Sort by priority (descending)
	sort.Slice(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxRecordingTips {
		tips = tips[:MaxRecordingTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. For example, "low_echo_reduction" is suppressed when
// "delay_at_search_bound" fires because the bounded search explains the poor
// cancellation.
func applyExclusions(tips []RecordingTip, fired map[string]bool) []RecordingTip {
	var result []RecordingTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "low_echo_reduction":
			if fired["delay_at_search_bound"] {
				continue
			}
		case "noisy_residual":
			if fired["low_echo_reduction"] || fired["delay_at_search_bound"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text to maxWidth characters, indenting continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		if i == 0 {
			sb.WriteString(word)
			lineLen = len(word)
			continue
		}
		if lineLen+1+len(word) > maxWidth {
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(word)
			lineLen = len(indent) + len(word)
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(word)
		lineLen += 1 + len(word)
	}
	return sb.String()
}

// tipDelayAtSearchBound fires when the delay estimate pinned to the edge of
// the search range, meaning the true echo path is probably further out.
func tipDelayAtSearchBound(r *processor.SessionResult) *RecordingTip {
	m := r.Metrics
	if m.Delay.Score < 0.2 {
		return nil // no coherent alignment, the bound is not the story
	}
	if abs(m.Delay.Lag) < r.Params.MaxLag {
		return nil
	}
	return &RecordingTip{
		Priority: 8,
		RuleID:   "delay_at_search_bound",
		Message: fmt.Sprintf("The echo path delay sat at the edge of the search range (%d samples). "+
			"Increase the maximum lag so the true delay can be found.", r.Params.MaxLag),
	}
}

// tipLowEchoReduction fires when almost no reference-correlated energy was
// removed, which usually means the reference track does not match what the
// microphone actually heard.
func tipLowEchoReduction(r *processor.SessionResult) *RecordingTip {
	m := r.Metrics
	if m.EchoReductionPercent >= 15 {
		return nil
	}
	return &RecordingTip{
		Priority: 9,
		RuleID:   "low_echo_reduction",
		Message: "Very little bleed was cancelled. Check that the reference track is the same " +
			"audio the microphone picked up, at the same sample rate and without extra processing.",
	}
}

// tipSNRDegraded fires when processing made the voice worse than the input.
func tipSNRDegraded(r *processor.SessionResult) *RecordingTip {
	if r.Metrics.SNRImprovementDb >= -1 {
		return nil
	}
	return &RecordingTip{
		Priority: 7,
		RuleID:   "snr_degraded",
		Message: "The processed voice measured worse than the input. Lower the spectral strength " +
			"or the adaptive gain; aggressive settings eat into the voice itself.",
	}
}

// tipMainsHum fires when the residual spectrum carries audible mains hum.
func tipMainsHum(r *processor.SessionResult) *RecordingTip {
	res := r.Residual
	ratio, family := res.Hum50Ratio, 50
	if res.Hum60Ratio > ratio {
		ratio, family = res.Hum60Ratio, 60
	}
	if ratio < 0.1 {
		return nil
	}
	return &RecordingTip{
		Priority: 6,
		RuleID:   "mains_hum",
		Message: fmt.Sprintf("%d Hz mains hum remains in the separated track. Check cable grounding, "+
			"use balanced connections, and keep audio leads away from power supplies.", family),
	}
}

// tipCPUOverload fires when a meaningful share of frames blew the real-time
// budget.
func tipCPUOverload(r *processor.SessionResult) *RecordingTip {
	m := r.Metrics
	if m.FramesProcessed == 0 || m.OverloadFrames*10 < m.FramesProcessed {
		return nil
	}
	return &RecordingTip{
		Priority: 5,
		RuleID:   "cpu_overload",
		Message: "Processing could not keep up with real time. Reduce the maximum lag or use a " +
			"larger frame size; the delay search cost grows with both.",
	}
}

// tipOutputClipping fires when output samples had to be clamped to full scale.
func tipOutputClipping(r *processor.SessionResult) *RecordingTip {
	if r.ClippedSamples == 0 {
		return nil
	}
	return &RecordingTip{
		Priority: 4,
		RuleID:   "output_clipping",
		Message: fmt.Sprintf("%d output samples exceeded full scale and were clamped. "+
			"Record with more headroom on the microphone channel.", r.ClippedSamples),
	}
}

// tipNoisyResidual fires when the separated track is dominated by broadband
// noise rather than voice.
func tipNoisyResidual(r *processor.SessionResult) *RecordingTip {
	res := r.Residual
	if res.FramesAnalyzed == 0 || res.SpectralFlatness < 0.6 {
		return nil
	}
	return &RecordingTip{
		Priority: 3,
		RuleID:   "noisy_residual",
		Message: "The separated track is noise-dominated. Raise the gate threshold to suppress " +
			"the residue between words, or reduce ambient noise at the recording position.",
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
