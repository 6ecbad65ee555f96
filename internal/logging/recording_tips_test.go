package logging

import (
	"strings"
	"testing"

	"github.com/linuxmatters/debleed/internal/engine"
	"github.com/linuxmatters/debleed/internal/processor"
)

// healthyResult returns a session result that fires no tips.
func healthyResult() *processor.SessionResult {
	return &processor.SessionResult{
		Params: engine.Params{MaxLag: 256},
		Metrics: engine.Metrics{
			EchoReductionPercent: 80,
			SNRImprovementDb:     6,
			Delay:                engine.DelayEstimate{Lag: 40, Score: 0.9},
			FramesProcessed:      1000,
			OverloadFrames:       0,
		},
		Residual: engine.ResidualSpectrum{
			SpectralFlatness: 0.2,
			Hum50Ratio:       0.01,
			Hum60Ratio:       0.01,
			FramesAnalyzed:   1000,
		},
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth int
		indent   string
		want     string
	}{
		{
			name:     "short_text_no_wrap",
			text:     "Hello world",
			maxWidth: 20,
			indent:   "  ",
			want:     "Hello world",
		},
		{
			name:     "long_text_wraps",
			text:     "Increase the maximum lag so the true delay can be found",
			maxWidth: 30,
			indent:   "  ",
			want:     "Increase the maximum lag so\n  the true delay can be found",
		},
		{
			name:     "single_long_word",
			text:     "supercalifragilisticexpialidocious",
			maxWidth: 10,
			indent:   "  ",
			want:     "supercalifragilisticexpialidocious",
		},
		{
			name:     "empty_input",
			text:     "",
			maxWidth: 20,
			indent:   "  ",
			want:     "",
		},
		{
			name:     "multiple_wraps",
			text:     "one two three four five six seven eight nine ten",
			maxWidth: 15,
			indent:   "    ",
			want:     "one two three\n    four five six\n    seven eight\n    nine ten",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.maxWidth, tt.indent)
			if got != tt.want {
				t.Errorf("wrapText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTipDelayAtSearchBound(t *testing.T) {
	tests := []struct {
		name    string
		lag     int
		score   float64
		maxLag  int
		wantTip bool
	}{
		{"pinned at positive bound", 256, 0.8, 256, true},
		{"pinned at negative bound", -256, 0.8, 256, true},
		{"inside search range", 100, 0.8, 256, false},
		{"pinned but incoherent", 256, 0.1, 256, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyResult()
			r.Params.MaxLag = tt.maxLag
			r.Metrics.Delay = engine.DelayEstimate{Lag: tt.lag, Score: tt.score}
			tip := tipDelayAtSearchBound(r)
			if (tip != nil) != tt.wantTip {
				t.Errorf("tipDelayAtSearchBound() returned tip=%v, want tip=%v", tip != nil, tt.wantTip)
			}
			if tip != nil && tip.RuleID != "delay_at_search_bound" {
				t.Errorf("RuleID = %q, want %q", tip.RuleID, "delay_at_search_bound")
			}
		})
	}
}

func TestTipLowEchoReduction(t *testing.T) {
	tests := []struct {
		name      string
		reduction float64
		wantTip   bool
	}{
		{"no cancellation", 2, true},
		{"weak cancellation", 14, true},
		{"boundary 15 percent", 15, false},
		{"good cancellation", 70, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyResult()
			r.Metrics.EchoReductionPercent = tt.reduction
			tip := tipLowEchoReduction(r)
			if (tip != nil) != tt.wantTip {
				t.Errorf("tipLowEchoReduction() returned tip=%v, want tip=%v", tip != nil, tt.wantTip)
			}
		})
	}
}

func TestTipSNRDegraded(t *testing.T) {
	tests := []struct {
		name    string
		snr     float64
		wantTip bool
	}{
		{"clearly worse", -3.0, true},
		{"boundary -1 dB", -1.0, false},
		{"slightly worse within tolerance", -0.5, false},
		{"improved", 4.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyResult()
			r.Metrics.SNRImprovementDb = tt.snr
			tip := tipSNRDegraded(r)
			if (tip != nil) != tt.wantTip {
				t.Errorf("tipSNRDegraded() returned tip=%v, want tip=%v", tip != nil, tt.wantTip)
			}
		})
	}
}

func TestTipMainsHum(t *testing.T) {
	tests := []struct {
		name       string
		hum50      float64
		hum60      float64
		wantTip    bool
		wantFamily string // substring in message, empty to skip
	}{
		{"strong 50Hz hum", 0.4, 0.02, true, "50 Hz"},
		{"strong 60Hz hum", 0.02, 0.4, true, "60 Hz"},
		{"both low", 0.03, 0.05, false, ""},
		{"boundary just under threshold", 0.09, 0.0, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyResult()
			r.Residual.Hum50Ratio = tt.hum50
			r.Residual.Hum60Ratio = tt.hum60
			tip := tipMainsHum(r)
			if (tip != nil) != tt.wantTip {
				t.Errorf("tipMainsHum() returned tip=%v, want tip=%v", tip != nil, tt.wantTip)
			}
			if tip != nil && tt.wantFamily != "" && !strings.Contains(tip.Message, tt.wantFamily) {
				t.Errorf("Message %q should contain %q", tip.Message, tt.wantFamily)
			}
		})
	}
}

func TestTipCPUOverload(t *testing.T) {
	tests := []struct {
		name      string
		frames    uint64
		overloads uint64
		wantTip   bool
	}{
		{"ten percent overloaded", 1000, 100, true},
		{"all frames overloaded", 100, 100, true},
		{"under ten percent", 1000, 99, false},
		{"no frames processed", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyResult()
			r.Metrics.FramesProcessed = tt.frames
			r.Metrics.OverloadFrames = tt.overloads
			tip := tipCPUOverload(r)
			if (tip != nil) != tt.wantTip {
				t.Errorf("tipCPUOverload() returned tip=%v, want tip=%v", tip != nil, tt.wantTip)
			}
		})
	}
}

func TestTipOutputClipping(t *testing.T) {
	r := healthyResult()
	if tip := tipOutputClipping(r); tip != nil {
		t.Errorf("expected no tip for clean output, got %q", tip.RuleID)
	}
	r.ClippedSamples = 37
	tip := tipOutputClipping(r)
	if tip == nil {
		t.Fatal("expected tip for clipped output")
	}
	if !strings.Contains(tip.Message, "37") {
		t.Errorf("Message %q should contain the clipped sample count", tip.Message)
	}
}

func TestTipNoisyResidual(t *testing.T) {
	tests := []struct {
		name     string
		flatness float64
		frames   int
		wantTip  bool
	}{
		{"noise dominated", 0.8, 100, true},
		{"boundary 0.6", 0.6, 100, true},
		{"tonal residual", 0.3, 100, false},
		{"nothing analysed", 0.8, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := healthyResult()
			r.Residual.SpectralFlatness = tt.flatness
			r.Residual.FramesAnalyzed = tt.frames
			tip := tipNoisyResidual(r)
			if (tip != nil) != tt.wantTip {
				t.Errorf("tipNoisyResidual() returned tip=%v, want tip=%v", tip != nil, tt.wantTip)
			}
		})
	}
}

func TestGenerateRecordingTipsHealthySession(t *testing.T) {
	tips := GenerateRecordingTips(healthyResult())
	if len(tips) != 0 {
		ids := make([]string, len(tips))
		for i, tip := range tips {
			ids[i] = tip.RuleID
		}
		t.Errorf("expected no tips for a healthy session, got %v", ids)
	}
}

func TestGenerateRecordingTipsNilResult(t *testing.T) {
	if tips := GenerateRecordingTips(nil); tips != nil {
		t.Errorf("expected nil for nil result, got %v", tips)
	}
}

func TestGenerateRecordingTipsSortedByPriority(t *testing.T) {
	r := healthyResult()
	r.Metrics.SNRImprovementDb = -5
	r.ClippedSamples = 10
	r.Residual.Hum60Ratio = 0.5

	tips := GenerateRecordingTips(r)
	if len(tips) != 3 {
		t.Fatalf("expected 3 tips, got %d", len(tips))
	}
	for i := 1; i < len(tips); i++ {
		if tips[i].Priority > tips[i-1].Priority {
			t.Errorf("tips out of priority order: %q (%d) after %q (%d)",
				tips[i].RuleID, tips[i].Priority, tips[i-1].RuleID, tips[i-1].Priority)
		}
	}
	if tips[0].RuleID != "snr_degraded" {
		t.Errorf("highest priority tip = %q, want %q", tips[0].RuleID, "snr_degraded")
	}
}

func TestGenerateRecordingTipsExclusions(t *testing.T) {
	t.Run("bound explains low reduction", func(t *testing.T) {
		r := healthyResult()
		r.Metrics.EchoReductionPercent = 5
		r.Metrics.Delay = engine.DelayEstimate{Lag: r.Params.MaxLag, Score: 0.7}
		r.Residual.SpectralFlatness = 0.8

		tips := GenerateRecordingTips(r)
		for _, tip := range tips {
			if tip.RuleID == "low_echo_reduction" {
				t.Error("low_echo_reduction should be suppressed when the delay is pinned at the bound")
			}
			if tip.RuleID == "noisy_residual" {
				t.Error("noisy_residual should be suppressed when cancellation failed")
			}
		}
		if len(tips) == 0 || tips[0].RuleID != "delay_at_search_bound" {
			t.Errorf("expected delay_at_search_bound to survive, got %v", tips)
		}
	})

	t.Run("low reduction suppresses noisy residual", func(t *testing.T) {
		r := healthyResult()
		r.Metrics.EchoReductionPercent = 5
		r.Residual.SpectralFlatness = 0.8

		tips := GenerateRecordingTips(r)
		foundLow := false
		for _, tip := range tips {
			if tip.RuleID == "noisy_residual" {
				t.Error("noisy_residual should be suppressed by low_echo_reduction")
			}
			if tip.RuleID == "low_echo_reduction" {
				foundLow = true
			}
		}
		if !foundLow {
			t.Error("expected low_echo_reduction tip")
		}
	})
}

func TestGenerateRecordingTipsCapped(t *testing.T) {
	r := healthyResult()
	r.Metrics.EchoReductionPercent = 5
	r.Metrics.SNRImprovementDb = -5
	r.Metrics.OverloadFrames = r.Metrics.FramesProcessed
	r.ClippedSamples = 100
	r.Residual.Hum50Ratio = 0.5
	r.Residual.SpectralFlatness = 0.9

	tips := GenerateRecordingTips(r)
	if len(tips) > MaxRecordingTips {
		t.Errorf("got %d tips, want at most %d", len(tips), MaxRecordingTips)
	}
}
