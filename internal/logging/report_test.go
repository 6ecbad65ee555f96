package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linuxmatters/debleed/internal/engine"
	"github.com/linuxmatters/debleed/internal/processor"
)

func TestGenerateReport(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "mic-voice.wav")

	result := &processor.SessionResult{
		OutputPath:      outputPath,
		Duration:        10.5,
		SampleRate:      48000,
		FramesProcessed: 492,
		Params:          engine.DefaultParams(),
		Metrics: engine.Metrics{
			EchoReductionPercent: 72.3,
			SNRImprovementDb:     4.8,
			Delay:                engine.DelayEstimate{Lag: 40, Score: 0.85},
			FramesProcessed:      492,
		},
		Residual: engine.ResidualSpectrum{
			SpectralCentroid: 1800,
			SpectralRolloff:  5200,
			SpectralFlatness: 0.28,
			Hum50Ratio:       0.01,
			Hum60Ratio:       0.005,
			FramesAnalyzed:   492,
		},
	}

	data := ReportData{
		MicPath:   "/recordings/mic.wav",
		RefPath:   "/recordings/ref.wav",
		StartTime: time.Now().Add(-2 * time.Second),
		EndTime:   time.Now(),
		Result:    result,
	}

	if err := GenerateReport(data); err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}

	logPath := filepath.Join(dir, "mic-voice.log")
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	report := string(content)

	sections := []string{
		"Debleed Separation Report",
		"Processing Summary",
		"Cancellation Settings",
		"Separation Quality",
		"Residual Spectrum",
		"Echo Reduction",
		"SNR Improvement",
		"Echo Path Delay",
		"Spectral Centroid",
	}
	for _, s := range sections {
		if !strings.Contains(report, s) {
			t.Errorf("report missing %q:\n%s", s, report)
		}
	}

	// Healthy session: no tips section.
	if strings.Contains(report, "Recording Tips") {
		t.Errorf("healthy session should not emit recording tips:\n%s", report)
	}
	if !strings.Contains(report, "mic.wav") || !strings.Contains(report, "ref.wav") {
		t.Errorf("report should name input files by base name:\n%s", report)
	}
}

func TestGenerateReportNilResult(t *testing.T) {
	if err := GenerateReport(ReportData{}); err == nil {
		t.Error("expected error for missing session result")
	}
}

func TestGenerateReportForeignHumNote(t *testing.T) {
	dir := t.TempDir()

	result := &processor.SessionResult{
		OutputPath: filepath.Join(dir, "out.wav"),
		Duration:   5,
		SampleRate: 48000,
		Params:     engine.DefaultParams(),
		Metrics: engine.Metrics{
			EchoReductionPercent: 70,
			FramesProcessed:      100,
		},
		Residual: engine.ResidualSpectrum{
			Hum60Ratio:     0.35,
			FramesAnalyzed: 100,
		},
	}

	data := ReportData{
		MicPath:      "mic.wav",
		RefPath:      "ref.wav",
		StartTime:    time.Now(),
		EndTime:      time.Now(),
		LocalMainsHz: 50,
		Result:       result,
	}
	if err := GenerateReport(data); err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "out.log"))
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	report := string(content)
	if !strings.Contains(report, "60 Hz Hum Share") {
		t.Errorf("report should name the dominant hum family:\n%s", report)
	}
	if !strings.Contains(report, "local mains is 50 Hz") {
		t.Errorf("report should flag hum on the wrong mains family:\n%s", report)
	}
}

func TestGenerateReportIncludesTips(t *testing.T) {
	dir := t.TempDir()

	result := &processor.SessionResult{
		OutputPath: filepath.Join(dir, "out.wav"),
		Duration:   5,
		SampleRate: 48000,
		Params:     engine.DefaultParams(),
		Metrics: engine.Metrics{
			EchoReductionPercent: 3,
			FramesProcessed:      100,
		},
		Residual: engine.ResidualSpectrum{FramesAnalyzed: 100},
	}

	data := ReportData{
		MicPath:   "mic.wav",
		RefPath:   "ref.wav",
		StartTime: time.Now(),
		EndTime:   time.Now(),
		Result:    result,
	}
	if err := GenerateReport(data); err != nil {
		t.Fatalf("GenerateReport() error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "out.log"))
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	report := string(content)
	if !strings.Contains(report, "Recording Tips") {
		t.Errorf("poor session should emit recording tips:\n%s", report)
	}
	if !strings.Contains(report, "reference track") {
		t.Errorf("expected a low-reduction tip in the report:\n%s", report)
	}
}
