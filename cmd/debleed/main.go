package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/debleed/internal/cli"
	"github.com/linuxmatters/debleed/internal/engine"
	"github.com/linuxmatters/debleed/internal/logging"
	"github.com/linuxmatters/debleed/internal/mains"
	"github.com/linuxmatters/debleed/internal/processor"
	"github.com/linuxmatters/debleed/internal/ui"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version   bool   `short:"v" help:"Show version information"`
	Reference string `short:"r" type:"existingfile" help:"Reference track that bled into the microphones"`

	Mode             string  `default:"hybrid" enum:"adaptive,spectral,crosscorr,hybrid" help:"Cancellation mode"`
	AdaptiveGain     float64 `default:"0.5" help:"NLMS adaptation step size"`
	SpectralStrength float64 `default:"0.7" help:"Spectral subtraction strength (0-1)"`
	GateThreshold    float64 `default:"0.01" help:"Noise gate cutoff, linear amplitude (0 disables)"`
	MaxLag           int     `default:"256" help:"Delay search bound in samples"`
	FrameSize        int     `default:"1024" help:"Processing frame size in samples"`
	FilterLength     int     `default:"256" help:"Adaptive filter length in taps"`

	Report bool `help:"Save a detailed separation report next to each output"`
	NoUI   bool `name:"no-ui" help:"Plain console output instead of the interactive UI"`

	Files []string `arg:"" name:"mic-files" help:"Microphone tracks to separate" type:"existingfile" optional:""`
}

func (c *CLI) sessionConfig() processor.SessionConfig {
	config := processor.DefaultSessionConfig()
	config.FrameSize = c.FrameSize
	config.FilterLength = c.FilterLength
	config.Params = engine.Params{
		Mode:             engine.Mode(c.Mode),
		AdaptiveGain:     c.AdaptiveGain,
		SpectralStrength: c.SpectralStrength,
		GateThreshold:    c.GateThreshold,
		MaxLag:           c.MaxLag,
	}
	return config
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("debleed"),
		kong.Description("Separate microphone bleed from multi-track recordings"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if cliArgs.Reference == "" {
		cli.PrintError("No reference track specified (use --reference)")
		ctx.PrintUsage(false)
		os.Exit(1)
	}
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No microphone files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	config := cliArgs.sessionConfig()

	if cliArgs.NoUI {
		if err := runHeadless(cliArgs, config); err != nil {
			cli.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	// Create the Bubbletea UI model
	model := ui.NewModel(cliArgs.Reference, cliArgs.Files)

	// Start the TUI
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start processing in background
	go func() {
		for i, micPath := range cliArgs.Files {
			startTime := time.Now()

			p.Send(ui.SessionStartMsg{
				FileIndex: i,
				FileName:  micPath,
			})

			ph := &progressHandler{p: p}

			result, err := processor.ProcessSession(micPath, cliArgs.Reference, config, ph.callback)
			if err != nil {
				p.Send(ui.SessionCompleteMsg{
					FileIndex: i,
					Error:     err,
				})
				continue
			}

			// Generate separation report if --report flag is set
			if cliArgs.Report {
				reportData := logging.ReportData{
					MicPath:      micPath,
					RefPath:      cliArgs.Reference,
					StartTime:    startTime,
					EndTime:      time.Now(),
					LocalMainsHz: mains.Local(),
					Result:       result,
				}
				if err := logging.GenerateReport(reportData); err != nil {
					p.Send(ui.SessionCompleteMsg{FileIndex: i, Error: err})
					continue
				}
			}

			p.Send(ui.SessionCompleteMsg{
				FileIndex: i,
				Result:    result,
			})
		}

		p.Send(ui.AllCompleteMsg{})
	}()

	// Run the program
	if _, err := p.Run(); err != nil {
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
		os.Exit(1)
	}
}

// runHeadless processes all files with plain console output.
func runHeadless(cliArgs *CLI, config processor.SessionConfig) error {
	for _, micPath := range cliArgs.Files {
		fmt.Printf("Separating %s...\n", micPath)
		startTime := time.Now()

		lastPercent := -10
		progress := func(p, level float64, m engine.Metrics) {
			percent := int(p * 100)
			if percent/10 > lastPercent/10 {
				fmt.Printf("  %3d%%  echo -%.1f%%  delay %d smp\n",
					percent, m.EchoReductionPercent, m.Delay.Lag)
			}
			lastPercent = percent
		}

		result, err := processor.ProcessSession(micPath, cliArgs.Reference, config, progress)
		if err != nil {
			return fmt.Errorf("%s: %w", micPath, err)
		}

		fmt.Printf("  wrote %s (echo reduction %.1f%%, SNR %+.1f dB)\n",
			result.OutputPath, result.Metrics.EchoReductionPercent, result.Metrics.SNRImprovementDb)

		if cliArgs.Report {
			reportData := logging.ReportData{
				MicPath:      micPath,
				RefPath:      cliArgs.Reference,
				StartTime:    startTime,
				EndTime:      time.Now(),
				LocalMainsHz: mains.Local(),
				Result:       result,
			}
			if err := logging.GenerateReport(reportData); err != nil {
				return fmt.Errorf("report for %s: %w", micPath, err)
			}
		}
	}
	return nil
}

// progressHandler forwards engine progress into the UI event loop
type progressHandler struct {
	p *tea.Program
}

func (ph *progressHandler) callback(progress float64, level float64, metrics engine.Metrics) {
	ph.p.Send(ui.ProgressMsg{
		Progress: progress,
		Level:    level,
		Metrics:  metrics,
	})
}
