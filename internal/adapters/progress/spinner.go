package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/v3ops/internal/usecase"
)

// SpinnerProgressReporter shows the runner stages on one spinner line
type SpinnerProgressReporter struct {
	spinner      *spinner.Spinner
	out          io.Writer
	stages       []stageInfo
	currentStage usecase.ExecutionStage
}

type stageInfo struct {
	Stage     usecase.ExecutionStage
	StartTime time.Time
	EndTime   time.Time
}

// NewSpinnerProgressReporter creates a spinner that writes to stderr
func NewSpinnerProgressReporter() *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		spinner: s,
		out:     os.Stderr,
	}
}

// OnProgress starts, updates or stops the spinner
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage != "" && event.Stage != r.currentStage {
		r.enterStage(event.Stage)
	}

	if event.Stage == usecase.StageCompleted {
		r.spinner.Stop()
		return
	}

	if event.Spinner {
		r.spinner.Suffix = " " + r.stageLine() + " " + color.New(color.Faint).Sprint(event.Message)
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	} else if r.spinner.Active() {
		r.spinner.Stop()
	}
}

func (r *SpinnerProgressReporter) enterStage(stage usecase.ExecutionStage) {
	now := time.Now()
	if n := len(r.stages); n > 0 && r.stages[n-1].EndTime.IsZero() {
		r.stages[n-1].EndTime = now
	}
	r.currentStage = stage
	if stage != usecase.StageCompleted {
		r.stages = append(r.stages, stageInfo{Stage: stage, StartTime: now})
	}
}

// stageLine renders "✓ Preparing (120ms) → ● Submitting"
func (r *SpinnerProgressReporter) stageLine() string {
	parts := make([]string, 0, len(r.stages))
	for _, stage := range r.stages {
		if stage.EndTime.IsZero() {
			parts = append(parts, fmt.Sprintf("● %s", color.New(color.FgYellow).Sprint(stage.Stage)))
			continue
		}
		parts = append(parts, fmt.Sprintf("✓ %s (%s)",
			color.New(color.FgGreen).Sprint(stage.Stage),
			stage.EndTime.Sub(stage.StartTime).Round(time.Millisecond)))
	}
	return strings.Join(parts, " → ")
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.println(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.println(color.New(color.FgRed), message)
}

func (r *SpinnerProgressReporter) println(c *color.Color, message string) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}
	c.Fprintln(r.out, message)
	if wasActive {
		r.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
