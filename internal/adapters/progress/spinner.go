package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/gantry-org/gantry-cli/internal/usecase"
)

// Reporter animates run progress on one terminal line: the trail of
// stages passed so far, then the live step of the current stage.
type Reporter struct {
	spin  *spinner.Spinner
	trail []trailEntry
}

type trailEntry struct {
	stage   usecase.ExecutionStage
	started time.Time
	took    time.Duration
	done    bool
}

// trailStages are the stages worth a slot in the trail. The trail order
// follows the events, not this set.
var trailStages = map[usecase.ExecutionStage]bool{
	usecase.StageAligning:   true,
	usecase.StageWarmup:     true,
	usecase.StagePredicting: true,
	usecase.StageCreating:   true,
	usecase.StageWiring:     true,
	usecase.StageAuxiliary:  true,
	usecase.StageHandover:   true,
	usecase.StageCompleted:  true,
}

// NewReporter creates the spinner-backed progress sink.
func NewReporter() *Reporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.HideCursor = false
	return &Reporter{spin: s}
}

// OnProgress folds the event into the trail and repaints the line.
func (r *Reporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	stage := usecase.ExecutionStage(event.Stage)
	if trailStages[stage] && (len(r.trail) == 0 || r.trail[len(r.trail)-1].stage != stage) {
		r.finishStage()
		r.trail = append(r.trail, trailEntry{stage: stage, started: time.Now()})
	}

	if stage == usecase.StageCompleted {
		r.finishStage()
		r.spin.Stop()
		return
	}

	if !event.Spinner {
		if r.spin.Active() {
			r.spin.Stop()
		}
		return
	}
	if !r.spin.Active() {
		r.spin.Start()
	}
	r.spin.Suffix = " " + r.line(event)
}

func (r *Reporter) Info(message string) {
	r.println(color.New(color.FgCyan), message)
}

func (r *Reporter) Error(message string) {
	r.println(color.New(color.FgRed), message)
}

// println writes a full line without tearing the spinner animation.
func (r *Reporter) println(c *color.Color, message string) {
	active := r.spin.Active()
	if active {
		r.spin.Stop()
	}
	c.Println(message)
	if active {
		r.spin.Start()
	}
}

func (r *Reporter) finishStage() {
	if n := len(r.trail); n > 0 && !r.trail[n-1].done {
		r.trail[n-1].done = true
		r.trail[n-1].took = time.Since(r.trail[n-1].started)
	}
}

// line assembles the spinner suffix: completed and running stages, then
// the event's own message with its step counter.
func (r *Reporter) line(event usecase.ProgressEvent) string {
	parts := make([]string, 0, len(r.trail))
	for _, entry := range r.trail {
		parts = append(parts, entry.render())
	}
	trail := strings.Join(parts, " → ")

	detail := event.Message
	if event.Total > 0 {
		detail = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, event.Message)
	}
	switch {
	case detail == "":
		return trail
	case trail == "":
		return detail
	default:
		return trail + " | " + detail
	}
}

func (e trailEntry) render() string {
	if e.done {
		return fmt.Sprintf("%s %s (%s)",
			color.GreenString("✓"),
			color.New(color.FgGreen).Sprint(string(e.stage)),
			e.took.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s %s",
		color.YellowString("●"),
		color.New(color.FgYellow).Sprint(string(e.stage)))
}

var _ usecase.ProgressSink = (*Reporter)(nil)
