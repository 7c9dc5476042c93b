package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
)

// barScale is the bar total; fractions are mapped onto it
const barScale = 1000

const barTemplate pb.ProgressBarTemplate = `{{string . "status"}} {{bar . "[" "=" ">" " " "]"}} {{string . "line"}}`

// terminalView renders presenter events on a terminal: a progress bar while
// bytes arrive and plain lines for log messages
type terminalView struct {
	out     io.Writer
	verbose bool

	mu      sync.Mutex
	bar     *pb.ProgressBar
	outcome chan domain.Event
}

func newTerminalView(out io.Writer, verbose bool) *terminalView {
	return &terminalView{
		out:     out,
		verbose: verbose,
		outcome: make(chan domain.Event, 1),
	}
}

// OnEvent matches app.Listener
func (v *terminalView) OnEvent(ev domain.Event, state app.ViewState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Type {
	case domain.EventLog:
		if v.verbose || v.bar == nil {
			v.printLine(ev.Message)
		}
	case domain.EventProgress:
		v.updateBar(state)
	case domain.EventDone:
		v.finishBar(state)
		if ev.Succeeded() {
			fmt.Fprintln(v.out, state.Status)
		} else {
			fmt.Fprintf(v.out, "%s\n%s\n", state.Status, ev.ErrorText())
		}
		select {
		case v.outcome <- ev:
		default:
		}
	}
}

// Done delivers the terminal event of the attempt
func (v *terminalView) Done() <-chan domain.Event {
	return v.outcome
}

func (v *terminalView) printLine(message string) {
	if v.bar != nil {
		// keep the bar on its own line
		v.finishBar(app.ViewState{})
	}
	fmt.Fprintln(v.out, message)
}

func (v *terminalView) updateBar(state app.ViewState) {
	if v.bar == nil {
		v.bar = pb.New(barScale)
		v.bar.SetWriter(v.out)
		v.bar.SetTemplate(barTemplate)
		v.bar.Start()
	}
	if state.Indeterminate {
		v.bar.Set("status", "...")
	} else {
		v.bar.Set("status", fmt.Sprintf("%5.1f%%", state.Fraction*100))
		v.bar.SetCurrent(int64(state.Fraction * barScale))
	}
	v.bar.Set("line", state.StatusLine)
}

func (v *terminalView) finishBar(state app.ViewState) {
	if v.bar == nil {
		return
	}
	if state.Fraction > 0 {
		v.bar.SetCurrent(int64(state.Fraction * barScale))
	}
	v.bar.Finish()
	v.bar = nil
}
