package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerInterval = 100 * time.Millisecond

// Spinner shows an animated message while a step runs. When the output is
// not a terminal it degrades to one line per Start and Stop.
type Spinner struct {
	mu      sync.Mutex
	out     io.Writer
	symbols ProgressSymbols
	animate bool
	s       *spinner.Spinner
	message string
}

// NewSpinner creates a spinner writing to out. animate should be false for
// pipes, CI logs and --plain output.
func NewSpinner(out io.Writer, caps TerminalCapabilities, animate bool) *Spinner {
	sp := &Spinner{
		out:     out,
		symbols: SelectSymbols(caps),
		animate: animate && caps.IsTTY,
	}
	if sp.animate {
		sp.s = spinner.New(spinner.CharSets[sp.symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(out))
	}
	return sp
}

// Start begins a step.
func (sp *Spinner) Start(message string) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	sp.message = message
	if !sp.animate {
		fmt.Fprintf(sp.out, "%s...\n", message)
		return
	}
	sp.s.Suffix = " " + message
	sp.s.Start()
}

// Success ends the step with a checkmark.
func (sp *Spinner) Success(detail string) {
	sp.finish(sp.symbols.Checkmark, detail)
}

// Fail ends the step with a failure marker.
func (sp *Spinner) Fail(detail string) {
	sp.finish(sp.symbols.Failure, detail)
}

func (sp *Spinner) finish(symbol, detail string) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	line := fmt.Sprintf("%s %s", symbol, sp.message)
	if detail != "" {
		line += ": " + detail
	}
	if sp.animate {
		sp.s.FinalMSG = line + "\n"
		sp.s.Stop()
		return
	}
	fmt.Fprintln(sp.out, line)
}
