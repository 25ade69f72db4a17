package cli

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// progress wraps briandowns/spinner and only animates on a terminal
type progress struct {
	s *spinner.Spinner
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newProgress(w io.Writer, message string) *progress {
	if !isTerminal(w) {
		return &progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + message
	return &progress{s: s}
}

func (p *progress) Start() {
	if p.s != nil {
		p.s.Start()
	}
}

func (p *progress) Stop() {
	if p.s != nil {
		p.s.Stop()
	}
}
