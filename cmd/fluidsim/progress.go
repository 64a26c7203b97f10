package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// progress prints a frame counter on one line. It stays silent unless the
// writer is a terminal.
type progress struct {
	w     io.Writer
	total int
	tty   bool
}

func newProgress(w io.Writer, total int) *progress {
	p := &progress{w: w, total: total}
	if f, ok := w.(*os.File); ok {
		p.tty = term.IsTerminal(int(f.Fd()))
	}
	return p
}

func (p *progress) update(frame int) {
	if p == nil || !p.tty {
		return
	}
	fmt.Fprintf(p.w, "\rframe %d/%d", frame, p.total)
}

func (p *progress) done() {
	if p == nil || !p.tty {
		return
	}
	fmt.Fprintln(p.w)
}
