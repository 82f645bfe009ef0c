package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"golang.org/x/term"

	"github.com/hamed0406/sitechecker/internal/domain"
)

// ANSI color codes.
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

// Console prints one line per finished check. Lines from concurrent
// workers never interleave.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewConsole colors the status only when w is a terminal.
func NewConsole(w io.Writer, noColor bool) *Console {
	color := false
	if f, ok := w.(*os.File); ok && !noColor {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Console{w: w, color: color}
}

func (c *Console) Print(o domain.CheckOutcome) {
	line := Line(o, c.color)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, line)
}

// Line renders "<url> - Status: <code-or-error>, Response Time: <duration>,
// Timestamp: <timestamp>".
func Line(o domain.CheckOutcome, color bool) string {
	status, paint := o.Error, colorRed
	if o.OK() {
		status, paint = strconv.Itoa(int(o.StatusCode)), colorGreen
	}
	if color {
		status = paint + status + colorReset
	}
	return fmt.Sprintf("%s - Status: %s, Response Time: %s, Timestamp: %s",
		o.URL, status, o.Elapsed, FormatTimestamp(o.ObservedAt))
}
