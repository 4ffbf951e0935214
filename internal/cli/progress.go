package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

type analyzeProgressReporter struct {
	enabled bool
	out     io.Writer
	label   string
	total   int
	start   time.Time
	spinner int
	lastLen int
}

func newAnalyzeProgressReporter(label string, total int, machineOutput bool) *analyzeProgressReporter {
	return &analyzeProgressReporter{
		enabled: stderrIsTerminal() && !machineOutput,
		out:     os.Stderr,
		label:   label,
		total:   total,
		start:   time.Now(),
	}
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (r *analyzeProgressReporter) Update(file string, count int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 88 {
		file = "..." + file[len(file)-85:]
	}

	status := fmt.Sprintf("%s %s %d comparing %s", frame, r.label, count, file)
	if r.total > 0 {
		status = fmt.Sprintf("%s %s %d/%d comparing %s", frame, r.label, count, r.total, file)
	}
	r.printStatus(status)
}

func (r *analyzeProgressReporter) Done(count int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	status := fmt.Sprintf("%s complete (%d files in %s)", r.label, count, elapsed)
	r.printStatus(status)
	fmt.Fprintln(r.out)
}

func (r *analyzeProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}
