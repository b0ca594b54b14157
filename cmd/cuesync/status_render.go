package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"cuesync/internal/preflight"
)

type level int

const (
	levelInfo level = iota
	levelOK
	levelWarn
	levelFail
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

const rowLabelWidth = 16

func (l level) tag() string {
	switch l {
	case levelOK:
		return "ok"
	case levelWarn:
		return "warn"
	case levelFail:
		return "fail"
	default:
		return "info"
	}
}

func (l level) color() string {
	switch l {
	case levelOK:
		return ansiGreen
	case levelWarn:
		return ansiYellow
	case levelFail:
		return ansiRed
	default:
		return ansiCyan
	}
}

// statusRow is one line of the status report.
type statusRow struct {
	Label  string
	Level  level
	Detail string
}

func checkRow(result preflight.Result, failLevel level) statusRow {
	lv := failLevel
	if result.Passed {
		lv = levelOK
	}
	return statusRow{Label: result.Name, Level: lv, Detail: result.Detail}
}

// formatRow aligns the label and colours only the level tag.
func formatRow(row statusRow, colorize bool) string {
	tag := fmt.Sprintf("%-4s", row.Level.tag())
	if colorize {
		tag = row.Level.color() + tag + ansiReset
	}
	line := fmt.Sprintf("  %-*s %s", rowLabelWidth, row.Label, tag)
	if row.Detail != "" {
		line += "  " + row.Detail
	}
	return line
}

// statusReport writes rows grouped under titled sections.
type statusReport struct {
	w        io.Writer
	colorize bool
	sections int
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{w: w, colorize: shouldColorize(w)}
}

func (r *statusReport) section(title string, rows []statusRow) {
	if r.sections > 0 {
		fmt.Fprintln(r.w)
	}
	r.sections++
	heading := strings.TrimSpace(title)
	if r.colorize {
		heading = ansiBold + heading + ansiReset
	}
	fmt.Fprintln(r.w, heading)
	for _, row := range rows {
		fmt.Fprintln(r.w, formatRow(row, r.colorize))
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
