package main

import (
	"io"

	"github.com/fatih/color"

	"github.com/sttts/kmanage/internal/lifecycle"
	"github.com/sttts/kmanage/pkg/workload"
)

var (
	successColor = color.New(color.FgGreen)
	failureColor = color.New(color.FgRed)
)

// printNotifier prints successful outcomes. Failures are returned by the
// command and printed once by main.
type printNotifier struct {
	out io.Writer
}

func (n printNotifier) Notify(o lifecycle.Outcome) {
	if o.Err != nil {
		return
	}
	successColor.Fprint(n.out, "✓ ")
	_, _ = io.WriteString(n.out, o.Message()+"\n")
}

// statusString colours a status for tables.
func statusString(s workload.Status) string {
	switch s {
	case workload.StatusRunning, workload.StatusSucceeded:
		return successColor.Sprint(s)
	case workload.StatusPending:
		return color.YellowString(string(s))
	case workload.StatusFailed:
		return failureColor.Sprint(s)
	}
	return color.WhiteString(string(s))
}
