package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"texlint/internal/driver"
	"texlint/internal/ui"
)

type checkOutcome struct {
	results []driver.CheckResult
	err     error
}

// runCheckWithUI runs the check in the background while a Bubble Tea
// program renders progress events from it.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.CheckOptions) ([]driver.CheckResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckPaths(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
