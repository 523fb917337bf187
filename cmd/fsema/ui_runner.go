package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"fsema/internal/driver"
	"fsema/internal/ui"
)

type checkOutcome struct {
	reports []driver.UnitReport
	err     error
}

func runCheckWithUI(ctx context.Context, title string, paths []string, jobs int, opts driver.Options) ([]driver.UnitReport, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		reports, err := driver.CheckAll(ctx, paths, jobs, ui.ChannelSink(events), opts)
		outcomeCh <- checkOutcome{reports: reports, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the view may quit early; stop the batch and drain what is still in flight
	cancel()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.reports, uiErr
	}
	return outcome.reports, outcome.err
}
