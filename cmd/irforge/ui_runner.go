package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"irforge/internal/buildpipeline"
	"irforge/internal/ui"
)

type buildOutcome struct {
	result buildpipeline.Result
	err    error
}

func runBuildWithUI(ctx context.Context, out io.Writer, title string, req *buildpipeline.Request) (buildpipeline.Result, error) {
	if req == nil || req.Program == nil {
		return buildpipeline.Result{}, fmt.Errorf("missing build request")
	}
	funcs := make([]string, 0, len(req.Program.Functions))
	for _, fn := range req.Program.Functions {
		funcs = append(funcs, fn.Name)
	}

	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Build(ctx, &reqCopy)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, funcs, events)
	program := tea.NewProgram(model, tea.WithOutput(out))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
