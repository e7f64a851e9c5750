package site

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// PandocEngine renders Markdown by running an external converter process:
//
//	<Command> --from <From> --to <To> <source>
//
// Stdout is the HTML body and stderr the diagnostics.
type PandocEngine struct {
	Command string
	From    string
	To      string
}

// NewPandocEngine returns an engine invoking command, resolved through PATH.
func NewPandocEngine(command, from, to string) *PandocEngine {
	return &PandocEngine{Command: command, From: from, To: to}
}

// Render runs the converter and waits for it to exit.
func (e *PandocEngine) Render(ctx context.Context, sourcePath string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.Command, "--from", e.From, "--to", e.To, sourcePath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("site: run %s: %w", e.Command, err)
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}
