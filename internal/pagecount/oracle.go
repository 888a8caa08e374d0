// Package pagecount cross-checks the number of pages in each scanned file
// against the number expected from its key range, or from the file-name
// register.
package pagecount

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

// ErrNoPageCount is returned when the tool output has no page count.
var ErrNoPageCount = errors.New("no page count in tool output")

// Oracle reports the observed page count of a file. Any error means the
// count is unreadable for that file only.
type Oracle interface {
	PageCount(ctx context.Context, path string) (int, error)
}

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command, folding stderr into the error on failure.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

var pagesLine = regexp.MustCompile(`(?m)^Pages:\s+(\d+)\s*$`)

// PdfInfo counts pages with poppler's pdfinfo (or a compatible tool that
// prints a "Pages: N" line).
type PdfInfo struct {
	Command string
	Args    []string
	Runner  CommandRunner
}

// NewPdfInfo returns an oracle running command with args before the path.
func NewPdfInfo(command string, args []string) *PdfInfo {
	return &PdfInfo{Command: command, Args: args, Runner: ExecRunner{}}
}

// PageCount runs the tool on path and parses its output.
func (p *PdfInfo) PageCount(ctx context.Context, path string) (int, error) {
	args := append(append([]string(nil), p.Args...), path)
	out, err := p.Runner.Run(ctx, p.Command, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to run %s on %s: %w", p.Command, path, err)
	}
	return ParsePages(out)
}

// ParsePages extracts N from a "Pages: N" line.
func ParsePages(out []byte) (int, error) {
	m := pagesLine.FindSubmatch(out)
	if m == nil {
		return 0, ErrNoPageCount
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("invalid page count %q: %w", m[1], err)
	}
	return n, nil
}
