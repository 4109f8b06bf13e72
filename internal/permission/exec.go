package permission

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/mattn/go-shellwords"
)

type execGate struct {
	cmd []string

	mu      sync.Mutex
	granted bool
	asked   bool
}

// NewExecGate returns a gate that shells out to a platform helper which
// performs the consent prompt. Exit status zero means granted. The first
// grant is cached for the process lifetime, so repeated Request calls do not
// re-prompt.
func NewExecGate(command string) (Gate, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse permission command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("permission command is empty")
	}
	return &execGate{cmd: args}, nil
}

func (g *execGate) Request(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.asked && g.granted {
		return true
	}

	granted := g.prompt(ctx)
	g.asked = true
	g.granted = granted
	return granted
}

func (g *execGate) Query(_ context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.asked && g.granted
}

func (g *execGate) prompt(ctx context.Context) bool {
	command := exec.CommandContext(ctx, g.cmd[0], g.cmd[1:]...)
	// A helper failure of any kind is a denial, never an error.
	return command.Run() == nil
}
