package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hushwire/voxd/internal/transcriber"
)

// State is the externally observed snapshot consumed by presentation layers.
// Recording and Processing are derived from the orchestrator's single status
// and are never simultaneously true.
type State struct {
	SessionID     string
	Recording     bool
	Processing    bool
	Text          string
	Err           string
	RemoteBackend bool
}

// ViewModel wraps orchestrator operations as commands and publishes state
// snapshots. It owns the published state exclusively and never reaches into
// the orchestrator's session.
type ViewModel struct {
	orch *Orchestrator
	log  *slog.Logger

	mu        sync.Mutex
	state     State
	observers []func(State)
}

func NewViewModel(orch *Orchestrator, log *slog.Logger) *ViewModel {
	vm := &ViewModel{
		orch:  orch,
		log:   log.With(slog.String("component", "viewmodel")),
		state: State{RemoteBackend: orch.RemoteBackend()},
	}
	orch.SetTransitionHook(vm.onTransition)
	return vm
}

// Subscribe registers an observer invoked with a copy of every published
// snapshot. Not safe to call concurrently with commands.
func (vm *ViewModel) Subscribe(fn func(State)) {
	vm.mu.Lock()
	vm.observers = append(vm.observers, fn)
	vm.mu.Unlock()
}

// State returns the current snapshot.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Start begins a new capture attempt. The error, if any, is also reflected in
// the published snapshot.
func (vm *ViewModel) Start(ctx context.Context) error {
	err := vm.orch.Start(ctx)
	if err != nil {
		vm.setError(err)
	}
	return err
}

// Stop finalizes the capture and adopts the transcription result into the
// snapshot.
func (vm *ViewModel) Stop(ctx context.Context) (transcriber.Result, error) {
	result, err := vm.orch.Stop(ctx)
	if err != nil {
		vm.setError(err)
		return transcriber.Result{}, err
	}

	vm.mu.Lock()
	vm.state.Text = result.Text
	vm.state.Err = ""
	snap := vm.state
	vm.mu.Unlock()
	vm.notify(snap)
	return result, nil
}

// ClearText resets the transcript without touching any other field or the
// orchestrator's session.
func (vm *ViewModel) ClearText() {
	vm.mu.Lock()
	vm.state.Text = ""
	snap := vm.state
	vm.mu.Unlock()
	vm.notify(snap)
}

// ClearError is symmetric to ClearText for the error field.
func (vm *ViewModel) ClearError() {
	vm.mu.Lock()
	vm.state.Err = ""
	snap := vm.state
	vm.mu.Unlock()
	vm.notify(snap)
}

// onTransition is the orchestrator hook; it recomputes the derived booleans
// from the authoritative status in one critical section, so observers never
// see a contradictory combination.
func (vm *ViewModel) onTransition(session Session) {
	vm.mu.Lock()
	vm.state.SessionID = session.ID
	switch session.Status {
	case StatusAwaitingPermission:
		// A new attempt was accepted: prior text and error are stale.
		vm.state.Text = ""
		vm.state.Err = ""
		vm.state.Recording = false
		vm.state.Processing = false
	case StatusRecording:
		vm.state.Recording = true
		vm.state.Processing = false
	case StatusStopped:
		vm.state.Recording = false
		vm.state.Processing = false
	case StatusProcessing:
		vm.state.Recording = false
		vm.state.Processing = true
	case StatusIdle:
		vm.state.Recording = false
		vm.state.Processing = false
	}
	snap := vm.state
	vm.mu.Unlock()
	vm.notify(snap)
}

// setError publishes a failed command. An invalid-state rejection touches
// only the error field; the in-flight session's flags stay as they are.
func (vm *ViewModel) setError(err error) {
	vm.mu.Lock()
	vm.state.Err = err.Error()
	var invalidErr *InvalidStateError
	if !errors.As(err, &invalidErr) {
		vm.state.Recording = false
		vm.state.Processing = false
	}
	snap := vm.state
	vm.mu.Unlock()
	vm.notify(snap)
}

func (vm *ViewModel) notify(snap State) {
	vm.mu.Lock()
	observers := append(([]func(State))(nil), vm.observers...)
	vm.mu.Unlock()
	for _, fn := range observers {
		fn(snap)
	}
}
