package voice

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hushwire/voxd/internal/capture"
	"github.com/hushwire/voxd/internal/journal"
	"github.com/hushwire/voxd/internal/permission"
	"github.com/hushwire/voxd/internal/transcriber"
)

// Orchestrator drives the capture→transcribe lifecycle. The session status
// field, guarded by the mutex, is the mutual exclusion guard: a command
// issued while an earlier one is still suspended is rejected, never
// interleaved.
type Orchestrator struct {
	gate       permission.Gate
	controller capture.Controller
	backend    transcriber.Backend
	log        *slog.Logger
	journal    *journal.Store

	mu      sync.Mutex
	session Session
	hook    func(Session)
}

func NewOrchestrator(gate permission.Gate, controller capture.Controller, backend transcriber.Backend, log *slog.Logger, store *journal.Store) *Orchestrator {
	return &Orchestrator{
		gate:       gate,
		controller: controller,
		backend:    backend,
		log:        log.With(slog.String("component", "orchestrator")),
		journal:    store,
		session:    Session{Status: StatusIdle},
	}
}

// SetTransitionHook registers a callback invoked after every status change
// with a copy of the session. Must be set before the first command.
func (o *Orchestrator) SetTransitionHook(hook func(Session)) {
	o.mu.Lock()
	o.hook = hook
	o.mu.Unlock()
}

// RemoteBackend reports whether transcription leaves the host machine.
func (o *Orchestrator) RemoteBackend() bool {
	return o.backend.Remote()
}

// Session returns a copy of the current session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// Start requests consent and opens the capture device. Rejected while a
// session is already awaiting permission, recording, or processing.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.session.Status != StatusIdle {
		status := o.session.Status
		o.mu.Unlock()
		return &InvalidStateError{Command: "start", Status: status}
	}
	o.session = Session{ID: uuid.NewString(), Status: StatusAwaitingPermission}
	session := o.session
	o.mu.Unlock()

	o.recordSession(ctx, session.ID)
	o.transitioned(ctx, session)

	if !o.gate.Request(ctx) {
		o.fail(ctx, ErrPermissionDenied)
		return ErrPermissionDenied
	}

	if err := o.controller.Start(ctx); err != nil {
		o.fail(ctx, err)
		return err
	}

	o.mu.Lock()
	o.session.Status = StatusRecording
	o.session.StartedAt = time.Now()
	session = o.session
	o.mu.Unlock()
	o.transitioned(ctx, session)

	o.log.Info("recording started", slog.String("session_id", session.ID))
	return nil
}

// Stop finalizes the capture and dispatches the artifact to the transcription
// backend. Only valid while recording; stopping always proceeds to
// transcription, there is no discard shortcut.
func (o *Orchestrator) Stop(ctx context.Context) (transcriber.Result, error) {
	o.mu.Lock()
	if o.session.Status != StatusRecording {
		status := o.session.Status
		o.mu.Unlock()
		return transcriber.Result{}, &InvalidStateError{Command: "stop", Status: status}
	}
	o.session.Status = StatusStopped
	session := o.session
	o.mu.Unlock()
	o.transitioned(ctx, session)

	audioRef, err := o.controller.Stop(ctx)
	if err != nil {
		o.fail(ctx, err)
		return transcriber.Result{}, err
	}

	o.mu.Lock()
	o.session.AudioRef = audioRef
	o.session.Status = StatusProcessing
	session = o.session
	o.mu.Unlock()
	o.transitioned(ctx, session)

	result, err := o.backend.Transcribe(ctx, audioRef)
	// The artifact is only valid for one transcription attempt.
	if removeErr := os.Remove(audioRef); removeErr != nil {
		o.log.Warn("failed to remove audio artifact",
			slog.String("path", audioRef), slog.String("error", removeErr.Error()))
	}
	if err != nil {
		o.fail(ctx, err)
		return transcriber.Result{}, err
	}

	o.mu.Lock()
	o.session.Status = StatusIdle
	session = o.session
	o.mu.Unlock()
	o.recordTransition(ctx, session.ID, StatusIdle, nil)
	o.transitioned(ctx, session)

	o.log.Info("transcription completed",
		slog.String("session_id", session.ID),
		slog.Int("chars", len(result.Text)))
	return result, nil
}

// fail absorbs any transition failure back into Idle.
func (o *Orchestrator) fail(ctx context.Context, cause error) {
	o.mu.Lock()
	o.session.Status = StatusIdle
	session := o.session
	o.mu.Unlock()

	o.log.Warn("session failed",
		slog.String("session_id", session.ID),
		slog.String("class", Classify(cause)),
		slog.String("error", cause.Error()))
	o.recordTransition(ctx, session.ID, StatusIdle, cause)
	o.transitioned(ctx, session)
}

func (o *Orchestrator) transitioned(ctx context.Context, session Session) {
	o.mu.Lock()
	hook := o.hook
	o.mu.Unlock()
	if hook != nil {
		hook(session)
	}
	if session.Status != StatusIdle {
		o.recordTransition(ctx, session.ID, session.Status, nil)
	}
}

func (o *Orchestrator) recordSession(ctx context.Context, sessionID string) {
	if o.journal == nil {
		return
	}
	backend := "local"
	if o.backend.Remote() {
		backend = "remote"
	}
	if err := o.journal.RecordSession(ctx, sessionID, backend); err != nil {
		o.log.Warn("journal session write failed", slog.String("error", err.Error()))
	}
}

func (o *Orchestrator) recordTransition(ctx context.Context, sessionID string, status Status, cause error) {
	if o.journal == nil {
		return
	}
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	if err := o.journal.RecordTransition(ctx, sessionID, string(status), Classify(cause), detail); err != nil {
		o.log.Warn("journal transition write failed", slog.String("error", err.Error()))
	}
}
