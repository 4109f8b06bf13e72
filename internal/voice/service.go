package voice

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/hushwire/voxd/internal/bus"
	"github.com/hushwire/voxd/internal/protocol"
	"github.com/hushwire/voxd/internal/transcriber"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Service exposes the view model over the bus: commands in, state snapshots
// and final transcripts out.
type Service struct {
	bus    *bus.Client
	vm     *ViewModel
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	subs   []*nats.Subscription
	wg     sync.WaitGroup
	ready  bool

	tracer          trace.Tracer
	sessionsStarted metric.Int64Counter
	transcriptions  metric.Int64Counter
	stopLatency     metric.Float64Histogram
}

func NewService(parent context.Context, busClient *bus.Client, vm *ViewModel, logger *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(parent)
	s := &Service{
		bus:    busClient,
		vm:     vm,
		logger: logger.With(slog.String("component", "voice")),
		ctx:    ctx,
		cancel: cancel,
	}
	s.initMetrics()
	return s
}

func (s *Service) initMetrics() {
	s.tracer = otel.Tracer("voxd/voice")
	meter := otel.Meter("voxd/voice")
	var err error
	if s.sessionsStarted, err = meter.Int64Counter("voice_sessions_started_total",
		metric.WithDescription("Capture sessions successfully started")); err != nil {
		s.logger.Warn("failed to create counter", slog.String("error", err.Error()))
	}
	if s.transcriptions, err = meter.Int64Counter("voice_transcriptions_total",
		metric.WithDescription("Transcription attempts by outcome")); err != nil {
		s.logger.Warn("failed to create counter", slog.String("error", err.Error()))
	}
	if s.stopLatency, err = meter.Float64Histogram("voice_stop_duration_seconds",
		metric.WithDescription("Time from stop command to transcription outcome")); err != nil {
		s.logger.Warn("failed to create histogram", slog.String("error", err.Error()))
	}
}

func (s *Service) Start() error {
	s.vm.Subscribe(s.publishState)

	handlers := map[string]nats.MsgHandler{
		protocol.SubjectCmdStart:      s.handleStart,
		protocol.SubjectCmdStop:       s.handleStop,
		protocol.SubjectCmdClearText:  s.handleClearText,
		protocol.SubjectCmdClearError: s.handleClearError,
	}
	for subject, handler := range handlers {
		sub, err := s.bus.Conn().Subscribe(subject, handler)
		if err != nil {
			s.drainSubs()
			return err
		}
		s.subs = append(s.subs, sub)
	}
	s.ready = true
	return nil
}

func (s *Service) Close() {
	s.cancel()
	s.drainSubs()
	s.wg.Wait()
}

func (s *Service) Healthy() bool {
	return s.ready
}

func (s *Service) drainSubs() {
	for _, sub := range s.subs {
		_ = sub.Drain()
	}
	s.subs = nil
}

func (s *Service) handleStart(msg *nats.Msg) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, span := s.tracer.Start(s.ctx, "voice.start")
		defer span.End()
		if err := s.vm.Start(ctx); err != nil {
			span.SetStatus(codes.Error, err.Error())
			s.logger.Warn("start command failed", slog.String("error", err.Error()))
		} else if s.sessionsStarted != nil {
			s.sessionsStarted.Add(ctx, 1)
		}
		s.respondState(msg)
	}()
}

func (s *Service) handleStop(msg *nats.Msg) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, span := s.tracer.Start(s.ctx, "voice.stop")
		defer span.End()
		began := time.Now()
		result, err := s.vm.Stop(ctx)
		outcome := "ok"
		if err != nil {
			outcome = Classify(err)
			span.SetStatus(codes.Error, err.Error())
			s.logger.Warn("stop command failed", slog.String("error", err.Error()))
		} else {
			s.publishTranscript(result)
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		if s.transcriptions != nil {
			s.transcriptions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
		if s.stopLatency != nil {
			s.stopLatency.Record(ctx, time.Since(began).Seconds())
		}
		s.respondState(msg)
	}()
}

func (s *Service) handleClearText(msg *nats.Msg) {
	s.vm.ClearText()
	s.respondState(msg)
}

func (s *Service) handleClearError(msg *nats.Msg) {
	s.vm.ClearError()
	s.respondState(msg)
}

func (s *Service) respondState(msg *nats.Msg) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(snapshotMessage(s.vm.State()))
	if err != nil {
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("failed to respond with state", slog.String("error", err.Error()))
	}
}

func (s *Service) publishState(state State) {
	data, err := json.Marshal(snapshotMessage(state))
	if err != nil {
		s.logger.Warn("failed to marshal state", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Conn().Publish(protocol.SubjectState, data); err != nil {
		s.logger.Warn("failed to publish state", slog.String("error", err.Error()))
	}
}

func (s *Service) publishTranscript(result transcriber.Result) {
	if result.Text == "" {
		return
	}
	msg := protocol.Transcript{
		SessionID:  s.vm.State().SessionID,
		Text:       result.Text,
		Confidence: result.Confidence,
		Language:   result.Language,
		Timestamp:  time.Now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn("failed to marshal transcript", slog.String("error", err.Error()))
		return
	}
	if err := s.bus.Conn().Publish(protocol.SubjectTranscript, data); err != nil {
		s.logger.Warn("failed to publish transcript", slog.String("error", err.Error()))
	}
}

func snapshotMessage(state State) protocol.StateSnapshot {
	return protocol.StateSnapshot{
		SessionID:     state.SessionID,
		Recording:     state.Recording,
		Processing:    state.Processing,
		Text:          state.Text,
		Error:         state.Err,
		RemoteBackend: state.RemoteBackend,
		Timestamp:     time.Now().UTC(),
	}
}
