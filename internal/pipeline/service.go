// Package pipeline provides the high-level orchestration for profile
// analysis and optimization, both synchronous and streaming.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/profile-optimizer/internal/invoker"
	"github.com/jonathan/profile-optimizer/internal/llm"
	"github.com/jonathan/profile-optimizer/internal/parsing"
	"github.com/jonathan/profile-optimizer/internal/prompts"
	"github.com/jonathan/profile-optimizer/internal/selection"
	"github.com/jonathan/profile-optimizer/internal/session"
	"github.com/jonathan/profile-optimizer/internal/store"
	"github.com/jonathan/profile-optimizer/internal/types"
)

// step is one entry in the fixed streaming progress schedule. Weights sum
// to 100.
type step struct {
	name   string
	weight int
}

var progressSteps = []step{
	{"Analyzing profile structure", 20},
	{"Evaluating content quality", 25},
	{"Generating recommendations", 30},
	{"Optimizing suggestions", 25},
}

// DefaultStepDelay is the pause between streamed progress steps. The
// intermediate steps are preparation placeholders; the provider call happens
// after the last one.
const DefaultStepDelay = 1 * time.Second

// Service orchestrates model selection, prompt construction, provider
// invocation and response parsing over a session registry.
type Service struct {
	registry  *llm.Registry
	invoker   *invoker.Invoker
	parser    *parsing.Parser
	sessions  *session.Registry
	recorder  store.Recorder
	logger    *zap.Logger
	stepDelay time.Duration
}

// NewService wires the pipeline. A nil recorder disables persistence and a
// nil logger disables logging.
func NewService(registry *llm.Registry, inv *invoker.Invoker, parser *parsing.Parser, sessions *session.Registry, recorder store.Recorder, logger *zap.Logger) *Service {
	if recorder == nil {
		recorder = store.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		invoker:   inv,
		parser:    parser,
		sessions:  sessions,
		recorder:  recorder,
		logger:    logger.Named("pipeline"),
		stepDelay: DefaultStepDelay,
	}
}

// SetStepDelay overrides the pause between streamed progress steps.
func (s *Service) SetStepDelay(d time.Duration) {
	s.stepDelay = d
}

// Analyze runs the synchronous analysis pipeline: select a model, build the
// prompt, invoke the provider, parse the response.
func (s *Service) Analyze(ctx context.Context, req types.OptimizationRequest) (types.AnalysisResult, error) {
	sel, err := selection.Select(req.ModelID, req.Profile, s.registry.Configured())
	if err != nil {
		return types.AnalysisResult{}, err
	}

	prompt := prompts.BuildAnalysisPrompt(req.Profile)
	raw, err := s.invoker.Invoke(ctx, sel, prompt, req.Identity)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	return s.parser.ParseAnalysis(raw, req.Profile), nil
}

// Optimize runs the synchronous optimization pipeline and records the
// outcome.
func (s *Service) Optimize(ctx context.Context, req types.OptimizationRequest) (types.OptimizationResult, error) {
	sel, err := selection.Select(req.ModelID, req.Profile, s.registry.Configured())
	if err != nil {
		return types.OptimizationResult{}, err
	}

	prompt := prompts.BuildOptimizationPrompt(req.Profile, req.Mode, req.Preferences)
	raw, err := s.invoker.Invoke(ctx, sel, prompt, req.Identity)
	if err != nil {
		return types.OptimizationResult{}, err
	}

	result := s.parser.ParseOptimization(raw, req.Profile)
	s.record(ctx, sessionID(req), req, sel.Model, &result, string(session.StatusCompleted))
	return result, nil
}

// StartStreaming registers a session and launches its pipeline in the
// background. Progress events arrive on the returned channel, which closes
// when the session reaches a terminal state or ctx is cancelled. A second
// start against the same session id fails with ErrSessionBusy and leaves
// the in-flight run untouched.
func (s *Service) StartStreaming(ctx context.Context, req types.OptimizationRequest) (<-chan types.ProgressEvent, error) {
	id := sessionID(req)

	sess, err := s.sessions.Create(id, req)
	if err != nil {
		// Only the creator may run a session. Adopting an existing one here
		// would let a racing caller execute the creator's stored request.
		var dup *session.ErrDuplicateSession
		if errors.As(err, &dup) {
			return nil, &session.ErrSessionBusy{ID: id}
		}
		return nil, err
	}

	if err := sess.MarkRunning(); err != nil {
		return nil, err
	}

	events := make(chan types.ProgressEvent, len(progressSteps)+1)
	go s.run(ctx, sess, events)
	return events, nil
}

// PollStatus returns the current state of a session.
func (s *Service) PollStatus(id string) (session.Snapshot, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// ListModels reports the catalog entries whose providers have adapters
// configured.
func (s *Service) ListModels() []selection.ModelInfo {
	return selection.AvailableModels(s.registry)
}

// run executes one streaming session. ctx is the consumer's context: if the
// consumer disconnects before a terminal state, the session transitions to
// cancelled and any late provider response is discarded upstream.
func (s *Service) run(ctx context.Context, sess *session.Session, events chan<- types.ProgressEvent) {
	defer close(events)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pipeline panic",
				zap.String("sessionId", sess.ID),
				zap.Any("panic", r))
			sess.Fail(fmt.Errorf("internal pipeline fault"))
			s.recordTerminal(sess, nil)
		}
	}()

	req := sess.Request
	cumulative := 0
	for _, st := range progressSteps {
		if !s.emit(ctx, sess, events, types.ProgressEvent{
			Progress:    cumulative,
			Status:      st.name,
			CurrentStep: st.name,
		}) {
			s.cancel(sess)
			return
		}
		select {
		case <-time.After(s.stepDelay):
		case <-ctx.Done():
			s.cancel(sess)
			return
		}
		cumulative += st.weight
	}

	sel, err := selection.Select(req.ModelID, req.Profile, s.registry.Configured())
	if err != nil {
		s.fail(sess, err)
		return
	}

	var prompt string
	if req.Kind == types.KindAnalyze {
		prompt = prompts.BuildAnalysisPrompt(req.Profile)
	} else {
		prompt = prompts.BuildOptimizationPrompt(req.Profile, req.Mode, req.Preferences)
	}

	raw, err := s.invoker.Invoke(ctx, sel, prompt, req.Identity)
	if err != nil {
		if ctx.Err() != nil {
			s.cancel(sess)
			return
		}
		s.fail(sess, err)
		return
	}

	// The terminal event goes out before the completion transition: a
	// completed session is terminal and would drop it, leaving the polled
	// step label stuck on the last preparation step.
	s.emit(ctx, sess, events, types.ProgressEvent{
		Progress:    100,
		Status:      "complete",
		CurrentStep: "Finalizing results",
	})

	var result *types.OptimizationResult
	if req.Kind == types.KindAnalyze {
		analysis := s.parser.ParseAnalysis(raw, req.Profile)
		sess.CompleteAnalysis(analysis)
	} else {
		optimization := s.parser.ParseOptimization(raw, req.Profile)
		result = &optimization
		sess.CompleteOptimization(optimization)
	}
	s.record(context.Background(), sess.ID, req, sel.Model, result, string(session.StatusCompleted))
}

// emit delivers one progress event to both the session state and the
// consumer. It reports false when the consumer is gone, which the caller
// treats as cancellation.
func (s *Service) emit(ctx context.Context, sess *session.Session, events chan<- types.ProgressEvent, ev types.ProgressEvent) bool {
	ev.SessionID = sess.ID
	ev.Timestamp = time.Now().UTC()
	// Session state tracks pipeline progress even when the consumer is gone.
	sess.RecordEvent(ev)
	if ctx.Err() != nil {
		return false
	}
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Service) cancel(sess *session.Session) {
	sess.Cancel()
	s.logger.Info("session cancelled by consumer disconnect", zap.String("sessionId", sess.ID))
	s.recordTerminal(sess, nil)
}

func (s *Service) fail(sess *session.Session, err error) {
	sess.Fail(err)
	s.logger.Warn("session failed",
		zap.String("sessionId", sess.ID),
		zap.Error(err))
	s.recordTerminal(sess, nil)
}

// recordTerminal persists a session that ended without an optimization
// result.
func (s *Service) recordTerminal(sess *session.Session, result *types.OptimizationResult) {
	s.record(context.Background(), sess.ID, sess.Request, "", result, string(sess.Status()))
}

// record hands the terminal outcome to the persistence collaborator.
// Persistence failures are logged, never propagated; the pipeline result
// does not depend on the database.
func (s *Service) record(ctx context.Context, id string, req types.OptimizationRequest, model string, result *types.OptimizationResult, status string) {
	record := types.SessionRecord{
		SessionID: id,
		Mode:      string(req.Mode),
		ModelUsed: model,
		Status:    status,
	}
	if result != nil {
		record.ScoreBefore = result.ScoreImprovement.Before
		record.ScoreAfter = result.ScoreImprovement.After
		record.ImprovementCount = len(result.Improvements)
		record.Improvements = result.Improvements
	}
	if err := s.recorder.RecordSession(ctx, record); err != nil {
		s.logger.Warn("failed to record session",
			zap.String("sessionId", id),
			zap.Error(err))
	}
}

func sessionID(req types.OptimizationRequest) string {
	if req.SessionID != "" {
		return req.SessionID
	}
	return uuid.NewString()
}
