package duel

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/quizduel/engine/internal/duel/scoring"
	"github.com/quizduel/engine/internal/highscore"
	"github.com/quizduel/engine/internal/notify"
)

// QuestionBank is the engine's contract with the external question bank.
type QuestionBank interface {
	QuestionsByCategory(ctx context.Context, categoryID string) ([]QuestionRef, error)
	IsCorrect(ctx context.Context, questionID, answer string) (bool, error)
}

// HighscoreUpdater folds finished-game contributions into durable statistics.
// Apply must be idempotent per (config, session, player); the service retries
// failures.
type HighscoreUpdater interface {
	Apply(ctx context.Context, req highscore.ApplyRequest) error
}

// Archiver persists the durable record of a finished duel.
type Archiver interface {
	ArchiveFinished(ctx context.Context, session *GameSession, result scoring.Result) error
}

// Service runs the duel lifecycle: allocation-backed game creation, answer
// validation, turn bookkeeping and the finish transition. Many sessions run
// concurrently; within one session all mutations are serialized by the
// store's per-session lock.
type Service struct {
	sessions   SessionStore
	bank       QuestionBank
	configs    ConfigSource
	highscores HighscoreUpdater
	archive    Archiver
	sink       notify.Sink
	rng        Rand
	logger     zerolog.Logger
	metrics    *serviceMetrics

	highscoreRetries uint64
}

// ServiceOptions configures optional collaborators and test seams.
type ServiceOptions struct {
	// Rand overrides the allocator's random source (tests).
	Rand Rand
	// Registry receives the service metrics; defaults to the global one.
	Registry prometheus.Registerer
	// HighscoreRetries bounds retry attempts after a finished game (default 3).
	HighscoreRetries uint64
}

func NewService(
	sessions SessionStore,
	bank QuestionBank,
	configs ConfigSource,
	highscores HighscoreUpdater,
	archive Archiver,
	sink notify.Sink,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	rng := opts.Rand
	if rng == nil {
		rng = &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
	}
	if sink == nil {
		sink = notify.Nop{}
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	retries := opts.HighscoreRetries
	if retries == 0 {
		retries = 3
	}
	return &Service{
		sessions:         sessions,
		bank:             bank,
		configs:          configs,
		highscores:       highscores,
		archive:          archive,
		sink:             sink,
		rng:              rng,
		logger:           logger.With().Str("component", "duel").Logger(),
		metrics:          newServiceMetrics(registry),
		highscoreRetries: retries,
	}
}

// CreateGame allocates a fresh question list for the configuration and opens
// a session for the two players. Allocation failures abort creation entirely;
// a game is never created half-populated.
func (s *Service) CreateGame(ctx context.Context, configID string, playerA, playerB uuid.UUID) (*GameSession, error) {
	if playerA == playerB {
		return nil, ErrSamePlayer
	}

	cfg, err := s.configs.Lookup(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("lookup duel config: %w", err)
	}

	pool := make(map[string][]QuestionRef, len(cfg.Weights))
	for _, w := range cfg.Weights {
		if w.Weight <= 0 {
			continue
		}
		refs, err := s.bank.QuestionsByCategory(ctx, w.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("load question pool for category %s: %w", w.CategoryID, err)
		}
		pool[w.CategoryID] = refs
	}

	questions, err := Allocate(s.rng, cfg.Weights, pool, cfg.QuestionCount, cfg.MaxSampleAttempts)
	if err != nil {
		if cfgErr, ok := err.(*ConfigurationError); ok {
			cfgErr.ConfigID = configID
		}
		return nil, err
	}

	now := time.Now().UTC()
	session := &GameSession{
		ID:        uuid.New(),
		ConfigID:  configID,
		PlayerA:   playerA,
		PlayerB:   playerB,
		Questions: questions,
		AnsweredA: make([]AnswerOutcome, len(questions)),
		AnsweredB: make([]AnswerOutcome, len(questions)),
		Status:    StatusAwaitingBoth,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	s.metrics.gamesCreated.Inc()
	s.logger.Info().
		Str("session_id", session.ID.String()).
		Str("config_id", configID).
		Int("questions", len(questions)).
		Msg("game created")
	return session.Clone(), nil
}

// SubmitAnswer validates and records one player's answer to one question.
// Both players may submit at any time regardless of the nominal turn label.
// The completion check runs under the same per-session lock as the answer
// write, so exactly one of two racing final answers observes the finish
// transition; the other gets ErrGameFinished.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, playerID uuid.UUID, questionIndex int, answer string) (AnswerResult, error) {
	session, unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	defer unlock()

	if !session.IsParticipant(playerID) {
		return AnswerResult{}, ErrNotParticipant
	}
	if questionIndex < 0 || questionIndex >= len(session.Questions) {
		return AnswerResult{}, ErrInvalidIndex
	}
	if session.Status == StatusFinished {
		return AnswerResult{}, ErrGameFinished
	}
	outcomes := session.OutcomesFor(playerID)
	if outcomes[questionIndex] != OutcomeUnanswered {
		return AnswerResult{}, ErrAlreadyAnswered
	}

	question := session.Questions[questionIndex]
	correct, err := s.bank.IsCorrect(ctx, question.QuestionID, answer)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("grade answer: %w", err)
	}

	outcome := OutcomeIncorrect
	if correct {
		outcome = OutcomeCorrect
	}
	outcomes[questionIndex] = outcome
	session.UpdatedAt = time.Now().UTC()
	session.Status = turnLabel(session)
	s.metrics.answers.Inc()

	result := AnswerResult{
		SessionID:     sessionID,
		QuestionIndex: questionIndex,
		Outcome:       outcome,
	}

	if !session.Complete() {
		if err := s.sessions.Update(ctx, session); err != nil {
			return AnswerResult{}, fmt.Errorf("store answer: %w", err)
		}
		s.notifyAsync(opponentOf(session, playerID), notify.Event{
			Type:      notify.EventTurnAdvance,
			SessionID: sessionID,
		})
		return result, nil
	}

	finish, err := s.finalize(ctx, session)
	if err != nil {
		return AnswerResult{}, err
	}
	result.Finished = true
	result.WinnerID = finish.WinnerID
	return result, nil
}

// finalize runs the at-most-once transition into the finished state. Caller
// holds the session lock.
func (s *Service) finalize(ctx context.Context, session *GameSession) (scoring.Result, error) {
	result := scoring.Score(
		session.PlayerA, session.PlayerB,
		CorrectCount(session.AnsweredA), CorrectCount(session.AnsweredB),
		len(session.Questions),
	)
	session.Status = StatusFinished
	session.WinnerID = result.WinnerID
	if err := s.sessions.Update(ctx, session); err != nil {
		return scoring.Result{}, fmt.Errorf("store finished session: %w", err)
	}
	s.metrics.gamesFinished.Inc()

	s.logger.Info().
		Str("session_id", session.ID.String()).
		Int("correct_a", result.CorrectA).
		Int("correct_b", result.CorrectB).
		Float64("victory_coefficient", result.Coefficient).
		Msg("game finished")

	if err := s.applyHighscores(ctx, session, result); err != nil {
		// The transition stands; dropping the contribution silently is not
		// an option, so the error surfaces to the caller after retries.
		return result, err
	}

	if s.archive != nil {
		if err := s.archive.ArchiveFinished(ctx, session, result); err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to archive finished game")
		}
	}

	event := notify.Event{
		Type:      notify.EventGameFinished,
		SessionID: session.ID,
		WinnerID:  result.WinnerID,
	}
	s.notifyAsync(session.PlayerA, event)
	s.notifyAsync(session.PlayerB, event)
	return result, nil
}

func (s *Service) applyHighscores(ctx context.Context, session *GameSession, result scoring.Result) error {
	if s.highscores == nil {
		return nil
	}
	n := len(session.Questions)
	requests := []highscore.ApplyRequest{
		{
			ConfigID:  session.ConfigID,
			SessionID: session.ID,
			PlayerID:  session.PlayerA,
			Won:       result.WinnerID != nil && *result.WinnerID == session.PlayerA,
			Lost:      result.WinnerID != nil && *result.WinnerID == session.PlayerB,
			Correct:   result.CorrectA,
			Played:    n,
		},
		{
			ConfigID:  session.ConfigID,
			SessionID: session.ID,
			PlayerID:  session.PlayerB,
			Won:       result.WinnerID != nil && *result.WinnerID == session.PlayerB,
			Lost:      result.WinnerID != nil && *result.WinnerID == session.PlayerA,
			Correct:   result.CorrectB,
			Played:    n,
		},
	}

	backoff := retry.WithMaxRetries(s.highscoreRetries, retry.NewConstant(200*time.Millisecond))
	for _, req := range requests {
		req := req
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := s.highscores.Apply(ctx, req); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			s.logger.Error().Err(err).
				Str("session_id", session.ID.String()).
				Str("player_id", req.PlayerID.String()).
				Msg("highscore update failed after retries")
			return fmt.Errorf("apply highscores for player %s: %w", req.PlayerID, err)
		}
	}
	return nil
}

// GetSession returns a read-only copy of the session.
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID) (*GameSession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// ListActiveSessions returns the player's unfinished sessions.
func (s *Service) ListActiveSessions(ctx context.Context, playerID uuid.UUID) ([]*GameSession, error) {
	return s.sessions.ListByPlayer(ctx, playerID, false)
}

// ListFinishedSessions returns the player's finished sessions.
func (s *Service) ListFinishedSessions(ctx context.Context, playerID uuid.UUID) ([]*GameSession, error) {
	return s.sessions.ListByPlayer(ctx, playerID, true)
}

// notifyAsync fires the notification without tying it to the request
// context; delivery must never block or fail a state transition.
func (s *Service) notifyAsync(playerID uuid.UUID, event notify.Event) {
	go s.sink.Notify(context.Background(), playerID, event)
}

// turnLabel derives the descriptive status: whose next unanswered question is
// pending. It never gates a submission.
func turnLabel(session *GameSession) string {
	countA := answeredCount(session.AnsweredA)
	countB := answeredCount(session.AnsweredB)
	n := len(session.Questions)
	switch {
	case countA == n && countB == n:
		return StatusFinished
	case countA == n:
		return StatusTurnB
	case countB == n:
		return StatusTurnA
	case countA == 0 && countB == 0:
		return StatusAwaitingBoth
	case countA < countB:
		return StatusTurnA
	case countB < countA:
		return StatusTurnB
	default:
		return StatusAwaitingBoth
	}
}

func opponentOf(session *GameSession, playerID uuid.UUID) uuid.UUID {
	if playerID == session.PlayerA {
		return session.PlayerB
	}
	return session.PlayerA
}

// lockedRand makes a *rand.Rand safe for concurrent allocations.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
