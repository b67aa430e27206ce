package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"riddlehunt/metrics"
	"riddlehunt/repositories"
	"riddlehunt/utils/apperror"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Error messages returned to teams
const (
	ErrNoGameData     = "No game data found for this team. Contact an admin."
	ErrNoAnswer       = "No answer provided."
	MsgAlreadyDone    = "Mission already complete!"
	MsgCorrectAnswer  = "Correct! Mission Complete!"
	MsgIncorrectGuess = "Incorrect answer. Try again."
)

// RiddleResult is what a team sees when it asks for its riddle.
// RiddleText is empty once the team is complete.
type RiddleResult struct {
	RiddleText string
	IsComplete bool
}

// SubmitResult is the outcome of one answer submission. An incorrect
// answer is a normal result, not an error.
type SubmitResult struct {
	Correct         bool
	IsComplete      bool
	AlreadyComplete bool
}

// Detail returns the human readable message for the result
func (r SubmitResult) Detail() string {
	switch {
	case r.AlreadyComplete:
		return MsgAlreadyDone
	case r.Correct:
		return MsgCorrectAnswer
	default:
		return MsgIncorrectGuess
	}
}

// ChallengeService serves the riddle and validates answers for authenticated teams
type ChallengeService struct {
	store  repositories.Store
	cache  RiddleCache
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewChallengeService(store repositories.Store, cache RiddleCache, logger logrus.FieldLogger) *ChallengeService {
	if cache == nil {
		cache = NoopRiddleCache{}
	}
	return &ChallengeService{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeAnswer trims surrounding whitespace and applies full Unicode
// uppercasing, so "straße" and "STRASSE" compare equal.
func NormalizeAnswer(s string) string {
	// A Caser keeps state, build one per call
	return cases.Upper(language.Und).String(strings.TrimSpace(s))
}

// GetAssignedRiddle returns the riddle assigned to team, or only the
// completion flag once the team has solved it
func (s *ChallengeService) GetAssignedRiddle(ctx context.Context, team string) (RiddleResult, error) {
	t, err := s.store.Teams().FindByUsername(ctx, team)
	if err != nil {
		if apperror.IsNotFound(err) {
			return RiddleResult{}, apperror.NotFound(ErrNoGameData)
		}
		return RiddleResult{}, err
	}

	if t.IsComplete {
		return RiddleResult{IsComplete: true}, nil
	}

	text, ok := s.cache.Get(ctx, t.RiddleID)
	if !ok {
		riddle, err := s.store.Riddles().FindByID(ctx, t.RiddleID)
		if err != nil {
			return RiddleResult{}, fmt.Errorf("failed to load riddle for team %s: %w", team, err)
		}
		text = riddle.Text
		s.cache.Set(ctx, riddle.ID, text)
	}

	return RiddleResult{RiddleText: text}, nil
}

// SubmitAnswer checks submitted against the team's stored answer. The team
// row is locked for the whole check so two concurrent correct submissions
// produce exactly one completion.
func (s *ChallengeService) SubmitAnswer(ctx context.Context, team, submitted string) (SubmitResult, error) {
	answer := NormalizeAnswer(submitted)
	if answer == "" {
		metrics.AnswerSubmissions.WithLabelValues("invalid").Inc()
		return SubmitResult{}, apperror.Validation(ErrNoAnswer)
	}

	var result SubmitResult
	var completedNow bool
	err := s.store.Transaction(ctx, func(tx repositories.Store) error {
		t, err := tx.Teams().FindByUsernameForUpdate(ctx, team)
		if err != nil {
			return err
		}

		if t.IsComplete {
			result = SubmitResult{IsComplete: true, AlreadyComplete: true}
			return nil
		}

		if answer != NormalizeAnswer(t.FinalAnswer) {
			result = SubmitResult{}
			return nil
		}

		changed, err := tx.Teams().MarkComplete(ctx, t.ID, s.now().UTC())
		if err != nil {
			return err
		}
		completedNow = changed
		// changed is false only if another writer won the compare-and-set
		result = SubmitResult{Correct: changed, IsComplete: true, AlreadyComplete: !changed}
		return nil
	})
	if err != nil {
		if apperror.IsNotFound(err) {
			metrics.AnswerSubmissions.WithLabelValues("not_found").Inc()
			return SubmitResult{}, apperror.NotFound(ErrNoGameData)
		}
		return SubmitResult{}, fmt.Errorf("failed to submit answer for team %s: %w", team, err)
	}

	switch {
	case result.AlreadyComplete:
		metrics.AnswerSubmissions.WithLabelValues("already_complete").Inc()
	case result.Correct:
		metrics.AnswerSubmissions.WithLabelValues("correct").Inc()
	default:
		metrics.AnswerSubmissions.WithLabelValues("incorrect").Inc()
	}
	if completedNow {
		metrics.TeamsCompleted.Inc()
		s.logger.WithField("team", team).Info("team completed its riddle")
	}

	return result, nil
}
