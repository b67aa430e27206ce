package services

import (
	"context"
	"sync"
	"testing"

	"riddlehunt/logging"
	"riddlehunt/models"
	"riddlehunt/repositories"
	"riddlehunt/testutil"
	"riddlehunt/utils/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRiddleCache struct {
	mock.Mock
}

func (m *mockRiddleCache) Get(ctx context.Context, riddleID uint) (string, bool) {
	args := m.Called(ctx, riddleID)
	return args.String(0), args.Bool(1)
}

func (m *mockRiddleCache) Set(ctx context.Context, riddleID uint, text string) {
	m.Called(ctx, riddleID, text)
}

func seedTeam(t *testing.T, store repositories.Store, username, riddle, answer string) *models.Team {
	t.Helper()
	ctx := context.Background()

	r, _, err := store.Riddles().FindOrCreate(ctx, riddle, "lead")
	require.NoError(t, err)
	team := &models.Team{Username: username, PasswordHash: "x", RiddleID: r.ID, FinalAnswer: answer}
	created, err := store.Teams().Create(ctx, team)
	require.NoError(t, err)
	require.True(t, created)
	return team
}

func newChallengeService(t *testing.T) (*ChallengeService, *repositories.GormStore) {
	store := repositories.NewGormStore(testutil.NewTestDB(t))
	return NewChallengeService(store, nil, logging.Discard()), store
}

func TestGetAssignedRiddleNotFound(t *testing.T) {
	svc, _ := newChallengeService(t)

	_, err := svc.GetAssignedRiddle(context.Background(), "TEAM-404")

	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, ErrNoGameData, apperror.MessageOf(err, ""))
}

func TestGetAssignedRiddlePending(t *testing.T) {
	svc, store := newChallengeService(t)
	seedTeam(t, store, "TEAM-007", "What am I?", "paradox")

	result, err := svc.GetAssignedRiddle(context.Background(), "TEAM-007")

	require.NoError(t, err)
	assert.Equal(t, RiddleResult{RiddleText: "What am I?", IsComplete: false}, result)
}

func TestGetAssignedRiddleUsesCache(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewGormStore(testutil.NewTestDB(t))
	team := seedTeam(t, store, "TEAM-008", "Riddle from the database", "x")

	cache := new(mockRiddleCache)
	cache.On("Get", ctx, team.RiddleID).Return("", false).Once()
	cache.On("Set", ctx, team.RiddleID, "Riddle from the database").Return().Once()
	cache.On("Get", ctx, team.RiddleID).Return("Riddle from the cache", true).Once()
	svc := NewChallengeService(store, cache, logging.Discard())

	first, err := svc.GetAssignedRiddle(ctx, "TEAM-008")
	require.NoError(t, err)
	assert.Equal(t, "Riddle from the database", first.RiddleText)

	second, err := svc.GetAssignedRiddle(ctx, "TEAM-008")
	require.NoError(t, err)
	assert.Equal(t, "Riddle from the cache", second.RiddleText)

	cache.AssertExpectations(t)
}

func TestSubmitAnswerRejectsEmptyAnswer(t *testing.T) {
	ctx := context.Background()
	svc, store := newChallengeService(t)
	seedTeam(t, store, "TEAM-001", "r", "paradox")

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := svc.SubmitAnswer(ctx, "TEAM-001", input)
		require.Error(t, err)
		assert.True(t, apperror.IsValidation(err))
		assert.Equal(t, ErrNoAnswer, apperror.MessageOf(err, ""))
	}

	team, err := store.Teams().FindByUsername(ctx, "TEAM-001")
	require.NoError(t, err)
	assert.False(t, team.IsComplete)
}

func TestSubmitAnswerNotFound(t *testing.T) {
	svc, _ := newChallengeService(t)

	_, err := svc.SubmitAnswer(context.Background(), "TEAM-404", "paradox")

	assert.True(t, apperror.IsNotFound(err))
}

func TestSubmitAnswerIncorrectLeavesTeamPending(t *testing.T) {
	ctx := context.Background()
	svc, store := newChallengeService(t)
	seedTeam(t, store, "TEAM-002", "r", "paradox")

	for i := 0; i < 5; i++ {
		result, err := svc.SubmitAnswer(ctx, "TEAM-002", "paradise")
		require.NoError(t, err)
		assert.Equal(t, SubmitResult{}, result)
		assert.Equal(t, MsgIncorrectGuess, result.Detail())
	}

	team, err := store.Teams().FindByUsername(ctx, "TEAM-002")
	require.NoError(t, err)
	assert.False(t, team.IsComplete)
	assert.Nil(t, team.CompletedAt)
}

func TestSubmitAnswerCorrectNormalizesBothSides(t *testing.T) {
	ctx := context.Background()
	svc, store := newChallengeService(t)
	seedTeam(t, store, "TEAM-003", "r", " Paradox\t")

	result, err := svc.SubmitAnswer(ctx, "TEAM-003", "  pArAdOx ")

	require.NoError(t, err)
	assert.Equal(t, SubmitResult{Correct: true, IsComplete: true}, result)
	assert.Equal(t, MsgCorrectAnswer, result.Detail())

	team, err := store.Teams().FindByUsername(ctx, "TEAM-003")
	require.NoError(t, err)
	assert.True(t, team.IsComplete)
	assert.NotNil(t, team.CompletedAt)
	assert.Equal(t, " Paradox\t", team.FinalAnswer, "stored answer is kept verbatim")
}

func TestSubmitAnswerAfterCompletionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newChallengeService(t)
	seedTeam(t, store, "TEAM-004", "r", "paradox")

	_, err := svc.SubmitAnswer(ctx, "TEAM-004", "paradox")
	require.NoError(t, err)
	before, err := store.Teams().FindByUsername(ctx, "TEAM-004")
	require.NoError(t, err)

	for _, input := range []string{"paradox", "anything", "PARADOX "} {
		result, err := svc.SubmitAnswer(ctx, "TEAM-004", input)
		require.NoError(t, err)
		assert.Equal(t, SubmitResult{IsComplete: true, AlreadyComplete: true}, result)
		assert.Equal(t, MsgAlreadyDone, result.Detail())
	}

	after, err := store.Teams().FindByUsername(ctx, "TEAM-004")
	require.NoError(t, err)
	assert.True(t, after.IsComplete)
	assert.Equal(t, before.FinalAnswer, after.FinalAnswer)
	assert.True(t, before.CompletedAt.Equal(*after.CompletedAt))

	riddle, err := svc.GetAssignedRiddle(ctx, "TEAM-004")
	require.NoError(t, err)
	assert.Equal(t, RiddleResult{IsComplete: true}, riddle)
}

// SQLite has no row locks and the test DB uses a single connection, so this
// exercises the conditional update in MarkComplete rather than FOR UPDATE.
// The postgres lock path is not covered here.
func TestSubmitAnswerConcurrentCorrectSubmissionsCompleteOnce(t *testing.T) {
	ctx := context.Background()
	svc, store := newChallengeService(t)
	seedTeam(t, store, "TEAM-005", "r", "paradox")

	const workers = 8
	results := make([]SubmitResult, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.SubmitAnswer(ctx, "TEAM-005", "paradox")
		}(i)
	}
	wg.Wait()

	correct := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.True(t, results[i].IsComplete)
		if results[i].Correct {
			correct++
		}
	}
	assert.Equal(t, 1, correct)
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "PARADOX", NormalizeAnswer("  ParaDox "))
	assert.Equal(t, "TWO WORDS", NormalizeAnswer("\ttwo words\n"))
	assert.Equal(t, "", NormalizeAnswer("   "))
	assert.Equal(t, "STRASSE", NormalizeAnswer(" straße "))
	assert.Equal(t, NormalizeAnswer("Straße"), NormalizeAnswer("STRASSE"))
	assert.Equal(t, "ÉCHO", NormalizeAnswer("écho"))
}

func TestSubmitAnswerFoldsUnicodeCase(t *testing.T) {
	svc, store := newChallengeService(t)
	seedTeam(t, store, "TEAM-009", "Where does the road lead?", "Straße")

	result, err := svc.SubmitAnswer(context.Background(), "TEAM-009", "strasse")

	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.True(t, result.IsComplete)
}
