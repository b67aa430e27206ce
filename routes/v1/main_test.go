package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"riddlehunt/logging"
	"riddlehunt/models"
	"riddlehunt/repositories"
	"riddlehunt/services"
	"riddlehunt/testutil"
	"riddlehunt/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-bytes"

type apiFixture struct {
	router *gin.Engine
	tokens *utils.TokenManager
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := repositories.NewGormStore(testutil.NewTestDB(t))
	hasher := utils.NewBcryptHasher(4)
	tokens := utils.NewTokenManager(testSecret, 5*time.Minute, 24*time.Hour)
	logger := logging.Discard()

	riddle, _, err := store.Riddles().FindOrCreate(ctx, "I speak without a mouth. What am I?", "Asha")
	require.NoError(t, err)
	hash, err := hasher.Hash("s3cret-Pass!")
	require.NoError(t, err)
	created, err := store.Teams().Create(ctx, &models.Team{
		Username:     "TEAM-007",
		PasswordHash: hash,
		RiddleID:     riddle.ID,
		FinalAnswer:  "Echo",
	})
	require.NoError(t, err)
	require.True(t, created)

	r := gin.New()
	Register(r, Services{
		Auth:       services.NewAuthService(store.Teams(), hasher, tokens, logger),
		Challenges: services.NewChallengeService(store, nil, logger),
		Logger:     logger,
	})
	return &apiFixture{router: r, tokens: tokens}
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, utils.UnmarshalJSON(w.Body.Bytes(), &decoded))
	}
	return w.Code, decoded
}

func (f *apiFixture) login(t *testing.T) (string, string) {
	t.Helper()
	status, body := f.do(t, http.MethodPost, "/api/v1/login", "", `{"username":"TEAM-007","password":"s3cret-Pass!"}`)
	require.Equal(t, http.StatusOK, status)
	return body["access_token"].(string), body["refresh_token"].(string)
}

func TestLogin(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/v1/login", "", `{"username":"TEAM-007","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, services.ErrInvalidCredentials, body["detail"])

	status, body = f.do(t, http.MethodPost, "/api/v1/login", "", `{"username":"TEAM-404","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, services.ErrInvalidCredentials, body["detail"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/login", "", `{"username":"TEAM-007"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	access, refresh := f.login(t)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
}

func TestRefresh(t *testing.T) {
	f := newAPIFixture(t)
	access, refresh := f.login(t)

	status, body := f.do(t, http.MethodPost, "/api/v1/token/refresh", "", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])

	status, body = f.do(t, http.MethodPost, "/api/v1/token/refresh", "", `{"refresh_token":"`+access+`"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, services.ErrInvalidRefreshToken, body["detail"])
}

func TestRiddleRequiresToken(t *testing.T) {
	f := newAPIFixture(t)
	_, refresh := f.login(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/riddle", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.NotEmpty(t, body["detail"])

	status, _ = f.do(t, http.MethodGet, "/api/v1/riddle", refresh, "")
	assert.Equal(t, http.StatusUnauthorized, status, "refresh tokens are not access tokens")

	status, _ = f.do(t, http.MethodPost, "/api/v1/submit", "", `{"answer":"echo"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRiddleAndSubmitFlow(t *testing.T) {
	f := newAPIFixture(t)
	access, _ := f.login(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/riddle", access, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "I speak without a mouth. What am I?", body["riddle_text"])
	assert.Equal(t, false, body["is_complete"])

	status, body = f.do(t, http.MethodPost, "/api/v1/submit", access, `{"answer":"   "}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.ErrNoAnswer, body["detail"])

	status, body = f.do(t, http.MethodPost, "/api/v1/submit", access, `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.ErrNoAnswer, body["detail"])

	status, body = f.do(t, http.MethodPost, "/api/v1/submit", access, `{"answer":"shadow"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, services.MsgIncorrectGuess, body["detail"])
	assert.Equal(t, false, body["is_complete"])

	status, body = f.do(t, http.MethodPost, "/api/v1/submit", access, `{"answer":"  eChO "}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, services.MsgCorrectAnswer, body["detail"])
	assert.Equal(t, true, body["is_complete"])

	status, body = f.do(t, http.MethodPost, "/api/v1/submit", access, `{"answer":"anything"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, services.MsgAlreadyDone, body["detail"])
	assert.Equal(t, true, body["is_complete"])

	status, body = f.do(t, http.MethodGet, "/api/v1/riddle", access, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, services.MsgAlreadyDone, body["detail"])
	assert.Equal(t, true, body["is_complete"])
	assert.NotContains(t, body, "riddle_text")
}

func TestUnknownTeamHasNoGameData(t *testing.T) {
	f := newAPIFixture(t)
	access, err := f.tokens.GenerateAccessToken("TEAM-999")
	require.NoError(t, err)

	status, body := f.do(t, http.MethodGet, "/api/v1/riddle", access, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, services.ErrNoGameData, body["detail"])

	status, body = f.do(t, http.MethodPost, "/api/v1/submit", access, `{"answer":"echo"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, services.ErrNoGameData, body["detail"])
}

func TestPingAndMetrics(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, http.MethodGet, "/api/v1/ping", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", body["message"])

	f.do(t, http.MethodGet, "/api/v1/ping", "", "")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hunt_http_requests_total")
}
