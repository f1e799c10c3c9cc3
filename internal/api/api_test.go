package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/scoreboard/internal/api"
	"github.com/mcoot/scoreboard/internal/api/apierr"
	"github.com/mcoot/scoreboard/internal/api/response"
	"github.com/mcoot/scoreboard/internal/factory"
	"github.com/mcoot/scoreboard/internal/model"
	"github.com/mcoot/scoreboard/internal/services/token"
	"github.com/mcoot/scoreboard/internal/testutil"
)

// testServer wraps the router with a test app
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	return &testServer{
		handler: app.Router(),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, username, email string) response.AuthResponse {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) addScore(t *testing.T, token, name string, score any) response.Score {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/scores", map[string]any{"player_name": name, "score": score}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.Score
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) listScores(t *testing.T, token string) []response.Score {
	t.Helper()

	rr := ts.request(http.MethodGet, "/api/scores", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp []response.Score
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Storage)
	assert.Equal(t, "connected", resp.Database)
}

type downStorage struct{}

func (downStorage) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthCheckDegraded(t *testing.T) {
	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		AuthService:   app.AuthService,
		ScoresService: app.ScoresService,
		TokenVerifier: app.Tokens,
		Users:         app.Storage,
		Storage:       downStorage{},
		StorageType:   "redis",
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var resp response.HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "disconnected", resp.Database)
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	// Register
	registered := ts.register(t, "alice", "a@x.com")
	assert.Equal(t, "User created successfully", registered.Message)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, "a@x.com", registered.User.Email)
	assert.NotEmpty(t, registered.User.ID)

	// Login
	rr := ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.NotContains(t, rr.Body.String(), "$2a$")

	var loginResp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &loginResp))
	assert.Equal(t, "Login successful", loginResp.Message)
	assert.Equal(t, registered.User.ID, loginResp.User.ID)

	// The token identifies the user
	rr = ts.request(http.MethodGet, "/api/auth/me", nil, loginResp.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	var me response.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, registered.User, me)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "a@x.com")

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"missing email", map[string]string{"username": "bob", "password": "secret1"}, apierr.CodeInvalidRequest},
		{"short password", map[string]string{"username": "bob", "email": "b@x.com", "password": "12345"}, apierr.CodeInvalidRequest},
		{"short multibyte password", map[string]string{"username": "bob", "email": "b@x.com", "password": "ééé"}, apierr.CodeInvalidRequest},
		{"duplicate username", map[string]string{"username": "alice", "email": "new@x.com", "password": "secret1"}, apierr.CodeDuplicateIdentity},
		{"duplicate email", map[string]string{"username": "bob", "email": "a@x.com", "password": "secret1"}, apierr.CodeDuplicateIdentity},
		{"malformed body", "{not json", apierr.CodeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, rr))
		})
	}
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "a@x.com")

	wrongPassword := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "nope-nope"}, "")
	unknownUser := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "mallory", "password": "secret1"}, "")
	missing := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"username": "alice"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestScoreScenario(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")

	// A numeric string is coerced
	created := ts.addScore(t, alice.Token, "alice", "42")
	assert.Equal(t, int64(42), created.Score)
	assert.Equal(t, "alice", created.PlayerName)
	assert.Equal(t, alice.User.ID, created.UserID)
	assert.Nil(t, created.UpdatedAt)

	scores := ts.listScores(t, alice.Token)
	require.Len(t, scores, 1)
	assert.Equal(t, created.ID, scores[0].ID)
	assert.Equal(t, int64(42), scores[0].Score)
}

func TestScoresAreOrderedByScore(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")

	ts.addScore(t, alice.Token, "a", 30)
	ts.addScore(t, alice.Token, "b", 90)
	ts.addScore(t, alice.Token, "c", 10)

	scores := ts.listScores(t, alice.Token)
	require.Len(t, scores, 3)
	assert.Equal(t, []int64{90, 30, 10}, []int64{scores[0].Score, scores[1].Score, scores[2].Score})
}

func TestEmptyListIsArray(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")

	rr := ts.request(http.MethodGet, "/api/scores", nil, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestCreateScoreValidation(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")

	for _, body := range []any{
		map[string]any{"player_name": "", "score": 5},
		map[string]any{"player_name": "alice"},
		map[string]any{"player_name": "alice", "score": "lots"},
		map[string]any{"player_name": "alice", "score": true},
	} {
		rr := ts.request(http.MethodPost, "/api/scores", body, alice.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code, "%v", body)
		assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
	}

	assert.Empty(t, ts.listScores(t, alice.Token))
}

func TestAuthorizationGate(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")

	// Missing credential
	rr := ts.request(http.MethodGet, "/api/scores", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeMissingCredential, errorCode(t, rr))

	// Garbage credential
	rr = ts.request(http.MethodGet, "/api/scores", nil, "not-a-token")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredential, errorCode(t, rr))

	// Token signed with another secret
	other, err := token.New(token.Config{Secret: "some-other-secret"}, ts.app.MockClock)
	require.NoError(t, err)
	user, err := ts.app.Storage.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	forged, err := other.Issue(user)
	require.NoError(t, err)

	rr = ts.request(http.MethodGet, "/api/scores", nil, forged)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Every protected route uses the same gate
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/scores"},
		{http.MethodPut, "/api/scores/some-id"},
		{http.MethodDelete, "/api/scores/some-id"},
	} {
		rr = ts.request(route.method, route.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", route.method, route.path)
	}

	// The real token still works
	rr = ts.request(http.MethodGet, "/api/scores", nil, alice.Token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestTokenForUnknownUserIsRejected(t *testing.T) {
	ts := newTestServer(t)

	// Correctly signed, but nobody registered this account
	orphan, err := ts.app.Tokens.Issue(&model.User{ID: "ghost", Username: "ghost"})
	require.NoError(t, err)

	for _, route := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/auth/me", nil},
		{http.MethodGet, "/api/scores", nil},
		{http.MethodPost, "/api/scores", map[string]any{"player_name": "ghost", "score": 1}},
		{http.MethodPut, "/api/scores/some-id", map[string]any{"player_name": "ghost", "score": 1}},
		{http.MethodDelete, "/api/scores/some-id", nil},
	} {
		rr := ts.request(route.method, route.path, route.body, orphan)
		assert.Equal(t, http.StatusForbidden, rr.Code, "%s %s", route.method, route.path)
		assert.Equal(t, apierr.CodeInvalidCredential, errorCode(t, rr))
	}

	// Nothing was written for the unknown owner
	scores, err := ts.app.Storage.ListScores(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestLongPasswordRegistersAndLogsIn(t *testing.T) {
	ts := newTestServer(t)
	long := strings.Repeat("p", 80)

	rr := ts.request(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"email":    "a@x.com",
		"password": long,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": long,
	}, "")
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestOwnershipIsolation(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")
	bob := ts.register(t, "bob", "b@x.com")

	aliceScore := ts.addScore(t, alice.Token, "alice", 10)

	// Bob's list does not include Alice's score
	assert.Empty(t, ts.listScores(t, bob.Token))

	// Bob's update and delete look exactly like a missing score
	bobUpdate := ts.request(http.MethodPut, "/api/scores/"+aliceScore.ID, map[string]any{"player_name": "bob", "score": 99}, bob.Token)
	missingUpdate := ts.request(http.MethodPut, "/api/scores/does-not-exist", map[string]any{"player_name": "bob", "score": 99}, bob.Token)
	assert.Equal(t, http.StatusNotFound, bobUpdate.Code)
	assert.Equal(t, missingUpdate.Code, bobUpdate.Code)
	assert.Equal(t, missingUpdate.Body.String(), bobUpdate.Body.String())

	bobDelete := ts.request(http.MethodDelete, "/api/scores/"+aliceScore.ID, nil, bob.Token)
	assert.Equal(t, http.StatusNotFound, bobDelete.Code)
	assert.Equal(t, apierr.CodeNotFound, errorCode(t, bobDelete))

	// Alice's score is untouched
	scores := ts.listScores(t, alice.Token)
	require.Len(t, scores, 1)
	assert.Equal(t, "alice", scores[0].PlayerName)
	assert.Equal(t, int64(10), scores[0].Score)
}

func TestUpdateScore(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")
	created := ts.addScore(t, alice.Token, "alice", 10)

	rr := ts.request(http.MethodPut, "/api/scores/"+created.ID, map[string]any{"player_name": "alice2", "score": "77"}, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated response.Score
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "alice2", updated.PlayerName)
	assert.Equal(t, int64(77), updated.Score)
	assert.NotNil(t, updated.UpdatedAt)

	// Validation runs before the lookup
	rr = ts.request(http.MethodPut, "/api/scores/"+created.ID, map[string]any{"player_name": "alice2"}, alice.Token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteScoreTwice(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "a@x.com")
	created := ts.addScore(t, alice.Token, "alice", 10)

	rr := ts.request(http.MethodDelete, "/api/scores/"+created.ID, nil, alice.Token)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Score deleted successfully", resp.Message)

	rr = ts.request(http.MethodDelete, "/api/scores/"+created.ID, nil, alice.Token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, errorCode(t, rr))
}
