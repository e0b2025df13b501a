package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamesessions/internal/api"
	"github.com/mcoot/gamesessions/internal/authz"
	"github.com/mcoot/gamesessions/internal/factory"
	"github.com/mcoot/gamesessions/internal/model"
	"github.com/mcoot/gamesessions/internal/testutil"
)

// testServer wires the router to a test app with mocked clock and random
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T, policy authz.Policy) *testServer {
	t.Helper()

	app := factory.NewTestApp(policy)
	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		SessionManager: app.SessionManager,
		Directory:      app.Directory,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, actor string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set("X-User-ID", actor)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

// createGame creates a session with the given join code and returns its id
func (ts *testServer) createGame(t *testing.T, host, code, password string) string {
	t.Helper()
	ts.app.MockRandom.QueueString(code)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{
		"userId":       host,
		"gamePassword": password,
		"location":     "Berlin",
		"isPublic":     true,
		"gameName":     "Friday match",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeBody(t, rr)
	require.Equal(t, "GS0", body["statusCode"])
	return body["gameId"].(string)
}

func assertFailure(t *testing.T, rr *httptest.ResponseRecorder, code string) map[string]any {
	t.Helper()
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, code, body["statusCode"])
	return body
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.app.MockRandom.QueueID("game-1")
	ts.app.MockRandom.QueueString("ABC123")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{
		"userId":   "host",
		"gameName": "Friday match",
	}, "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "GS0", body["statusCode"])
	assert.Equal(t, "game-1", body["gameId"])
	assert.Equal(t, "ABC123", body["gameCode"])
}

func TestCreateGameRequiresUser(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]any{"gameName": "x"}, "")
	assertFailure(t, rr, "GF9")
}

func TestCreateGameMalformedBody(t *testing.T) {
	ts := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assertFailure(t, rr, "GF9")
}

func TestGetGameHidesPassword(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "secret")

	rr := ts.request(http.MethodGet, "/api/v1/games/"+id, nil, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret")
	assert.NotContains(t, rr.Body.String(), "password_hash")

	body := decodeBody(t, rr)
	assert.Equal(t, "GS10", body["statusCode"])
	game := body["game"].(map[string]any)
	assert.Equal(t, "ABC123", game["gameCode"])
	assert.Equal(t, true, game["hasPassword"])
	assert.Equal(t, float64(1), game["numberOfPlayers"])
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodGet, "/api/v1/games/missing", nil, "")
	assertFailure(t, rr, "GF8")
}

func TestJoinGame(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")

	rr := ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{
		"userId":   "guest",
		"gameCode": "ABC123",
	}, "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "GS1", body["statusCode"])
	assert.Equal(t, id, body["gameId"])

	s, err := ts.app.SessionManager.Get(t.Context(), model.SessionID(id))
	require.NoError(t, err)
	assert.Equal(t, 2, s.PlayerCount)
}

func TestJoinGameWithPassword(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.createGame(t, "host", "ABC123", "secret")

	rr := ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{
		"userId":       "guest",
		"gameCode":     "ABC123",
		"gamePassword": "wrong",
	}, "")
	assertFailure(t, rr, "GF3")

	rr = ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{
		"userId":   "guest",
		"gameCode": "ABC123",
	}, "")
	assertFailure(t, rr, "GF3")

	rr = ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{
		"userId":       "guest",
		"gameCode":     "ABC123",
		"gamePassword": "secret",
	}, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestJoinRunningGame(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/start", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{
		"userId":   "guest",
		"gameCode": "ABC123",
	}, "")
	assertFailure(t, rr, "GF1")
}

func TestJoinUnknownCode(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{
		"userId":   "guest",
		"gameCode": "NOPE00",
	}, "")
	assertFailure(t, rr, "GF8")
}

func TestJoinTeamAndGetTeams(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")

	for _, u := range []struct{ id, name string }{{"host", "Hana"}, {"guest", "Gus"}} {
		rr := ts.request(http.MethodPut, "/api/v1/users/"+u.id, map[string]any{"username": u.name}, "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "US0", decodeBody(t, rr)["statusCode"])
	}

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/team", map[string]any{"userId": "host", "team": "red"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "GS2", decodeBody(t, rr)["statusCode"])

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/team", map[string]any{"userId": "guest", "team": "blue"}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/games/"+id+"/teams", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "GS6", body["statusCode"])
	assert.Equal(t, []any{"Hana"}, body["teamRedUsernames"])
	assert.Equal(t, []any{"Gus"}, body["teamBlueUsernames"])
}

func TestGetTeamsEmpty(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")

	rr := ts.request(http.MethodGet, "/api/v1/games/"+id+"/teams", nil, "")

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, []any{}, body["teamRedUsernames"])
	assert.Equal(t, []any{}, body["teamBlueUsernames"])
}

func TestJoinTeamInvalidTeam(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/team", map[string]any{"userId": "host", "team": "green"}, "")
	assertFailure(t, rr, "GF9")
}

func TestJoinTeamWhileRunning(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")
	ts.request(http.MethodPost, "/api/v1/games/"+id+"/start", nil, "")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/team", map[string]any{"userId": "host", "team": "red"}, "")
	assertFailure(t, rr, "GF4")
}

func TestUpdateStateAndStats(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")

	rr := ts.request(http.MethodPut, "/api/v1/games/"+id+"/state", map[string]any{
		"gameTime":       90,
		"teamRedScores":  3,
		"teamBlueScores": 1,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "GS5", decodeBody(t, rr)["statusCode"])

	rr = ts.request(http.MethodGet, "/api/v1/games/"+id+"/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "GS7", body["statusCode"])
	assert.Equal(t, float64(3), body["teamRedScores"])
	assert.Equal(t, float64(1), body["teamBlueScores"])
	assert.Equal(t, float64(90), body["gameTime"])
}

func TestEndGame(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")
	ts.request(http.MethodPost, "/api/v1/games/"+id+"/start", nil, "")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/end", map[string]any{
		"gameTime":       300,
		"teamRedScores":  5,
		"teamBlueScores": 2,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "GS4", body["statusCode"])
	assert.Equal(t, "Team Red", body["winner"])

	rr = ts.request(http.MethodPut, "/api/v1/games/"+id+"/state", map[string]any{"gameTime": 1}, "")
	assertFailure(t, rr, "GF5")

	rr = ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{"userId": "late", "gameCode": "ABC123"}, "")
	assertFailure(t, rr, "GF8")

	rr = ts.request(http.MethodGet, "/api/v1/games/"+id+"/reconnect/host", nil, "")
	body = assertFailure(t, rr, "GF6")
	assert.Equal(t, false, body["allowReconnect"])
}

func TestReconnect(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")
	ts.request(http.MethodPost, "/api/v1/games/join", map[string]any{"userId": "guest", "gameCode": "ABC123"}, "")

	rr := ts.request(http.MethodGet, "/api/v1/games/"+id+"/reconnect/host", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "GS9", body["statusCode"])
	assert.Equal(t, true, body["allowReconnect"])
	assert.Equal(t, true, body["isHost"])

	rr = ts.request(http.MethodGet, "/api/v1/games/"+id+"/reconnect/guest", nil, "")
	body = decodeBody(t, rr)
	assert.Equal(t, true, body["allowReconnect"])
	assert.Equal(t, false, body["isHost"])

	rr = ts.request(http.MethodGet, "/api/v1/games/"+id+"/reconnect/stranger", nil, "")
	body = assertFailure(t, rr, "GF7")
	assert.Equal(t, false, body["allowReconnect"])
}

func TestDeleteGame(t *testing.T) {
	ts := newTestServer(t, nil)
	id := ts.createGame(t, "host", "ABC123", "")

	rr := ts.request(http.MethodDelete, "/api/v1/games/"+id, nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "GS8", decodeBody(t, rr)["statusCode"])

	rr = ts.request(http.MethodGet, "/api/v1/games/"+id+"/stats", nil, "")
	assertFailure(t, rr, "GF8")

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+id, nil, "")
	assertFailure(t, rr, "GF8")
}

func TestHostOnlyPolicy(t *testing.T) {
	ts := newTestServer(t, authz.HostOnly{})
	id := ts.createGame(t, "host", "ABC123", "")

	rr := ts.request(http.MethodPost, "/api/v1/games/"+id+"/start", nil, "guest")
	assertFailure(t, rr, "GF10")

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/start", nil, "")
	assertFailure(t, rr, "GF10")

	rr = ts.request(http.MethodPost, "/api/v1/games/"+id+"/start", nil, "host")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/games/"+id, nil, "guest")
	assertFailure(t, rr, "GF10")
}

func TestPutUserRequiresUsername(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodPut, "/api/v1/users/u1", map[string]any{}, "")
	assertFailure(t, rr, "GF9")
}

func TestPutUserBlankIDIsInvalidRequest(t *testing.T) {
	ts := newTestServer(t, nil)

	rr := ts.request(http.MethodPut, "/api/v1/users/%20", map[string]any{"username": "blank"}, "")
	assertFailure(t, rr, "GF9")
}
