package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gamesessions/internal/testutil"
)

func TestLoggingRecordsRequest(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/games/g1", nil)
	req.Header.Set(ActorHeader, "alice")
	h.ServeHTTP(httptest.NewRecorder(), req)

	records := logs.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "/api/v1/games/g1", records[0]["path"])
	assert.Equal(t, float64(http.StatusOK), records[0]["status"])
	assert.Equal(t, float64(5), records[0]["size"])
	assert.Equal(t, "alice", records[0]["actor"])
}

func TestLoggingWarnsOnFailure(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/games/join", nil))

	records := logs.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "WARN", records[0]["level"])
	assert.NotContains(t, records[0], "actor")
}

func TestRecoveryInvokesHandler(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	var recovered any
	h := Recovery(logger, func(w http.ResponseWriter, r *http.Request, err any) {
		recovered = err
		w.WriteHeader(http.StatusTeapot)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "boom", recovered)

	records := logs.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "panic recovered", records[0]["msg"])
}
