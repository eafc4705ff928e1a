package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritkotgp/raceapi/internal/api/apierr"
	"github.com/fritkotgp/raceapi/internal/dependencies/mocks"
	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/services/auth"
	"github.com/fritkotgp/raceapi/internal/testutil"
)

func newVerifier() *auth.Verifier {
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	return auth.NewVerifier("test-secret", time.Hour, clock)
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()
	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

func TestAuthRejectsMissingToken(t *testing.T) {
	called := false
	h := Auth(newVerifier())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/races", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeUnauthorized, decodeError(t, rr).Code)
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	h := Auth(newVerifier())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/races", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid token", decodeError(t, rr).Message)
}

func TestAuthStoresIdentity(t *testing.T) {
	verifier := newVerifier()
	want := model.Identity{ID: "u1", Username: "Jan", Email: "jan@example.be"}
	token, _, err := verifier.Issue(want)
	require.NoError(t, err)

	var got *model.Identity
	h := Auth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = MustGetIdentity(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/races", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetIdentityWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetIdentity(req.Context()))
	assert.Panics(t, func() { MustGetIdentity(req.Context()) })
}

func TestRecoveryWritesJSON500(t *testing.T) {
	h := Recovery(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, apierr.CodeInternalError, decodeError(t, rr).Code)
}

func TestLoggingLevels(t *testing.T) {
	logger, logs := testutil.CaptureLogger()

	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusBadGateway} {
		logs.Reset()
		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("body"))
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/races/simulate", nil))

		entry := logs.Last(t)
		assert.Equal(t, float64(status), entry["status"])
		assert.Equal(t, float64(4), entry["size"])
		assert.Equal(t, "/races/simulate", entry["path"])
		if status >= 500 {
			assert.Equal(t, "ERROR", entry["level"])
		} else {
			assert.Equal(t, "INFO", entry["level"])
		}
	}
}
