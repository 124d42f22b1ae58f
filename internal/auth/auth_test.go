package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestIssueAndParse(t *testing.T) {
	svc := NewTokenService("s3cret", "eventhub", time.Minute)
	tok, err := svc.Issue(42, "ana")
	require.NoError(t, err)

	claims, err := svc.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Username)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "eventhub", claims.Issuer)
}

func TestParseRejects(t *testing.T) {
	svc := NewTokenService("s3cret", "eventhub", time.Minute)

	other := NewTokenService("different", "eventhub", time.Minute)
	forged, err := other.Issue(1, "mallory")
	require.NoError(t, err)
	_, err = svc.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenService("s3cret", "eventhub", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Issue(1, "ana")
	require.NoError(t, err)
	_, err = svc.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "iss": "eventhub"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDefaultTTL(t *testing.T) {
	assert.Equal(t, 15*time.Minute, NewTokenService("x", "", 0).TTL())
}

func TestMiddleware(t *testing.T) {
	svc := NewTokenService("s3cret", "eventhub", time.Minute)
	var seen *Claims
	h := Middleware(svc, zaptest.NewLogger(t).Sugar())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/role", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/role", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"invalid token"}`, rec.Body.String())

	tok, err := svc.Issue(7, "bo")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/role", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "bo", seen.Username)
}
