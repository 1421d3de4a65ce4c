// ABOUTME: Tests for JWT session credential generation and verification
// ABOUTME: Covers round-trips, wrong secrets, expiry, and credential transport extraction

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_RoundTrip(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret"))

	token, err := v.Generate("session-123", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", sessionID)
}

func TestJWTVerifier_WrongSecret(t *testing.T) {
	issuer := NewJWTVerifier([]byte("secret-one"))
	verifier := NewJWTVerifier([]byte("secret-two"))

	token, err := issuer.Generate("session-123", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTVerifier_Expired(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret"))

	token, err := v.Generate("session-123", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTVerifier_Garbage(t *testing.T) {
	v := NewJWTVerifier([]byte("test-secret"))

	_, err := v.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCredential_FromCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/Page/1", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})

	token, ok := Credential(r)
	require.True(t, ok)
	assert.Equal(t, "cookie-token", token)
}

func TestCredential_FromBearerHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/Page/1", nil)
	r.Header.Set("Authorization", "Bearer header-token")

	token, ok := Credential(r)
	require.True(t, ok)
	assert.Equal(t, "header-token", token)
}

func TestCredential_CookieWinsOverHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/Page/1", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})
	r.Header.Set("Authorization", "Bearer header-token")

	token, ok := Credential(r)
	require.True(t, ok)
	assert.Equal(t, "cookie-token", token)
}

func TestCredential_Missing(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no credential at all", func(r *http.Request) {}},
		{"empty cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookie, Value: ""})
		}},
		{"malformed authorization header", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		}},
		{"empty bearer token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer ")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/Page/1", nil)
			tt.setup(r)

			_, ok := Credential(r)
			assert.False(t, ok)
		})
	}
}

func TestSetAndClearCredential(t *testing.T) {
	w := httptest.NewRecorder()
	SetCredential(w, "tok", time.Hour)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	w = httptest.NewRecorder()
	ClearCredential(w)
	cookies = w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}
