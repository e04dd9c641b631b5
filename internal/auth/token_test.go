package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("super-secret"), 160*time.Hour)

	tok, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	email, err := svc.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", email)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("secret"), 160*time.Hour)

	issued := time.Now()
	svc.now = func() time.Time { return issued }
	tok, err := svc.Issue("a@x.com")
	require.NoError(t, err)

	// still valid just before the deadline
	svc.now = func() time.Time { return issued.Add(160*time.Hour - time.Second) }
	_, err = svc.Verify(tok)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(160*time.Hour + time.Second) }
	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewService([]byte("secret-one"), time.Hour)
	verifier := NewService([]byte("secret-two"), time.Hour)

	tok, err := issuer.Issue("a@x.com")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("secret"), time.Hour)

	for _, tok := range []string{"", "garbage", "not.a.jwt"} {
		_, err := svc.Verify(tok)
		require.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}
