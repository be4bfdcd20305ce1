package jwterr

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	erks "github.com/StricklySoft/erks/pkg/errors"
)

var testKey = []byte("test-signing-key-with-enough-bytes")

func signHS256(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(key)
	require.NoError(t, err)
	return tokenStr
}

func keyFunc(key []byte) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return key, nil }
}

// ===========================================================================
// Parse
// ===========================================================================

func TestParse_Valid(t *testing.T) {
	t.Parallel()
	tokenStr := signHS256(t, jwt.MapClaims{"sub": "svc", "exp": time.Now().Add(time.Hour).Unix()}, testKey)

	token, err := Parse(tokenStr, keyFunc(testKey), jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	assert.True(t, token.Valid)
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()
	now := time.Now()

	tests := []struct {
		name  string
		token string
		key   []byte
		opts  []jwt.ParserOption
		code  erks.Code
	}{
		{
			name:  "expired",
			token: signHS256(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}, testKey),
			key:   testKey,
			code:  CodeExpired,
		},
		{
			name:  "not valid yet",
			token: signHS256(t, jwt.MapClaims{"nbf": now.Add(time.Hour).Unix()}, testKey),
			key:   testKey,
			code:  CodeNotValidYet,
		},
		{
			name:  "wrong key",
			token: signHS256(t, jwt.MapClaims{"sub": "svc"}, testKey),
			key:   []byte("some-other-key-that-does-not-match"),
			code:  CodeSignatureInvalid,
		},
		{
			name:  "malformed",
			token: "not-a-token",
			key:   testKey,
			code:  CodeMalformed,
		},
		{
			name:  "wrong issuer",
			token: signHS256(t, jwt.MapClaims{"iss": "https://other.example.com"}, testKey),
			key:   testKey,
			opts:  []jwt.ParserOption{jwt.WithIssuer("https://auth.example.com")},
			code:  CodeClaimsInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(tt.token, keyFunc(tt.key), tt.opts...)
			require.Error(t, err)

			e, ok := erks.AsError(err)
			require.True(t, ok)
			assert.Equal(t, Category, e.Category())
			assert.Equal(t, tt.code, e.Code())
		})
	}
}

func TestParse_ExpiredSeverity(t *testing.T) {
	t.Parallel()
	tokenStr := signHS256(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}, testKey)

	_, err := Parse(tokenStr, keyFunc(testKey))
	assert.Equal(t, erks.SeverityWarning, erks.GetSeverity(err))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

// ===========================================================================
// Conversion
// ===========================================================================

func TestFrom_Converter(t *testing.T) {
	t.Parallel()
	e := erks.From(fmt.Errorf("authenticate: %w", jwt.ErrTokenMalformed))
	assert.Equal(t, CodeMalformed, e.Code())

	assert.Equal(t, erks.CategoryOther, erks.From(errors.New("boom")).Category())
}

func TestFrom(t *testing.T) {
	t.Parallel()
	assert.Nil(t, From(nil))
	assert.Equal(t, CodeInvalid, From(errors.New("boom")).Code())
	assert.Equal(t, CodeKeyInvalid, From(jwt.ErrInvalidKeyType).Code())
}
