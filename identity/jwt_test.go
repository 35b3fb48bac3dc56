package identity

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/scy"
	"github.com/viant/scy/auth/jwt/signer"
	"github.com/viant/scy/auth/jwt/verifier"
)

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	keyURL := filepath.Join(t.TempDir(), "hmac.key")
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, os.WriteFile(keyURL, []byte(secret), 0600))

	jwtSigner := signer.New(&signer.Config{HMAC: &scy.Resource{URL: keyURL}})
	require.NoError(t, jwtSigner.Init(ctx))
	token, err := jwtSigner.Create(time.Hour, map[string]interface{}{"email": "alice@example.com"})
	require.NoError(t, err)

	resolver, err := NewResolver(ctx, &verifier.Config{HMAC: &scy.Resource{URL: keyURL}})
	require.NoError(t, err)

	principal, err := resolver.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", principal.Subject)

	_, err = resolver.Resolve(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = resolver.Resolve(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewResolver_RequiresKey(t *testing.T) {
	_, err := NewResolver(context.Background(), &verifier.Config{})
	assert.Error(t, err)
	_, err = FromJWT(context.Background(), nil, "token")
	assert.Error(t, err)
}
