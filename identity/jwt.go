package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	sjwt "github.com/viant/scy/auth/jwt"
	"github.com/viant/scy/auth/jwt/verifier"
)

// ErrInvalidToken is returned when a token fails verification.
var ErrInvalidToken = errors.New("invalid token")

// subjectClaims lists claims tried, in order, to derive Principal.Subject.
var subjectClaims = []string{"sub", "email", "username", "user_id"}

type claimsVerifier interface {
	VerifyClaims(ctx context.Context, token string) (*sjwt.Claims, error)
}

// Resolver turns signed JWT tokens into principals.
type Resolver struct {
	verifier claimsVerifier
}

// NewResolver initialises a scy JWT verifier (RSA or HMAC key resources).
func NewResolver(ctx context.Context, config *verifier.Config) (*Resolver, error) {
	if config == nil || (config.RSA == nil && config.HMAC == nil) {
		return nil, fmt.Errorf("either RSA or HMAC key resource must be provided")
	}
	jwtVerifier := verifier.New(config)
	if err := jwtVerifier.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize JWT verifier: %w", err)
	}
	return &Resolver{verifier: jwtVerifier}, nil
}

// Resolve verifies token and maps its claims into a Principal.
func (r *Resolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	claims, err := r.verifier.VerifyClaims(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return FromClaims(claims)
}

// FromJWT is a one-shot helper combining NewResolver and Resolve.
func FromJWT(ctx context.Context, config *verifier.Config, token string) (*Principal, error) {
	resolver, err := NewResolver(ctx, config)
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(ctx, token)
}

// FromClaims maps any JSON-serialisable claim set into a Principal. Roles come from "roles"
// (list or space separated) and "scope"; every other scalar claim becomes an attribute.
func FromClaims(claims interface{}) (*Principal, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to encode claims: %w", err)
	}
	var raw map[string]interface{}
	if err = json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}
	ret := &Principal{}
	for _, key := range subjectClaims {
		if v := claimString(raw[key]); v != "" && v != "0" {
			ret.Subject = v
			break
		}
	}
	ret.Roles = append(claimList(raw["roles"]), claimList(raw["scope"])...)
	for k, v := range raw {
		switch k {
		case "roles", "scope":
			continue
		}
		if s := claimString(v); s != "" {
			if ret.Attributes == nil {
				ret.Attributes = map[string]string{}
			}
			ret.Attributes[k] = s
		}
	}
	if ret.Subject == "" {
		return nil, fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}
	return ret, nil
}

func claimString(v interface{}) string {
	switch actual := v.(type) {
	case string:
		return actual
	case float64:
		return fmt.Sprintf("%v", actual)
	case bool:
		return fmt.Sprintf("%v", actual)
	}
	return ""
}

func claimList(v interface{}) []string {
	var ret []string
	switch actual := v.(type) {
	case string:
		ret = strings.Fields(actual)
	case []interface{}:
		for _, item := range actual {
			if s := claimString(item); s != "" {
				ret = append(ret, s)
			}
		}
	}
	sort.Strings(ret)
	return ret
}
