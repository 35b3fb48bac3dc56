package identity

import (
	"context"
	"strings"
)

// Principal represents the identity a task runs under.
//
//   - Subject is the stable identifier (user id, service account).
//   - Roles are coarse grants, compared case-insensitively.
//   - Attributes carry any remaining claims as strings.
//
// A nil *Principal means "anonymous".
type Principal struct {
	Subject    string            `json:"subject" yaml:"subject"`
	Roles      []string          `json:"roles,omitempty" yaml:"roles,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Anonymous reports whether p carries no identity.
func (p *Principal) Anonymous() bool {
	return p == nil || p.Subject == ""
}

// HasRole reports whether p was granted role.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p.
func (p *Principal) Clone() *Principal {
	if p == nil {
		return nil
	}
	ret := &Principal{
		Subject: p.Subject,
		Roles:   append([]string(nil), p.Roles...),
	}
	if p.Attributes != nil {
		ret.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			ret.Attributes[k] = v
		}
	}
	return ret
}

func (p *Principal) String() string {
	if p.Anonymous() {
		return "anonymous"
	}
	return p.Subject
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPrincipal embeds a copy of p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p.Clone())
}

// FromContext extracts the principal, nil when ctx is anonymous.
func FromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Principal); ok {
		return v
	}
	return nil
}
