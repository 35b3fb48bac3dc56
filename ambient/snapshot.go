// Package ambient captures the execution context of one goroutine (identity and trace span) as an
// immutable Snapshot and re-activates it, scoped, on another goroutine.
package ambient

import (
	"context"
	"sync"

	"github.com/viant/handoff/identity"
	"github.com/viant/handoff/tracing"
	"go.opentelemetry.io/otel/trace"
)

// Snapshot is a copied, immutable view of a goroutine's ambient state.
type Snapshot struct {
	principal *identity.Principal
	span      trace.SpanContext
}

// Capture snapshots the principal and span active on ctx.
func Capture(ctx context.Context) Snapshot {
	return NewSnapshot(identity.FromContext(ctx), tracing.Capture(ctx))
}

// NewSnapshot builds a snapshot from explicit parts.
func NewSnapshot(principal *identity.Principal, span trace.SpanContext) Snapshot {
	return Snapshot{principal: principal.Clone(), span: span}
}

// Principal returns a copy of the captured principal (nil when anonymous).
func (s Snapshot) Principal() *identity.Principal { return s.principal.Clone() }

// Span returns the captured span context.
func (s Snapshot) Span() trace.SpanContext { return s.span }

// Guard is the scoped activation of a Snapshot. Release must run on every exit path; it is
// idempotent.
type Guard struct {
	span *tracing.Span
	once sync.Once
}

// Enter activates snap on top of base: the principal is installed (or cleared when anonymous)
// and the captured trace continues through a new child span named label. The returned context
// must only be used until Release.
func Enter(base context.Context, snap Snapshot, label string) (context.Context, *Guard) {
	if base == nil {
		base = context.Background()
	}
	ctx := identity.WithPrincipal(base, snap.principal)
	ctx, span := tracing.Continue(ctx, snap.span, label)
	return ctx, &Guard{span: span}
}

// Annotate tags the scoped span with attrs.
func (g *Guard) Annotate(attrs map[string]string) {
	if g == nil {
		return
	}
	g.span.WithAttributes(attrs)
}

// Release ends the scoped span, recording err as its status.
func (g *Guard) Release(err error) {
	if g == nil {
		return
	}
	g.once.Do(func() {
		tracing.EndSpan(g.span, err)
	})
}
