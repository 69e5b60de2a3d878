package trace

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

// session is what WithTracer puts in the context: the sink plus the
// counters shared by every span of one run.
type session struct {
	tracer    Tracer
	seq       atomic.Uint64
	spans     atomic.Uint64
	openFiles atomic.Int64
}

type sessionKey struct{}
type spanKey struct{}

// WithTracer attaches t to ctx. A nil tracer disables tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, sessionKey{}, &session{tracer: t})
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if s := sessionFrom(ctx); s != nil {
		return s.tracer
	}
	return Nop
}

func sessionFrom(ctx context.Context) *session {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

func (s *session) emit(ev Event) {
	ev.Seq = s.seq.Add(1)
	s.tracer.Emit(&ev)
}

// Span is an open interval of work. All methods accept a nil receiver, which
// is what Start returns when ctx carries no tracer.
type Span struct {
	s       *session
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	file    string
	attrs   []Attr
	started time.Time
	ended   bool
}

// Start opens a span under the span carried by ctx and returns a context
// carrying the new one. file names the document the span works on and may
// be empty.
func Start(ctx context.Context, scope Scope, name, file string) (context.Context, *Span) {
	s := sessionFrom(ctx)
	if s == nil {
		return ctx, nil
	}
	sp := &Span{
		s:       s,
		id:      s.spans.Add(1),
		scope:   scope,
		name:    name,
		file:    file,
		started: time.Now(),
	}
	if parent, ok := ctx.Value(spanKey{}).(*Span); ok && parent != nil {
		sp.parent = parent.id
	}
	if scope == ScopeFile {
		s.openFiles.Add(1)
	}
	if sp.enabled() {
		s.emit(Event{
			Time:     sp.started,
			Kind:     KindBegin,
			Scope:    scope,
			SpanID:   sp.id,
			ParentID: sp.parent,
			Name:     name,
			File:     file,
		})
	}
	return context.WithValue(ctx, spanKey{}, sp), sp
}

// Attr adds a key/value pair to the end event.
func (sp *Span) Attr(key, value string) *Span {
	if sp != nil {
		sp.attrs = append(sp.attrs, Attr{Key: key, Value: value})
	}
	return sp
}

// AttrInt is Attr for counts.
func (sp *Span) AttrInt(key string, n int) *Span {
	return sp.Attr(key, strconv.Itoa(n))
}

// ID returns the span identifier, 0 for a nil span.
func (sp *Span) ID() uint64 {
	if sp == nil {
		return 0
	}
	return sp.id
}

func (sp *Span) enabled() bool {
	return sp.s.tracer.Level().ShouldEmit(sp.scope)
}

// End closes the span with an optional status and returns its duration.
// Ending twice is a no-op.
func (sp *Span) End(detail string) time.Duration {
	if sp == nil || sp.ended {
		return 0
	}
	sp.ended = true
	elapsed := time.Since(sp.started)
	if sp.scope == ScopeFile {
		sp.s.openFiles.Add(-1)
	}
	if !sp.enabled() {
		return elapsed
	}
	sp.s.emit(Event{
		Time:     time.Now(),
		Kind:     KindEnd,
		Scope:    sp.scope,
		SpanID:   sp.id,
		ParentID: sp.parent,
		Name:     sp.name,
		File:     sp.file,
		Detail:   detail,
		Elapsed:  elapsed,
		Attrs:    sp.attrs,
	})
	return elapsed
}

// Point records an instant event (cache hits, config decisions) under the
// span carried by ctx. It is only kept at LevelDebug.
func Point(ctx context.Context, name, detail string) {
	s := sessionFrom(ctx)
	if s == nil || !s.tracer.Level().ShouldEmit(scopePoint) {
		return
	}
	ev := Event{Time: time.Now(), Kind: KindPoint, Scope: scopePoint, Name: name, Detail: detail}
	if parent, ok := ctx.Value(spanKey{}).(*Span); ok && parent != nil {
		ev.ParentID = parent.id
		ev.File = parent.file
	}
	s.emit(ev)
}
