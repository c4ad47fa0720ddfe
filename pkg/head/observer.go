package head

import (
	"context"
	"time"
)

// ResourceOutcome describes what happened to a requested resource.
type ResourceOutcome string

const (
	OutcomeEmitted   ResourceOutcome = "emitted"
	OutcomeDuplicate ResourceOutcome = "duplicate"
	OutcomeMissing   ResourceOutcome = "missing"
)

// ResourceEvent is reported for every stylesheet or script request.
type ResourceEvent struct {
	Kind    ResourceKind
	Key     ResourceKey
	Outcome ResourceOutcome

	// URL is the encoded href or src. Empty unless Outcome is OutcomeEmitted.
	URL string
}

// Phase names the renderer call a RenderEvent belongs to.
type Phase string

const (
	PhaseBegin Phase = "begin"
	PhaseEnd   Phase = "end"
)

// RenderEvent is reported when EncodeBegin or EncodeEnd returns.
type RenderEvent struct {
	Phase    Phase
	ViewID   string
	Duration time.Duration

	// Emitted is the number of resources written so far in this render.
	Emitted int

	// InitScripts is the number of initialization fragments written.
	InitScripts int

	Err error
}

// Observer receives render events. Implementations must be safe for
// concurrent use; one Observer serves every request of a Renderer.
type Observer interface {
	ResourceEncoded(ctx context.Context, ev ResourceEvent)
	RenderCompleted(ctx context.Context, ev RenderEvent)
}

// MultiObserver fans events out to every non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	var list multiObserver
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) ResourceEncoded(ctx context.Context, ev ResourceEvent) {
	for _, o := range m {
		o.ResourceEncoded(ctx, ev)
	}
}

func (m multiObserver) RenderCompleted(ctx context.Context, ev RenderEvent) {
	for _, o := range m {
		o.RenderCompleted(ctx, ev)
	}
}
