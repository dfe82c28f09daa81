package assistant

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"carmarket/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// DefaultTimeout bounds both the consultant and the seller path.
const DefaultTimeout = 30 * time.Second

const (
	opAsk    = "ask"
	opSeller = "seller_reply"
)

// Responder calls the gateway under a deadline and substitutes canned
// replies for every failure. Its methods never fail and never return "".
type Responder struct {
	gateway   Gateway
	timeout   time.Duration
	catalogue *Catalogue

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewResponder creates a Responder. A non-positive timeout means DefaultTimeout;
// a nil catalogue means the embedded one.
func NewResponder(gw Gateway, timeout time.Duration, catalogue *Catalogue) *Responder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if catalogue == nil {
		catalogue = DefaultCatalogue()
	}
	now := uint64(time.Now().UnixNano())
	return &Responder{
		gateway:   gw,
		timeout:   timeout,
		catalogue: catalogue,
		rnd:       rand.New(rand.NewPCG(now, now>>1)),
	}
}

type result struct {
	text string
	err  error
}

// race runs call in its own goroutine and returns whichever comes first, the
// result or the deadline. A result arriving after the deadline is dropped.
// There is no retry.
func (r *Responder) race(ctx context.Context, op string, call func(context.Context) (string, error)) (string, error) {
	ctx, span := observability.StartClientSpan(ctx, "assistant."+op,
		attribute.String("assistant.operation", op),
	)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		text, err := call(ctx)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
		if res.err == nil && res.text == "" {
			res.err = ErrUnknown
		}
	case <-ctx.Done():
		res.err = ErrTimeout
	}

	kind := Classify(res.err)
	observability.AssistantLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	observability.AssistantRequests.WithLabelValues(op, outcome(res.err)).Inc()
	span.SetAttributes(attribute.String("assistant.outcome", outcome(res.err)))
	observability.EndSpan(span, kind)

	if res.err != nil {
		observability.Logger.WarnContext(ctx, "assistant gateway failed, using canned reply",
			slog.String("operation", op),
			slog.String("kind", kind.Error()),
			slog.String("error", res.err.Error()),
		)
		return "", kind
	}
	return res.text, nil
}

// Ask answers a free-text question. On any gateway failure it returns the
// deterministic canned answer for the message's intent.
func (r *Responder) Ask(ctx context.Context, message string) string {
	text, err := r.race(ctx, opAsk, func(ctx context.Context) (string, error) {
		return r.gateway.Generate(ctx, message)
	})
	if err != nil {
		return r.catalogue.ConsultantReply(message)
	}
	return text
}

// SellerReply answers a buyer on the seller's behalf. On any gateway failure
// it picks one of the canned seller replies for the message's intent.
func (r *Responder) SellerReply(ctx context.Context, listing ListingSummary, text string, turns []Turn) string {
	reply, err := r.race(ctx, opSeller, func(ctx context.Context) (string, error) {
		return r.gateway.GenerateContextualReply(ctx, listing, text, turns)
	})
	if err != nil {
		return r.pick(r.catalogue.SellerReplies(listing, text))
	}
	return reply
}

func (r *Responder) pick(candidates []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return candidates[r.rnd.IntN(len(candidates))]
}
