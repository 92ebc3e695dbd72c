// Package generator turns a brand description into a design system by
// prompting the model, then validating and normalising its answer.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/guard"
	"github.com/dmitrijs2005/brandforge/internal/llm"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"github.com/google/uuid"
)

const DefaultTimeout = 60 * time.Second

type Generator struct {
	client  llm.Client
	catalog *tiers.Catalog
	logger  logging.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string
}

type Option func(*Generator)

// WithTimeout bounds every model call; non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

func WithIDs(f func() string) Option { return func(g *Generator) { g.newID = f } }

func New(client llm.Client, catalog *tiers.Catalog, logger logging.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = logging.Nop()
	}
	g := &Generator{
		client:  client,
		catalog: catalog,
		logger:  logger.With("module", "generator"),
		timeout: DefaultTimeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate produces a version-1 artifact for brandDescription. It has no
// side effects beyond the model call; charging and persistence belong to
// the caller.
func (g *Generator) Generate(ctx context.Context, brandDescription string, tier tiers.Name) (*design.Artifact, error) {
	minLen, maxLen := guard.Bounds(guard.KindBrandDescription)
	if n := utf8.RuneCountInString(brandDescription); n < minLen || n > maxLen {
		return nil, common.NewValidationError("brandDescription",
			fmt.Sprintf("must be between %d and %d characters", minLen, maxLen))
	}
	t, ok := g.catalog.Get(tier)
	if !ok {
		return nil, common.NewValidationError("tier", fmt.Sprintf("unknown tier %q", tier))
	}

	start := g.now()
	out, err := g.complete(ctx, buildPrompt(brandDescription, t))
	if err != nil {
		return nil, err
	}
	raw, err := extractJSON(out.Text)
	if err != nil {
		g.logger.Warn(ctx, "unparseable model response", "tier", tier, "size", len(out.Text))
		return nil, err
	}
	a, err := parseDesign(raw, t, false)
	if err != nil {
		g.logger.Warn(ctx, "model response failed validation", "tier", tier, "error", err)
		return nil, err
	}

	a.ID = g.newID()
	a.Version = 1
	a.Tier = string(t.Name)
	a.BrandDescription = brandDescription
	a.Accessibility = design.EvaluateContrast(a.Colors)
	a.Metadata = design.Metadata{
		GeneratedAt:      g.now().UTC(),
		GenerationTimeMs: g.now().Sub(start).Milliseconds(),
		TokenCount:       out.TokenCount,
		ResponseSize:     len(out.Text),
		Model:            out.Model,
	}
	a.Metadata.Fingerprint = design.Fingerprint(a)

	g.logger.Info(ctx, "design system generated", "id", a.ID, "tier", tier,
		"ms", a.Metadata.GenerationTimeMs, "tokens", out.TokenCount)
	return a, nil
}

// AdjustTone asks the model to restyle the unlocked parts of req.Previous and
// returns them as a partial artifact.
func (g *Generator) AdjustTone(ctx context.Context, req refine.ToneRequest) (*design.Artifact, error) {
	if req.Previous == nil {
		return nil, common.NewValidationError("previousArtifact", "is required")
	}
	t, ok := g.catalog.Resolve(req.Previous.Tier)
	if !ok {
		t = g.catalog.Default()
	}
	current, err := json.Marshal(promptView(req.Previous))
	if err != nil {
		return nil, fmt.Errorf("encode previous design: %w", err)
	}

	out, err := g.complete(ctx, buildTonePrompt(req, t, current))
	if err != nil {
		return nil, err
	}
	raw, err := extractJSON(out.Text)
	if err != nil {
		return nil, err
	}
	a, err := parseDesign(raw, t, true)
	if err != nil {
		return nil, err
	}
	a.Metadata = design.Metadata{TokenCount: out.TokenCount, ResponseSize: len(out.Text), Model: out.Model}
	return a, nil
}

type completion struct {
	out llm.Completion
	err error
}

// complete runs the model call under the generator timeout. The call runs in
// its own goroutine, so a client that ignores cancellation cannot hold the
// caller past the deadline.
func (g *Generator) complete(ctx context.Context, p llm.Prompt) (llm.Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ch := make(chan completion, 1)
	go func() {
		out, err := g.client.Complete(ctx, p)
		ch <- completion{out, err}
	}()

	select {
	case r := <-ch:
		if r.err == nil {
			return r.out, nil
		}
		if ctx.Err() != nil {
			return llm.Completion{}, g.ctxError(ctx)
		}
		return llm.Completion{}, fmt.Errorf("%w: provider call failed: %w", common.ErrInvalidAIResponse, r.err)
	case <-ctx.Done():
		return llm.Completion{}, g.ctxError(ctx)
	}
}

func (g *Generator) ctxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		g.logger.Warn(ctx, "model call timed out", "timeout", g.timeout)
		return fmt.Errorf("%w after %s", common.ErrGenerationTimeout, g.timeout)
	}
	return fmt.Errorf("generation cancelled: %w", ctx.Err())
}
