package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/common"
	"github.com/dmitrijs2005/brandforge/internal/dbx"
	"github.com/dmitrijs2005/brandforge/internal/design"
	"github.com/dmitrijs2005/brandforge/internal/diff"
	"github.com/dmitrijs2005/brandforge/internal/guard"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/dmitrijs2005/brandforge/internal/server/export"
	"github.com/dmitrijs2005/brandforge/internal/server/models"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type Generator interface {
	Generate(ctx context.Context, brandDescription string, tier tiers.Name) (*design.Artifact, error)
}

type Refiner interface {
	Refine(ctx context.Context, previous *design.Artifact, constraints *refine.Constraints, instruction string) (*refine.Result, error)
}

type Exporter interface {
	Export(ctx context.Context, userID string, a *design.Artifact) (*export.Result, error)
}

// Recorder receives per-request outcomes; *metrics.Metrics implements it.
type Recorder interface {
	ObserveDesign(operation, tier, outcome string, d time.Duration)
	AddCreditsSpent(tier string, n int64)
}

type GenerationResult struct {
	Artifact         *design.Artifact
	CreditsRemaining int64
}

// RefineRequest names the version to refine either by stored id
// (ParentVersionID) or by value (Previous); exactly one must be set.
type RefineRequest struct {
	ParentVersionID string
	Previous        *design.Artifact
	Constraints     *refine.Constraints
	Instruction     string
}

type RefinementResult struct {
	Refined          *design.Artifact
	Comparison       diff.Comparison
	Explanation      string
	Degraded         bool
	Conflicts        []string
	Applied          []string
	Skipped          []string
	CreditsRemaining int64
}

// DesignService runs the request pipeline: guard, afford check, model call,
// then charge and persist in one transaction.
type DesignService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credits     *CreditService
	generator   Generator
	refiner     Refiner
	guard       *guard.Guard
	catalog     *tiers.Catalog
	exporter    Exporter
	recorder    Recorder
	logger      logging.Logger
	now         func() time.Time
}

type DesignOption func(*DesignService)

func WithExporter(e Exporter) DesignOption { return func(s *DesignService) { s.exporter = e } }

func WithRecorder(r Recorder) DesignOption { return func(s *DesignService) { s.recorder = r } }

func WithDesignClock(now func() time.Time) DesignOption { return func(s *DesignService) { s.now = now } }

func NewDesignService(db *sql.DB, m repomanager.RepositoryManager, credits *CreditService,
	gen Generator, ref Refiner, g *guard.Guard, catalog *tiers.Catalog, logger logging.Logger,
	opts ...DesignOption) *DesignService {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &DesignService{
		db:          db,
		repomanager: m,
		credits:     credits,
		generator:   gen,
		refiner:     ref,
		guard:       g,
		catalog:     catalog,
		recorder:    nopRecorder{},
		logger:      logger.With("module", "design"),
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate creates a version-1 design system and charges the tier's cost.
// The requested tier must be within the account's own tier. Nothing is
// charged or stored unless generation succeeds.
func (s *DesignService) Generate(ctx context.Context, userID, brandDescription, tier string) (res *GenerationResult, err error) {
	start := s.now()
	cfg, ok := s.catalog.Resolve(tier)
	defer func() { s.observe(ctx, "generate", string(cfg.Name), start, false, err) }()

	if !ok {
		return nil, common.NewValidationError("tier", fmt.Sprintf("unknown tier %q", tier))
	}
	check := s.guard.Validate(brandDescription, guard.KindBrandDescription)
	if !check.Valid {
		return nil, check.Err
	}

	account, err := s.credits.Account(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.catalog.Allows(account.Tier, cfg.Name) {
		return nil, common.NewValidationError("tier",
			fmt.Sprintf("tier %q is not available on a %s account", cfg.Name, account.Tier))
	}
	if !account.CanAfford(cfg.CreditCost) {
		return nil, &common.InsufficientCreditsError{Required: cfg.CreditCost, Balance: account.Balance}
	}

	artifact, err := s.generator.Generate(ctx, check.Sanitized, cfg.Name)
	if err != nil {
		return nil, err
	}
	artifact.UserID = userID

	balance, err := s.commit(ctx, userID, artifact, nil, cfg.CreditCost, "generation "+artifact.ID)
	if err != nil {
		return nil, err
	}
	s.recorder.AddCreditsSpent(string(cfg.Name), cfg.CreditCost)
	return &GenerationResult{Artifact: artifact, CreditsRemaining: balance}, nil
}

// Refine derives a new version from a stored or caller-supplied artifact and
// charges the refinement cost of the account's tier. A degraded refinement
// returns the previous design and is neither charged nor stored.
func (s *DesignService) Refine(ctx context.Context, userID string, req RefineRequest) (res *RefinementResult, err error) {
	start := s.now()
	tierName := ""
	degraded := false
	defer func() { s.observe(ctx, "refine", tierName, start, degraded, err) }()

	if err := s.checkRefineInput(&req); err != nil {
		return nil, err
	}

	previous, parentStored, err := s.previous(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	account, err := s.credits.Account(ctx, userID)
	if err != nil {
		return nil, err
	}
	cfg, ok := s.catalog.Get(account.Tier)
	if !ok {
		cfg = s.catalog.Default()
	}
	tierName = string(cfg.Name)
	if !account.CanAfford(cfg.RefinementCost) {
		return nil, &common.InsufficientCreditsError{Required: cfg.RefinementCost, Balance: account.Balance}
	}

	out, err := s.refiner.Refine(ctx, previous, req.Constraints, req.Instruction)
	if err != nil {
		return nil, err
	}
	res = &RefinementResult{
		Refined:     out.Refined,
		Explanation: out.Explanation,
		Degraded:    out.Degraded,
		Conflicts:   out.Conflicts,
		Applied:     out.Applied,
		Skipped:     out.Skipped,
	}
	if out.Degraded {
		degraded = true
		res.Comparison = diff.Compare(previous, previous)
		res.CreditsRemaining = account.Balance
		return res, nil
	}

	out.Refined.UserID = userID
	var parent *string
	if parentStored {
		parent = &previous.ID
	}
	balance, err := s.commit(ctx, userID, out.Refined, parent, cfg.RefinementCost, "refinement "+out.Refined.ID)
	if err != nil {
		return nil, err
	}
	s.recorder.AddCreditsSpent(string(cfg.Name), cfg.RefinementCost)

	res.Comparison = diff.Compare(previous, out.Refined)
	res.CreditsRemaining = balance
	return res, nil
}

// Get returns one of the user's artifacts. Artifacts of other users are
// reported as not found.
func (s *DesignService) Get(ctx context.Context, userID, id string) (*design.Artifact, error) {
	rec, err := s.repomanager.Artifacts(s.db).Get(ctx, id)
	if err != nil {
		return nil, lookup("get artifact", err)
	}
	if rec.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return decode(rec)
}

// History walks the parent chain from id, newest first.
func (s *DesignService) History(ctx context.Context, userID, id string, limit int) ([]*design.Artifact, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	chain, err := s.repomanager.Artifacts(s.db).Chain(ctx, id, limit)
	if err != nil {
		return nil, lookup("artifact history", err)
	}
	if len(chain) == 0 || chain[0].UserID != userID {
		return nil, common.ErrorNotFound
	}
	out := make([]*design.Artifact, 0, len(chain))
	for i := range chain {
		if chain[i].UserID != userID {
			break
		}
		a, err := decode(&chain[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Versions lists the direct children of id, i.e. every branch refined from it.
func (s *DesignService) Versions(ctx context.Context, userID, id string) ([]*design.Artifact, error) {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return nil, err
	}
	kids, err := s.repomanager.Artifacts(s.db).Children(ctx, id)
	if err != nil {
		return nil, lookup("artifact versions", err)
	}
	out := make([]*design.Artifact, 0, len(kids))
	for i := range kids {
		if kids[i].UserID != userID {
			continue
		}
		a, err := decode(&kids[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *DesignService) Compare(ctx context.Context, userID, fromID, toID string) (diff.Comparison, error) {
	from, err := s.Get(ctx, userID, fromID)
	if err != nil {
		return diff.Comparison{}, err
	}
	to, err := s.Get(ctx, userID, toID)
	if err != nil {
		return diff.Comparison{}, err
	}
	return diff.Compare(from, to), nil
}

// Export uploads the artifact to object storage. Without a configured
// exporter the operation does not exist and reports not found.
func (s *DesignService) Export(ctx context.Context, userID, id string) (*export.Result, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("%w: export is not configured", common.ErrorNotFound)
	}
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	res, err := s.exporter.Export(ctx, userID, a)
	if err != nil {
		s.logger.Error(ctx, "export failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	s.logger.Info(ctx, "artifact exported", "id", id, "key", res.Key)
	return res, nil
}

func (s *DesignService) checkRefineInput(req *RefineRequest) error {
	switch {
	case req.ParentVersionID == "" && req.Previous == nil:
		return common.NewValidationError("previousArtifact", "previousArtifact or parentVersionId is required")
	case req.ParentVersionID != "" && req.Previous != nil:
		return common.NewValidationError("previousArtifact", "give either previousArtifact or parentVersionId, not both")
	case req.Constraints == nil && req.Instruction == "":
		return common.NewValidationError("instruction", "constraints or instruction is required")
	}

	if req.Instruction != "" {
		check := s.guard.Validate(req.Instruction, guard.KindInstruction)
		if !check.Valid {
			return check.Err
		}
		req.Instruction = check.Sanitized
	}
	if req.Constraints != nil {
		if err := s.guard.ValidatePayloadSize(req.Constraints, s.guard.SmallLimit()); err != nil {
			return err
		}
		c := *req.Constraints
		changes, err := s.guard.ValidateChanges(c.SpecificChanges)
		if err != nil {
			return err
		}
		c.SpecificChanges = changes
		if err := c.Validate(); err != nil {
			return err
		}
		req.Constraints = &c
	}
	if req.Previous != nil {
		if err := s.guard.ValidatePayloadSize(req.Previous, s.guard.DesignLimit()); err != nil {
			return err
		}
		clean, err := s.guard.ValidateArtifact(req.Previous)
		if err != nil {
			return err
		}
		req.Previous = clean
	}
	return nil
}

// previous resolves the artifact to refine and reports whether it is one of
// the user's stored artifacts, which makes it the parent row of the result.
// A caller-supplied artifact whose id is stored for the user is replaced by
// the stored copy.
func (s *DesignService) previous(ctx context.Context, userID string, req RefineRequest) (*design.Artifact, bool, error) {
	if req.ParentVersionID != "" {
		a, err := s.Get(ctx, userID, req.ParentVersionID)
		if err != nil {
			return nil, false, err
		}
		return a, true, nil
	}
	rec, err := s.repomanager.Artifacts(s.db).Get(ctx, req.Previous.ID)
	switch {
	case err == nil && rec.UserID == userID:
		stored, err := decode(rec)
		if err != nil {
			return nil, false, err
		}
		return stored, true, nil
	case err == nil:
		return req.Previous, false, nil
	case errors.Is(err, common.ErrorNotFound):
		return req.Previous, false, nil
	default:
		return nil, false, lookup("load parent", err)
	}
}

// commit charges cost and stores a in one transaction.
func (s *DesignService) commit(ctx context.Context, userID string, a *design.Artifact, parent *string, cost int64, reason string) (int64, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return 0, fmt.Errorf("encode artifact: %w", err)
	}
	rec := &models.ArtifactRecord{
		ID:          a.ID,
		UserID:      userID,
		ParentID:    parent,
		Version:     a.Version,
		Tier:        a.Tier,
		Fingerprint: a.Metadata.Fingerprint,
		Body:        body,
		CreatedAt:   a.Metadata.GeneratedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now().UTC()
	}

	var balance int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		balance, err = s.credits.deduct(ctx, tx, userID, cost, reason)
		if err != nil {
			return err
		}
		return s.repomanager.Artifacts(tx).Insert(ctx, rec)
	})
	if err != nil {
		if !errors.Is(err, common.ErrInsufficientCredits) {
			s.logger.Error(ctx, "charge and store failed", "id", a.ID, "error", err)
		}
		return 0, persistence("commit artifact", err)
	}
	s.logger.Info(ctx, "artifact stored", "id", a.ID, "version", a.Version, "cost", cost, "balance", balance)
	return balance, nil
}

func (s *DesignService) observe(ctx context.Context, op, tier string, start time.Time, degraded bool, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = string(common.KindOf(err))
	case degraded:
		outcome = "degraded"
	}
	s.recorder.ObserveDesign(op, tier, outcome, s.now().Sub(start))
	if err != nil && common.KindOf(err) == common.KindInternal {
		s.logger.Error(ctx, op+" failed", "error", err)
	}
}

func decode(rec *models.ArtifactRecord) (*design.Artifact, error) {
	var a design.Artifact
	if err := json.Unmarshal(rec.Body, &a); err != nil {
		return nil, fmt.Errorf("%w: decode artifact %s: %v", common.ErrPersistence, rec.ID, err)
	}
	return &a, nil
}

// lookup keeps not-found visible to callers and wraps everything else.
func lookup(op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	return persistence(op, err)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDesign(string, string, string, time.Duration) {}
func (nopRecorder) AddCreditsSpent(string, int64)                      {}
