package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// DefaultCheckLimit is how many recent checks one load reads.
const DefaultCheckLimit = 100

// Entity names used in load errors and metrics.
const (
	EntityRules     = "rules"
	EntityChecks    = "checks"
	EntityCases     = "cases"
	EntityDocuments = "documents"
)

// LoadError records a failed read of one entity type.
type LoadError struct {
	Entity string `json:"entity"`
	Err    error  `json:"-"`
}

func (e LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Entity, e.Err)
}

func (e LoadError) Unwrap() error {
	return e.Err
}

// View is one aggregation pass over the store.
type View struct {
	Tenant      string                  `json:"tenant"`
	GeneratedAt time.Time               `json:"generated_at"`
	Stats       entities.DashboardStats `json:"stats"`
	Actions     []entities.Action       `json:"actions"`
	RuleGroups  []CategoryGroup         `json:"rule_groups"`
	Rules       []entities.Rule         `json:"rules"`
	Checks      []entities.Check        `json:"checks"`
	Cases       []entities.Case         `json:"cases"`
	Documents   []entities.Document     `json:"documents"`
	LoadErrors  []LoadError             `json:"load_errors,omitempty"`
}

// Snapshot returns the view's raw records as an insight snapshot.
func (v *View) Snapshot() ports.Snapshot {
	return ports.Snapshot{
		Rules:     v.Rules,
		Checks:    v.Checks,
		Cases:     v.Cases,
		Documents: v.Documents,
	}
}

// ComplianceOptions configures a ComplianceService.
type ComplianceOptions struct {
	Tenant     string
	CheckLimit int
	Limits     ActionLimits
	Now        Clock
	Metrics    ports.MetricsRecorder
}

// ComplianceService loads raw records, runs the expiry, score, action and
// insight passes in order, and republishes the combined view. It also routes
// the explicit writes and reloads after each one.
type ComplianceService struct {
	store    ports.ComplianceStore
	rules    *RuleService
	cases    *CaseService
	insights *InsightService
	metrics  ports.MetricsRecorder
	logger   *zap.Logger
	opts     ComplianceOptions

	mu      sync.RWMutex
	current *View
}

// NewComplianceService creates a new ComplianceService.
func NewComplianceService(
	store ports.ComplianceStore,
	rules *RuleService,
	cases *CaseService,
	insights *InsightService,
	logger *zap.Logger,
	opts ComplianceOptions,
) *ComplianceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CheckLimit <= 0 {
		opts.CheckLimit = DefaultCheckLimit
	}
	if opts.Limits.Documents <= 0 && opts.Limits.Cases <= 0 {
		opts.Limits = DefaultActionLimits()
	}
	opts.Now = opts.Now.orDefault()

	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &ComplianceService{
		store:    store,
		rules:    rules,
		cases:    cases,
		insights: insights,
		metrics:  metrics,
		logger:   logger.Named("compliance").With(zap.String("tenant", opts.Tenant)),
		opts:     opts,
	}
}

// Load fetches every entity type and derives the view. A failed read of one
// entity type is recorded in View.LoadErrors and leaves that list empty;
// the other reads are unaffected.
func (s *ComplianceService) Load(ctx context.Context) *View {
	start := time.Now()
	now := s.opts.Now()

	view := &View{Tenant: s.opts.Tenant, GeneratedAt: now}
	errs := make([]error, 4)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		view.Rules, errs[0] = s.store.ListRules(ctx)
	}()
	go func() {
		defer wg.Done()
		view.Checks, errs[1] = s.store.ListRecentChecks(ctx, s.opts.CheckLimit)
	}()
	go func() {
		defer wg.Done()
		view.Cases, errs[2] = s.store.ListCases(ctx)
	}()
	go func() {
		defer wg.Done()
		view.Documents, errs[3] = s.store.ListDocuments(ctx)
	}()
	wg.Wait()

	for i, entity := range []string{EntityRules, EntityChecks, EntityCases, EntityDocuments} {
		if errs[i] == nil {
			continue
		}
		view.LoadErrors = append(view.LoadErrors, LoadError{Entity: entity, Err: errs[i]})
		s.metrics.RecordLoadError(s.opts.Tenant, entity)
		s.logger.Warn("load failed", zap.String("entity", entity), zap.Error(errs[i]))
	}

	s.derive(view, now)

	s.metrics.RecordLoad(s.opts.Tenant, time.Since(start), view.Stats)
	s.publish(view)
	return view
}

// derive runs the expiry, score and action passes over a loaded view.
func (s *ComplianceService) derive(view *View, now time.Time) {
	if view.Rules == nil {
		view.Rules = []entities.Rule{}
	}
	if view.Checks == nil {
		view.Checks = []entities.Check{}
	}
	if view.Cases == nil {
		view.Cases = []entities.Case{}
	}
	view.Documents = ApplyExpiryAll(view.Documents, now)

	view.Stats = AggregateScore(view.Snapshot(), now)
	view.Actions = PrioritizeActions(view.Documents, view.Cases, s.opts.Limits)
	view.RuleGroups = s.rules.Group(view.Rules)
}

// Insights runs the insight generator over a view.
func (s *ComplianceService) Insights(ctx context.Context, view *View) InsightResult {
	result := s.insights.Generate(ctx, view.Snapshot())
	s.metrics.RecordInsights(s.opts.Tenant, result.Source)
	return result
}

// LoadAsync loads the view and starts insight generation in the background.
// The view is returned at once; the channel receives exactly one result and
// is then closed. The channel is buffered so an abandoned receiver does not
// leak the goroutine; cancel ctx to abort the remote call.
func (s *ComplianceService) LoadAsync(ctx context.Context) (*View, <-chan InsightResult) {
	view := s.Load(ctx)

	ch := make(chan InsightResult, 1)
	go func() {
		defer close(ch)
		ch <- s.Insights(ctx, view)
	}()
	return view, ch
}

// Current returns the most recently published view, loading one if needed.
func (s *ComplianceService) Current(ctx context.Context) *View {
	s.mu.RLock()
	view := s.current
	s.mu.RUnlock()
	if view != nil {
		return view
	}
	return s.Load(ctx)
}

func (s *ComplianceService) publish(view *View) {
	s.mu.Lock()
	s.current = view
	s.mu.Unlock()
}

// ToggleRule enables or disables a rule, then reloads.
func (s *ComplianceService) ToggleRule(ctx context.Context, ruleID string, enabled bool) (*View, error) {
	view := s.Current(ctx)

	rules, err := s.rules.Toggle(ctx, view.Rules, ruleID, enabled)
	s.metrics.RecordWrite(s.opts.Tenant, "toggle_rule", err)
	if err != nil {
		return view, err
	}

	local := *view
	local.Rules = rules
	s.publish(&local)

	return s.Load(ctx), nil
}

// UpdateCaseStatus moves a case through the lifecycle, then reloads. The
// view is reloaded on failure too, so a retry after a conflict is checked
// against the stored revision rather than the one that lost.
func (s *ComplianceService) UpdateCaseStatus(ctx context.Context, caseID string, status entities.CaseStatus, opts StatusUpdateOptions) (*View, error) {
	view := s.Current(ctx)

	cases, err := s.cases.UpdateStatus(ctx, view.Cases, caseID, status, opts)
	s.metrics.RecordWrite(s.opts.Tenant, "update_case_status", err)
	if err != nil {
		return s.Load(ctx), err
	}

	local := *view
	local.Cases = cases
	s.publish(&local)

	return s.Load(ctx), nil
}

// AddCaseComment records a comment on a case, then reloads.
func (s *ComplianceService) AddCaseComment(ctx context.Context, caseID, author, body string) (*entities.CaseComment, error) {
	comment, err := s.cases.AddComment(ctx, caseID, author, body)
	s.metrics.RecordWrite(s.opts.Tenant, "insert_case_comment", err)
	if err != nil {
		return nil, err
	}

	s.Load(ctx)
	return comment, nil
}

// CaseComments lists the comments of a case.
func (s *ComplianceService) CaseComments(ctx context.Context, caseID string) ([]entities.CaseComment, error) {
	return s.cases.Comments(ctx, caseID)
}

// Rules exposes the rule service for display-state changes.
func (s *ComplianceService) Rules() *RuleService {
	return s.rules
}

type nopMetrics struct{}

func (nopMetrics) RecordLoad(string, time.Duration, entities.DashboardStats) {}
func (nopMetrics) RecordLoadError(string, string)                           {}
func (nopMetrics) RecordInsights(string, entities.InsightSource)            {}
func (nopMetrics) RecordWrite(string, string, error)                        {}
