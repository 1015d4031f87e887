package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ersonp/compliance-core/internal/domain/entities"
	"github.com/ersonp/compliance-core/internal/domain/ports"
)

// Heuristic thresholds and fixed template values.
const (
	RecentCheckWindow    = 20
	FailureRateThreshold = 0.20
	AgingCaseDays        = 30

	failureRateConfidence  = 85
	expiringDocsConfidence = 92
	agingCasesConfidence   = 78
)

// errNoInsightClient marks a load where no remote service is configured.
var errNoInsightClient = errors.New("no insight client configured")

// InsightResult is the outcome of one insight generation.
type InsightResult struct {
	Insights []entities.Insight     `json:"insights"`
	Source   entities.InsightSource `json:"source"`
}

// InsightService produces insights from a remote service, falling back to
// fixed heuristics when the remote call fails. The remote call is made once.
type InsightService struct {
	client ports.InsightClient
	now    Clock
	logger *zap.Logger
}

// NewInsightService creates a new insight service. client may be nil, in
// which case every call uses the heuristics.
func NewInsightService(client ports.InsightClient, now Clock, logger *zap.Logger) *InsightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{
		client: client,
		now:    now.orDefault(),
		logger: logger.Named("insights"),
	}
}

// Generate returns the remote insights, or the heuristic set on any failure.
// The two are never mixed.
func (s *InsightService) Generate(ctx context.Context, snap ports.Snapshot) InsightResult {
	insights, err := s.remote(ctx, snap)
	if err == nil {
		return InsightResult{Insights: stampIDs(insights), Source: entities.SourceRemote}
	}

	if !errors.Is(err, errNoInsightClient) {
		s.logger.Warn("remote insight generation failed, using heuristics", zap.Error(err))
	}

	return InsightResult{
		Insights: stampIDs(HeuristicInsights(snap, s.now())),
		Source:   entities.SourceHeuristic,
	}
}

func (s *InsightService) remote(ctx context.Context, snap ports.Snapshot) ([]entities.Insight, error) {
	if s.client == nil {
		return nil, errNoInsightClient
	}

	insights, err := s.client.GenerateInsights(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("calling insight service: %w", err)
	}

	for i := range insights {
		if err := ValidateInsight(&insights[i]); err != nil {
			return nil, fmt.Errorf("insight %d: %w", i, err)
		}
	}
	return insights, nil
}

// ValidateInsight checks the shape of a remote insight.
func ValidateInsight(in *entities.Insight) error {
	if !in.Type.IsValid() {
		return fmt.Errorf("%w: type %q", entities.ErrInvalidInsight, in.Type)
	}
	if in.Title == "" {
		return fmt.Errorf("%w: empty title", entities.ErrInvalidInsight)
	}
	if in.Confidence < 0 || in.Confidence > 100 {
		return fmt.Errorf("%w: confidence %d out of range", entities.ErrInvalidInsight, in.Confidence)
	}
	return nil
}

// HeuristicInsights applies the fixed fallback rules to a snapshot.
// Documents must already carry DaysUntilExpiry.
func HeuristicInsights(snap ports.Snapshot, now time.Time) []entities.Insight {
	var insights []entities.Insight

	if rate, ok := recentFailureRate(snap.Checks); ok && rate > FailureRateThreshold {
		pct := int(math.Round(rate * 100))
		insights = append(insights, entities.Insight{
			Type:        entities.InsightAlert,
			Title:       "High check failure rate",
			Description: fmt.Sprintf("%d%% of the last %d compliance checks failed.", pct, min(len(snap.Checks), RecentCheckWindow)),
			Confidence:  failureRateConfidence,
			Action:      "Review failed checks",
		})
	}

	expiring := 0
	for i := range snap.Documents {
		if d := snap.Documents[i].DaysUntilExpiry; d != nil && *d <= UrgentExpiryDays {
			expiring++
		}
	}
	if expiring > 0 {
		insights = append(insights, entities.Insight{
			Type:        entities.InsightSuggestion,
			Title:       "Documents expiring soon",
			Description: fmt.Sprintf("%d documents expire within %d days.", expiring, UrgentExpiryDays),
			Confidence:  expiringDocsConfidence,
			Action:      "Request updated documents",
		})
	}

	cutoff := now.Add(-AgingCaseDays * day)
	aging := 0
	for i := range snap.Cases {
		c := &snap.Cases[i]
		if c.Status == entities.CaseOpen && c.CreatedAt.Before(cutoff) {
			aging++
		}
	}
	if aging > 0 {
		insights = append(insights, entities.Insight{
			Type:        entities.InsightRisk,
			Title:       "Aging open cases",
			Description: fmt.Sprintf("%d cases have been open for more than %d days.", aging, AgingCaseDays),
			Confidence:  agingCasesConfidence,
			Action:      "Escalate aging cases",
		})
	}

	return insights
}

// recentFailureRate returns the share of failed checks among the most
// recent RecentCheckWindow checks.
func recentFailureRate(checks []entities.Check) (float64, bool) {
	if len(checks) == 0 {
		return 0, false
	}

	recent := make([]entities.Check, len(checks))
	copy(recent, checks)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CheckedAt.After(recent[j].CheckedAt)
	})
	if len(recent) > RecentCheckWindow {
		recent = recent[:RecentCheckWindow]
	}

	failed := 0
	for i := range recent {
		if recent[i].Status == entities.CheckFail {
			failed++
		}
	}
	return float64(failed) / float64(len(recent)), true
}

// stampIDs assigns sequential local IDs starting at 1.
func stampIDs(insights []entities.Insight) []entities.Insight {
	result := make([]entities.Insight, len(insights))
	for i := range insights {
		result[i] = insights[i]
		result[i].ID = strconv.Itoa(i + 1)
	}
	return result
}
