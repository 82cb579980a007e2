package achievement

import (
	"context"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/repository"
)

// Context carries values of the award being evaluated which are not yet
// readable from storage.
type Context struct {
	Streak int
}

type Scanner interface {
	Requirement() entity.RequirementType

	// Scan returns the current value of the counter compared with the
	// requirement value of the achievements of this type.
	Scan(ctx context.Context, userID string, evalCtx Context) (int64, error)
}

// sourceCountScanner counts the ledger rows of some sources.
type sourceCountScanner struct {
	requirement entity.RequirementType
	sources     []entity.XPSource
	xpTxRepo    repository.XPTransactionRepository
}

func NewSourceCountScanner(
	requirement entity.RequirementType,
	xpTxRepo repository.XPTransactionRepository,
	sources ...entity.XPSource,
) *sourceCountScanner {
	return &sourceCountScanner{requirement: requirement, sources: sources, xpTxRepo: xpTxRepo}
}

func (s *sourceCountScanner) Requirement() entity.RequirementType {
	return s.requirement
}

func (s *sourceCountScanner) Scan(ctx context.Context, userID string, _ Context) (int64, error) {
	return s.xpTxRepo.CountBySources(ctx, userID, s.sources...)
}

type streakScanner struct{}

func NewStreakScanner() *streakScanner {
	return &streakScanner{}
}

func (streakScanner) Requirement() entity.RequirementType {
	return entity.RequirementStreakDays
}

func (streakScanner) Scan(_ context.Context, _ string, evalCtx Context) (int64, error) {
	return int64(evalCtx.Streak), nil
}

// DefaultScanners returns a scanner for every requirement type of the catalog.
func DefaultScanners(xpTxRepo repository.XPTransactionRepository) []Scanner {
	return []Scanner{
		NewSourceCountScanner(entity.RequirementVisitCount, xpTxRepo,
			entity.SourceOf(entity.ActivityPageView), entity.SourceOf(entity.ActivityReturnVisit)),
		NewStreakScanner(),
		NewSourceCountScanner(entity.RequirementPurchaseCount, xpTxRepo,
			entity.SourceOf(entity.ActivityDocumentPurchase)),
		NewSourceCountScanner(entity.RequirementConsultationCount, xpTxRepo,
			entity.SourceOf(entity.ActivityConsultationBooked)),
		NewSourceCountScanner(entity.RequirementNewsletterSubscribed, xpTxRepo,
			entity.SourceOf(entity.ActivityNewsletterSignup)),
		NewSourceCountScanner(entity.RequirementIntakeCompleted, xpTxRepo,
			entity.SourceOf(entity.ActivityIntakeComplete)),
	}
}
