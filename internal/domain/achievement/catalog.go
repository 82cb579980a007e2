package achievement

import (
	"context"

	"github.com/google/uuid"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/repository"
)

var catalog = []entity.Achievement{
	{
		Slug: "first_visit", Name: "First Steps", Icon: "👣",
		Description:     "Visit the site for the first time",
		RequirementType: entity.RequirementVisitCount, RequirementValue: 1, XPReward: 10,
	},
	{
		Slug: "regular_reader", Name: "Regular Reader", Icon: "📖",
		Description:     "Visit 10 pages",
		RequirementType: entity.RequirementVisitCount, RequirementValue: 10, XPReward: 50,
	},
	{
		Slug: "devoted_reader", Name: "Devoted Reader", Icon: "📚",
		Description:     "Visit 50 pages",
		RequirementType: entity.RequirementVisitCount, RequirementValue: 50, XPReward: 200,
	},
	{
		Slug: "streak_3", Name: "Getting Started", Icon: "🔥",
		Description:     "Be active 3 days in a row",
		RequirementType: entity.RequirementStreakDays, RequirementValue: 3, XPReward: 25,
	},
	{
		Slug: "streak_7", Name: "Week Warrior", Icon: "⚡",
		Description:     "Be active 7 days in a row",
		RequirementType: entity.RequirementStreakDays, RequirementValue: 7, XPReward: 75,
	},
	{
		Slug: "streak_30", Name: "Monthly Master", Icon: "🏆",
		Description:     "Be active 30 days in a row",
		RequirementType: entity.RequirementStreakDays, RequirementValue: 30, XPReward: 300,
	},
	{
		Slug: "first_purchase", Name: "First Document", Icon: "📄",
		Description:     "Purchase your first document",
		RequirementType: entity.RequirementPurchaseCount, RequirementValue: 1, XPReward: 100,
	},
	{
		Slug: "loyal_client", Name: "Loyal Client", Icon: "💼",
		Description:     "Purchase 5 documents",
		RequirementType: entity.RequirementPurchaseCount, RequirementValue: 5, XPReward: 500,
	},
	{
		Slug: "first_consultation", Name: "Consultation Booked", Icon: "🤝",
		Description:     "Book your first consultation",
		RequirementType: entity.RequirementConsultationCount, RequirementValue: 1, XPReward: 150,
	},
	{
		Slug: "newsletter_subscriber", Name: "Stay Informed", Icon: "✉️",
		Description:     "Subscribe to the newsletter",
		RequirementType: entity.RequirementNewsletterSubscribed, RequirementValue: 1, XPReward: 50,
	},
	{
		Slug: "intake_completed", Name: "Ready to Proceed", Icon: "✅",
		Description:     "Complete the client intake form",
		RequirementType: entity.RequirementIntakeCompleted, RequirementValue: 1, XPReward: 100,
	},
}

func Catalog() []entity.Achievement {
	return append([]entity.Achievement{}, catalog...)
}

// SeedCatalog inserts the catalog, or updates the rows having the same slug.
func SeedCatalog(ctx context.Context, achievementRepo repository.AchievementRepository) error {
	for _, a := range catalog {
		a.ID = uuid.NewString()
		if err := achievementRepo.Upsert(ctx, &a); err != nil {
			return err
		}
	}

	return nil
}
