package entity

import (
	"context"

	"github.com/questx-lab/rewards/pkg/xcontext"
)

// MigrateTable creates the tables from the entity definitions. It is used by
// tests, production schemas come from the SQL migrations.
func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&UserRewardProfile{},
		&XPTransaction{},
		&Achievement{},
		&UserAchievement{},
		&AwardReceipt{},
		&PendingJob{},
	)
}
