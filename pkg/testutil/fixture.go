package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/pkg/xcontext"
)

const (
	User1 = "alice@example.com"
	User2 = "bob@example.com"
	User3 = "carol@example.com"
)

// InsertProfile stores a profile as if the user had already been active.
func InsertProfile(ctx context.Context, profile *entity.UserRewardProfile) {
	if err := xcontext.DB(ctx).Create(profile).Error; err != nil {
		panic(err)
	}
}

func NullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}
