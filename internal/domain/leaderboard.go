package domain

import (
	"context"

	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/questx-lab/rewards/pkg/xredis"
)

type LeaderBoardDomain interface {
	GetLeaderBoard(context.Context, *model.GetLeaderBoardRequest) (*model.GetLeaderBoardResponse, error)
}

type leaderBoardDomain struct {
	profileRepo repository.RewardProfileRepository
	redisClient xredis.Client
}

// NewLeaderBoardDomain reads the redis sorted set if redisClient is not nil,
// the database otherwise.
func NewLeaderBoardDomain(
	profileRepo repository.RewardProfileRepository,
	redisClient xredis.Client,
) *leaderBoardDomain {
	return &leaderBoardDomain{profileRepo: profileRepo, redisClient: redisClient}
}

func (d *leaderBoardDomain) GetLeaderBoard(
	ctx context.Context, req *model.GetLeaderBoardRequest,
) (*model.GetLeaderBoardResponse, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	offset, limit := common.PaginationParameter(req.Offset, req.Limit, apiCfg.DefaultLimit, apiCfg.MaxLimit)

	if d.redisClient != nil {
		entries, err := d.getFromRedis(ctx, offset, limit)
		if err == nil && len(entries) > 0 {
			return &model.GetLeaderBoardResponse{LeaderBoard: entries}, nil
		}

		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get leaderboard from redis, fallback to database: %v", err)
		}
	}

	profiles, err := d.profileRepo.GetTopByLifetimeXP(ctx, offset, limit)
	if err != nil {
		return nil, storageError(ctx, "Cannot get top profiles: %v", err)
	}

	entries := []model.LeaderBoardEntry{}
	for i, p := range profiles {
		entries = append(entries, model.LeaderBoardEntry{
			Rank:       offset + i + 1,
			UserID:     p.UserID,
			LifetimeXP: p.LifetimeXP,
			Level:      reward.LevelForXP(p.TotalXP),
		})
	}

	return &model.GetLeaderBoardResponse{LeaderBoard: entries}, nil
}

func (d *leaderBoardDomain) getFromRedis(ctx context.Context, offset, limit int) ([]model.LeaderBoardEntry, error) {
	zs, err := d.redisClient.ZRevRangeWithScores(ctx, common.RedisKeyLeaderboard, offset, limit)
	if err != nil {
		return nil, err
	}

	userIDs := []string{}
	for _, z := range zs {
		if member, ok := z.Member.(string); ok {
			userIDs = append(userIDs, member)
		}
	}

	if len(userIDs) == 0 {
		return nil, nil
	}

	profiles, err := d.profileRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	levels := map[string]int{}
	for _, p := range profiles {
		levels[p.UserID] = reward.LevelForXP(p.TotalXP)
	}

	entries := []model.LeaderBoardEntry{}
	for i, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}

		level, ok := levels[member]
		if !ok {
			level = 1
		}

		entries = append(entries, model.LeaderBoardEntry{
			Rank:       offset + i + 1,
			UserID:     member,
			LifetimeXP: int64(z.Score),
			Level:      level,
		})
	}

	return entries, nil
}
