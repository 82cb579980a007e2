package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/pkg/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func insertLeaderboardProfiles(ctx context.Context) {
	testutil.InsertProfile(ctx, &entity.UserRewardProfile{
		UserID: testutil.User1, TotalXP: 300, LifetimeXP: 1300, CurrentLevel: 3,
	})
	testutil.InsertProfile(ctx, &entity.UserRewardProfile{
		UserID: testutil.User2, TotalXP: 2000, LifetimeXP: 2000, CurrentLevel: 6,
	})
	testutil.InsertProfile(ctx, &entity.UserRewardProfile{
		UserID: testutil.User3, TotalXP: 50, LifetimeXP: 50, CurrentLevel: 1,
	})
}

func Test_leaderBoardDomain_Database(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	insertLeaderboardProfiles(ctx)

	d := NewLeaderBoardDomain(s.profileRepo, nil)
	resp, err := d.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{})
	require.NoError(t, err)
	require.Equal(t, []model.LeaderBoardEntry{
		{Rank: 1, UserID: testutil.User2, LifetimeXP: 2000, Level: 6},
		{Rank: 2, UserID: testutil.User1, LifetimeXP: 1300, Level: 3},
		{Rank: 3, UserID: testutil.User3, LifetimeXP: 50, Level: 1},
	}, resp.LeaderBoard)

	resp, err = d.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, resp.LeaderBoard, 1)
	require.Equal(t, 2, resp.LeaderBoard[0].Rank)
	require.Equal(t, testutil.User1, resp.LeaderBoard[0].UserID)
}

func Test_leaderBoardDomain_Redis(t *testing.T) {
	ctx := testutil.MockContext()
	s := newSuite(t, ctx)
	insertLeaderboardProfiles(ctx)

	redisClient := &testutil.MockRedisClient{
		ZRevRangeWithScoresFunc: func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
			require.Equal(t, common.RedisKeyLeaderboard, key)
			return []redis.Z{
				{Member: testutil.User2, Score: 2000},
				{Member: testutil.User1, Score: 1300},
			}, nil
		},
	}

	d := NewLeaderBoardDomain(s.profileRepo, redisClient)
	resp, err := d.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{})
	require.NoError(t, err)
	require.Equal(t, []model.LeaderBoardEntry{
		{Rank: 1, UserID: testutil.User2, LifetimeXP: 2000, Level: 6},
		{Rank: 2, UserID: testutil.User1, LifetimeXP: 1300, Level: 3},
	}, resp.LeaderBoard)

	// A redis failure falls back to the database.
	redisClient.ZRevRangeWithScoresFunc = func(context.Context, string, int, int) ([]redis.Z, error) {
		return nil, errors.New("connection refused")
	}
	resp, err = d.GetLeaderBoard(ctx, &model.GetLeaderBoardRequest{})
	require.NoError(t, err)
	require.Len(t, resp.LeaderBoard, 3)
}
