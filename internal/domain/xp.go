package domain

import (
	"context"
	"errors"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/domain/ledger"
	"github.com/questx-lab/rewards/internal/domain/reward"
	"github.com/questx-lab/rewards/internal/entity"
	"github.com/questx-lab/rewards/internal/model"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/dateutil"
	"github.com/questx-lab/rewards/pkg/errorx"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"gorm.io/gorm"
)

type XPDomain interface {
	Award(context.Context, *model.AwardRequest) (*model.AwardResponse, error)
	TrackActivity(context.Context, *model.TrackActivityRequest) (*model.AwardResponse, error)
	GetProfile(context.Context, *model.GetProfileRequest) (*model.GetProfileResponse, error)
	GetUserProfile(context.Context, *model.GetUserProfileRequest) (*model.GetProfileResponse, error)
	GetMyTransactions(context.Context, *model.GetMyTransactionsRequest) (*model.GetMyTransactionsResponse, error)
}

type xpDomain struct {
	ledger             *ledger.Ledger
	profileRepo        repository.RewardProfileRepository
	xpTxRepo           repository.XPTransactionRepository
	achievementManager *achievement.Manager
	now                func() time.Time
}

func NewXPDomain(
	ledger *ledger.Ledger,
	profileRepo repository.RewardProfileRepository,
	xpTxRepo repository.XPTransactionRepository,
	achievementManager *achievement.Manager,
) *xpDomain {
	return &xpDomain{
		ledger:             ledger,
		profileRepo:        profileRepo,
		xpTxRepo:           xpTxRepo,
		achievementManager: achievementManager,
		now:                time.Now,
	}
}

func (d *xpDomain) Award(ctx context.Context, req *model.AwardRequest) (*model.AwardResponse, error) {
	if !xcontext.IsTrustedCaller(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only trusted callers can award xp")
	}

	userID := common.NormalizeUserID(req.UserID)
	if userID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require user_id")
	}

	params := ledger.AwardParams{
		UserID:         userID,
		Kind:           entity.ActivityKind(req.Activity),
		Metadata:       req.Metadata,
		IdempotencyKey: req.IdempotencyKey,
	}

	if params.Kind == entity.ActivityDocumentPurchase {
		info, err := purchaseInfoFromMetadata(req.Metadata)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot decode purchase metadata: %v", err)
			return nil, errorx.New(errorx.BadRequest, "Invalid purchase metadata")
		}
		params.Purchase = &info
	}

	result, err := d.ledger.Award(ctx, params)
	if err != nil {
		return nil, err
	}

	return convertAwardResult(result), nil
}

func (d *xpDomain) TrackActivity(
	ctx context.Context, req *model.TrackActivityRequest,
) (*model.AwardResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Require an access token")
	}

	activity, ok := reward.LookupActivity(entity.ActivityKind(req.Activity))
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Invalid activity %s", req.Activity)
	}

	if !activity.ClientTrackable {
		return nil, errorx.New(errorx.PermissionDenied, "Activity %s cannot be reported by clients", req.Activity)
	}

	result, err := d.ledger.Award(ctx, ledger.AwardParams{
		UserID:         userID,
		Kind:           activity.Kind,
		Metadata:       req.Metadata,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	return convertAwardResult(result), nil
}

func (d *xpDomain) GetProfile(
	ctx context.Context, req *model.GetProfileRequest,
) (*model.GetProfileResponse, error) {
	return d.getProfile(ctx, xcontext.RequestUserID(ctx))
}

func (d *xpDomain) GetUserProfile(
	ctx context.Context, req *model.GetUserProfileRequest,
) (*model.GetProfileResponse, error) {
	if !xcontext.IsTrustedCaller(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only trusted callers can get other profiles")
	}

	userID := common.NormalizeUserID(req.UserID)
	if userID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require user_id")
	}

	return d.getProfile(ctx, userID)
}

// getProfile returns the empty level 1 profile for a user who has never been
// awarded, the profile is created by the first award only.
func (d *xpDomain) getProfile(ctx context.Context, userID string) (*model.GetProfileResponse, error) {
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Require an access token")
	}

	profile, err := d.profileRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storageError(ctx, "Cannot get reward profile: %v", err)
		}

		profile = &entity.UserRewardProfile{UserID: userID, CurrentLevel: 1}
	}

	achievements, err := d.achievementManager.GetUserAchievements(ctx, userID)
	if err != nil {
		return nil, storageError(ctx, "Cannot get user achievements: %v", err)
	}

	today := dateutil.Date(d.now(), xcontext.Configs(ctx).Reward.Location())
	return convertProfile(profile, achievements, today), nil
}

func (d *xpDomain) GetMyTransactions(
	ctx context.Context, req *model.GetMyTransactionsRequest,
) (*model.GetMyTransactionsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Require an access token")
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	offset, limit := common.PaginationParameter(req.Offset, req.Limit, apiCfg.DefaultLimit, apiCfg.MaxLimit)

	txs, err := d.xpTxRepo.GetList(ctx, userID, offset, limit)
	if err != nil {
		return nil, storageError(ctx, "Cannot get xp transactions: %v", err)
	}

	result := []model.XPTransaction{}
	for i := range txs {
		result = append(result, convertXPTransaction(&txs[i]))
	}

	return &model.GetMyTransactionsResponse{Transactions: result}, nil
}

type purchaseMetadata struct {
	ItemCount int  `mapstructure:"item_count"`
	IsBundle  bool `mapstructure:"is_bundle"`
}

// purchaseInfoFromMetadata reads the order size of a purchase award. A
// purchase without metadata is a single item.
func purchaseInfoFromMetadata(metadata map[string]any) (reward.PurchaseInfo, error) {
	m := purchaseMetadata{ItemCount: 1}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &m,
	})
	if err != nil {
		return reward.PurchaseInfo{}, err
	}

	if err := decoder.Decode(metadata); err != nil {
		return reward.PurchaseInfo{}, err
	}

	return reward.PurchaseInfo{ItemCount: m.ItemCount, IsBundle: m.IsBundle}, nil
}
