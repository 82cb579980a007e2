package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/rewards/config"
	"github.com/questx-lab/rewards/internal/common"
	"github.com/questx-lab/rewards/internal/domain"
	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/domain/ledger"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/pkg/idutil"
	"github.com/questx-lab/rewards/pkg/kafka"
	"github.com/questx-lab/rewards/pkg/logger"
	"github.com/questx-lab/rewards/pkg/pubsub"
	"github.com/questx-lab/rewards/pkg/router"
	"github.com/questx-lab/rewards/pkg/storage"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/questx-lab/rewards/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient xredis.Client
	publisher   pubsub.Publisher
	storage     storage.Storage

	profileRepo     repository.RewardProfileRepository
	xpTxRepo        repository.XPTransactionRepository
	achievementRepo repository.AchievementRepository
	receiptRepo     repository.AwardReceiptRepository
	pendingJobRepo  repository.PendingJobRepository

	achievementManager *achievement.Manager
	ledger             *ledger.Ledger

	xpDomain          domain.XPDomain
	redemptionDomain  domain.RedemptionDomain
	achievementDomain domain.AchievementDomain
	leaderBoardDomain domain.LeaderBoardDomain
	purchaseDomain    domain.PurchaseDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(context.Background(), cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

// withSignal returns a context cancelled on SIGINT or SIGTERM.
func (s *srv) withSignal() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
}

func (s *srv) newDatabase() (*gorm.DB, error) {
	cfg := xcontext.Configs(s.ctx).Database

	logLevel := gormlogger.Error
	switch cfg.LogLevel {
	case "silent":
		logLevel = gormlogger.Silent
	case "warn":
		logLevel = gormlogger.Warn
	case "info":
		logLevel = gormlogger.Info
	}

	return gorm.Open(mysql.New(mysql.Config{
		DSN:                       cfg.ConnectionString(),
		DefaultStringSize:         255,
		DisableDatetimePrecision:  false,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
}

func (s *srv) loadDatabase() error {
	db, err := s.newDatabase()
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithDB(s.ctx, db)
	return nil
}

func (s *srv) loadRedisClient() error {
	if !xcontext.Configs(s.ctx).Redis.Enable {
		xcontext.Logger(s.ctx).Warnf("Redis is disabled, use in-process locks and database leaderboard")
		return nil
	}

	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		return err
	}

	s.redisClient = client
	return nil
}

func (s *srv) loadPublisher() error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enable {
		return nil
	}

	publisher, err := kafka.NewPublisher(cfg.ClientID, cfg.Addr)
	if err != nil {
		return err
	}

	s.publisher = publisher
	return nil
}

func (s *srv) loadStorage() error {
	cfg := xcontext.Configs(s.ctx).Storage
	if !cfg.Enable {
		return nil
	}

	s3, err := storage.NewS3Storage(cfg)
	if err != nil {
		return err
	}

	s.storage = s3
	return nil
}

func (s *srv) loadRepos() {
	s.profileRepo = repository.NewRewardProfileRepository()
	s.xpTxRepo = repository.NewXPTransactionRepository()
	s.achievementRepo = repository.NewAchievementRepository()
	s.receiptRepo = repository.NewAwardReceiptRepository()
	s.pendingJobRepo = repository.NewPendingJobRepository()
}

func (s *srv) loadLedger() error {
	cfg := xcontext.Configs(s.ctx)

	idGenerator, err := idutil.NewSnowflakeGenerator(cfg.Reward.NodeID)
	if err != nil {
		return err
	}

	var locker common.UserLocker
	if s.redisClient != nil {
		locker = common.NewRedisLocker(s.redisClient, cfg.Redis.LockTTL, cfg.Redis.LockWait)
	} else {
		locker = common.NewLocalLocker(cfg.Redis.LockWait)
	}

	s.achievementManager = achievement.NewManager(
		s.achievementRepo, s.xpTxRepo, idGenerator, achievement.DefaultScanners(s.xpTxRepo)...)

	opts := []ledger.Option{}
	if s.publisher != nil {
		opts = append(opts, ledger.WithPublisher(s.publisher))
	}
	if s.redisClient != nil {
		opts = append(opts, ledger.WithLeaderboard(s.redisClient))
	}

	s.ledger = ledger.New(
		s.profileRepo,
		s.xpTxRepo,
		s.receiptRepo,
		s.pendingJobRepo,
		s.achievementManager,
		locker,
		idGenerator,
		opts...,
	)

	return nil
}

func (s *srv) loadDomains() {
	s.xpDomain = domain.NewXPDomain(s.ledger, s.profileRepo, s.xpTxRepo, s.achievementManager)
	s.redemptionDomain = domain.NewRedemptionDomain(s.ledger, s.profileRepo)
	s.achievementDomain = domain.NewAchievementDomain(s.achievementRepo)
	s.leaderBoardDomain = domain.NewLeaderBoardDomain(s.profileRepo, s.redisClient)
	s.purchaseDomain = domain.NewPurchaseDomain(s.ledger, s.pendingJobRepo)
}

// loadCore loads everything needed to write the ledger.
func (s *srv) loadCore() error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	s.loadRepos()
	return s.loadLedger()
}
