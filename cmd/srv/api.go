package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/questx-lab/rewards/internal/middleware"
	"github.com/questx-lab/rewards/pkg/prometheus"
	"github.com/questx-lab/rewards/pkg/router"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	if err := s.loadCore(); err != nil {
		return err
	}

	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr:              cfg.Address(),
		Handler:           s.router.Handler(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := s.withSignal()
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot shutdown server: %v", err)
		}
	}()

	xcontext.Logger(s.ctx).Infof("Starting server on %s", cfg.Address())
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Server stopped")
	return nil
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)
	s.router = router.New(xcontext.DB(s.ctx), cfg, xcontext.Logger(s.ctx))
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Handle("/metrics", prometheus.NewHandler())

	// Trusted server-side callers, authenticated with an API key.
	apiKeyRouter := s.router.Branch()
	apiKeyRouter.Before(middleware.NewAuthVerifier().WithAPIKey().Middleware())
	{
		router.POST(apiKeyRouter, "/award", s.xpDomain.Award)
		router.GET(apiKeyRouter, "/getUserProfile", s.xpDomain.GetUserProfile)
	}

	// These following APIs need authentication with only Access Token.
	onlyTokenAuthRouter := s.router.Branch()
	onlyTokenAuthRouter.Before(middleware.NewAuthVerifier().WithAccessToken().Middleware())
	{
		router.POST(onlyTokenAuthRouter, "/trackActivity", s.xpDomain.TrackActivity)
		router.GET(onlyTokenAuthRouter, "/getProfile", s.xpDomain.GetProfile)
		router.GET(onlyTokenAuthRouter, "/getMyTransactions", s.xpDomain.GetMyTransactions)

		router.POST(onlyTokenAuthRouter, "/validateRedemption", s.redemptionDomain.ValidateRedemption)
		router.GET(onlyTokenAuthRouter, "/getRedemptionOptions", s.redemptionDomain.GetRedemptionOptions)
		router.GET(onlyTokenAuthRouter, "/getNearMiss", s.redemptionDomain.GetNearMiss)
	}

	// Public API.
	router.GET(s.router, "/getAchievements", s.achievementDomain.GetAchievements)
	router.GET(s.router, "/getLeaderBoard", s.leaderBoardDomain.GetLeaderBoard)

	// The payment provider authenticates with the signature of the body.
	router.POST(s.router, "/webhook/payment", s.purchaseDomain.PaymentWebhook)
}
