package main

import (
	"github.com/questx-lab/rewards/internal/domain/cron"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	if err := s.loadCore(); err != nil {
		return err
	}

	if err := s.loadStorage(); err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx).Cron
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewRetryPendingJobsCronJob(
		s.pendingJobRepo, s.ledger, cfg.PendingJobInterval))
	cronJobManager.Register(cron.NewReconcileLedgerCronJob(
		s.profileRepo, s.xpTxRepo, s.storage, cfg.ReconcileInterval))

	ctx, stop := s.withSignal()
	defer stop()

	go func() {
		<-ctx.Done()
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(s.ctx)
	return nil
}
