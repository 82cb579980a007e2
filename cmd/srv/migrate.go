package main

import (
	"github.com/questx-lab/rewards/internal/domain/achievement"
	"github.com/questx-lab/rewards/internal/repository"
	"github.com/questx-lab/rewards/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	if n := cctx.Int("rollback"); n > 0 {
		return migration.Rollback(s.ctx, n)
	}

	if err := migration.Migrate(s.ctx); err != nil {
		return err
	}

	return achievement.SeedCatalog(s.ctx, repository.NewAchievementRepository())
}
