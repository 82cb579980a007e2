package main

import (
	"errors"

	"github.com/questx-lab/rewards/pkg/kafka"
	"github.com/questx-lab/rewards/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSubscriber(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enable {
		return errors.New("kafka is disabled, the subscriber has nothing to consume")
	}

	if err := s.loadCore(); err != nil {
		return err
	}

	s.loadDomains()

	subscriber, err := kafka.NewSubscriber(
		cfg.GroupID,
		cfg.Addr,
		[]string{cfg.PurchaseTopic},
		s.purchaseDomain.Subscribe,
	)
	if err != nil {
		return err
	}

	ctx, stop := s.withSignal()
	defer stop()

	xcontext.Logger(s.ctx).Infof("Subscribed to topic %s", cfg.PurchaseTopic)
	subscriber.Subscribe(ctx)

	return subscriber.Stop(s.ctx)
}
