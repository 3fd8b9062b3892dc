package service

import (
	"context"
	"fmt"

	"starsbot/models"

	log "github.com/sirupsen/logrus"
)

type subscriptionService struct {
	uowFactory UnitOfWorkFactory
	oracle     VerificationOracle
	membership MembershipChecker
}

// NewSubscriptionService creates a new subscription gate. Both the oracle and
// the membership lookups fail open.
func NewSubscriptionService(uowFactory UnitOfWorkFactory, oracle VerificationOracle, membership MembershipChecker) SubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		oracle:     oracle,
		membership: membership,
	}
}

func (s *subscriptionService) CheckAccess(ctx context.Context, userID int64) (bool, error) {
	subscribed, err := s.oracle.CheckSubscription(ctx, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"userID":   userID,
			"fallback": "allow",
			"error":    err,
		}).Warn("Subscription check unavailable")
		subscribed = true
	}
	if !subscribed {
		return false, nil
	}

	missing, err := s.MissingChannels(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (s *subscriptionService) MissingChannels(ctx context.Context, userID int64) ([]*models.Channel, error) {
	channels, err := s.listChannels(ctx)
	if err != nil {
		return nil, err
	}

	var missing []*models.Channel
	for _, channel := range channels {
		member, err := s.membership.IsMember(ctx, channel.ChannelID, userID)
		if err != nil {
			log.WithFields(log.Fields{
				"userID":    userID,
				"channelID": channel.ChannelID,
				"fallback":  "allow",
				"error":     err,
			}).Warn("Channel membership unavailable")
			continue
		}
		if !member {
			missing = append(missing, channel)
		}
	}
	return missing, nil
}

func (s *subscriptionService) listChannels(ctx context.Context) ([]*models.Channel, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	channels, err := uow.ChannelRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list required channels: %w", err)
	}
	return channels, nil
}
