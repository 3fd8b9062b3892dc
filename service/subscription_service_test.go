package service

import (
	"context"
	"errors"
	"testing"

	"starsbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionService_CheckAccess(t *testing.T) {
	ctx := context.Background()
	channels := []*models.Channel{
		{ID: 1, ChannelID: "@news", Link: "https://t.me/news"},
		{ID: 2, ChannelID: "-1001234", Link: "https://t.me/+invite"},
	}

	t.Run("not subscribed at oracle", func(t *testing.T) {
		m := newTestMocks()
		m.Oracle.On("CheckSubscription", ctx, testUserID).Return(false, nil)

		svc := NewSubscriptionService(m.Factory, m.Oracle, m.Membership)
		allowed, err := svc.CheckAccess(ctx, testUserID)

		require.NoError(t, err)
		assert.False(t, allowed)
		m.Channels.AssertNotCalled(t, "List", mock.Anything)
	})

	t.Run("oracle failure allows", func(t *testing.T) {
		m := newTestMocks()
		m.Oracle.On("CheckSubscription", ctx, testUserID).Return(false, errors.New("connection refused"))
		m.Channels.On("List", ctx).Return([]*models.Channel{}, nil)

		svc := NewSubscriptionService(m.Factory, m.Oracle, m.Membership)
		allowed, err := svc.CheckAccess(ctx, testUserID)

		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("missing required channel denies", func(t *testing.T) {
		m := newTestMocks()
		m.Oracle.On("CheckSubscription", ctx, testUserID).Return(true, nil)
		m.Channels.On("List", ctx).Return(channels, nil)
		m.Membership.On("IsMember", ctx, "@news", testUserID).Return(true, nil)
		m.Membership.On("IsMember", ctx, "-1001234", testUserID).Return(false, nil)

		svc := NewSubscriptionService(m.Factory, m.Oracle, m.Membership)
		allowed, err := svc.CheckAccess(ctx, testUserID)

		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("membership failure allows", func(t *testing.T) {
		m := newTestMocks()
		m.Oracle.On("CheckSubscription", ctx, testUserID).Return(true, nil)
		m.Channels.On("List", ctx).Return(channels, nil)
		m.Membership.On("IsMember", ctx, "@news", testUserID).Return(true, nil)
		m.Membership.On("IsMember", ctx, "-1001234", testUserID).Return(false, errors.New("bot is not an admin"))

		svc := NewSubscriptionService(m.Factory, m.Oracle, m.Membership)
		allowed, err := svc.CheckAccess(ctx, testUserID)

		require.NoError(t, err)
		assert.True(t, allowed)
	})
}

func TestSubscriptionService_MissingChannels(t *testing.T) {
	ctx := context.Background()
	m := newTestMocks()
	m.Channels.On("List", ctx).Return([]*models.Channel{
		{ID: 1, ChannelID: "@a"},
		{ID: 2, ChannelID: "@b"},
		{ID: 3, ChannelID: "@c"},
	}, nil)
	m.Membership.On("IsMember", ctx, "@a", testUserID).Return(false, nil)
	m.Membership.On("IsMember", ctx, "@b", testUserID).Return(true, nil)
	m.Membership.On("IsMember", ctx, "@c", testUserID).Return(false, nil)

	svc := NewSubscriptionService(m.Factory, m.Oracle, m.Membership)
	missing, err := svc.MissingChannels(ctx, testUserID)

	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "@a", missing[0].ChannelID)
	assert.Equal(t, "@c", missing[1].ChannelID)
}
