package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"starsbot/bot/common"
	"starsbot/bot/features/admin"
	"starsbot/bot/features/leaderboard"
	"starsbot/bot/features/menu"
	"starsbot/bot/features/profile"
	"starsbot/bot/features/redeem"
	"starsbot/bot/features/slots"
	"starsbot/bot/features/tasks"
	"starsbot/bot/features/withdraw"
	"starsbot/dialog"
	"starsbot/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Config holds bot configuration
type Config struct {
	BotUsername string
	AdminID     int64
}

// Services are the domain services the handlers call
type Services struct {
	Ledger       service.LedgerService
	Redemption   service.RedemptionService
	Tasks        service.TaskService
	Withdrawals  service.WithdrawalService
	Gambling     service.GamblingService
	Subscription service.SubscriptionService
	Admin        service.AdminService
	Stats        service.StatsService
}

// Client is the Telegram API surface the bot runs on. *tgbotapi.BotAPI
// satisfies it.
type Client interface {
	common.Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	config Config
	client Client
	wg     sync.WaitGroup

	menu        *menu.Feature
	profile     *profile.Feature
	tasks       *tasks.Feature
	redeem      *redeem.Feature
	slots       *slots.Feature
	withdraw    *withdraw.Feature
	leaderboard *leaderboard.Feature
	admin       *admin.Feature
}

// Connect authorizes against the Telegram API
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram client: %w", err)
	}
	log.WithField("username", api.Self.UserName).Info("Telegram bot authorized")
	return api, nil
}

func New(config Config, client Client, services Services, dialogs *dialog.Machine) *Bot {
	return &Bot{
		config:      config,
		client:      client,
		menu:        menu.New(client, services.Ledger, services.Redemption, services.Subscription),
		profile:     profile.New(client, services.Ledger, services.Admin, config.BotUsername),
		tasks:       tasks.New(client, services.Tasks),
		redeem:      redeem.New(client, services.Redemption),
		slots:       slots.New(client, services.Ledger, services.Gambling),
		withdraw:    withdraw.New(client, services.Ledger, services.Withdrawals, config.AdminID),
		leaderboard: leaderboard.New(client, services.Stats),
		admin:       admin.New(client, services.Admin, services.Ledger, services.Stats, dialogs, config.AdminID),
	}
}

// Run processes updates until ctx is cancelled. Every update is handled on
// its own goroutine with a context that outlives ctx, so a mutation already
// in flight is never aborted by shutdown.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.registerCommands(); err != nil {
		log.WithError(err).Warn("Failed to register bot commands")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.client.GetUpdatesChan(u)
	log.Info("Starting bot update loop")

	handlerCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			b.stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.wait()
				return nil
			}
			b.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer b.wg.Done()
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(log.Fields{
							"updateID": update.UpdateID,
							"panic":    r,
						}).Error("Recovered from panic while handling update")
					}
				}()
				b.handleUpdate(handlerCtx, update)
			}(update)
		}
	}
}

func (b *Bot) stop() {
	log.Info("Stopping bot update loop")
	b.client.StopReceivingUpdates()
	b.wait()
}

// wait blocks until in-flight handlers finish or the shutdown timeout passes
func (b *Bot) wait() {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("Bot stopped gracefully")
	case <-time.After(shutdownTimeout):
		log.Warn("Bot shutdown timeout, some handlers may not have completed")
	}
}
