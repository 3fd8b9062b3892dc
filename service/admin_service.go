package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"starsbot/models"

	log "github.com/sirupsen/logrus"
)

const (
	// AccountsPageSize is the number of accounts per admin listing page.
	// Each page is a single profile with its freeze/unfreeze/reset buttons.
	AccountsPageSize = 1

	checkCodeAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	checkCodeRandomLen  = 6
	checkCodeMaxRetries = 3
)

type adminService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewAdminService creates a new admin catalog and settings service
func NewAdminService(uowFactory UnitOfWorkFactory) AdminService {
	return &adminService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

func (s *adminService) GetSettings(ctx context.Context) (*models.Settings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func (s *adminService) UpdateSetting(ctx context.Context, key models.SettingKey, value int64) error {
	switch key {
	case models.SettingMinReferrals, models.SettingMinTasks, models.SettingReferralReward:
	default:
		return fmt.Errorf("%w: unknown setting %q", ErrInvalidValue, key)
	}
	if value < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, key)
	}

	err := s.withTx(ctx, func(uow UnitOfWork) error {
		return uow.SettingsRepository().Update(ctx, key, value)
	})
	if err != nil {
		return fmt.Errorf("failed to update setting: %w", err)
	}

	log.WithFields(log.Fields{
		"setting": key,
		"value":   value,
	}).Info("Setting updated")
	return nil
}

func (s *adminService) CreatePromoCode(ctx context.Context, code string, reward, limit int64) (*models.PromoCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code must not be empty", ErrInvalidValue)
	}
	if reward <= 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: reward and limit must be positive", ErrInvalidValue)
	}

	promo := &models.PromoCode{Code: code, Reward: reward, Limit: limit}
	if err := s.withTx(ctx, func(uow UnitOfWork) error {
		return uow.PromoCodeRepository().Create(ctx, promo)
	}); err != nil {
		return nil, err
	}
	return promo, nil
}

func (s *adminService) DeletePromoCode(ctx context.Context, code string) error {
	return s.withTx(ctx, func(uow UnitOfWork) error {
		deleted, err := uow.PromoCodeRepository().Delete(ctx, strings.TrimSpace(code))
		if err != nil {
			return fmt.Errorf("failed to delete promo code: %w", err)
		}
		if !deleted {
			return ErrCodeNotFound
		}
		return nil
	})
}

func (s *adminService) ListPromoCodes(ctx context.Context) ([]*models.PromoCode, error) {
	var promos []*models.PromoCode
	err := s.withTx(ctx, func(uow UnitOfWork) error {
		var err error
		promos, err = uow.PromoCodeRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list promo codes: %w", err)
	}
	return promos, nil
}

// CreateCheck generates a new check voucher code of the form
// CHK-<yyyymmddhhmmss>-<6 random characters>
func (s *adminService) CreateCheck(ctx context.Context, amount, limit int64) (*models.Check, error) {
	if amount <= 0 || limit <= 0 {
		return nil, fmt.Errorf("%w: amount and limit must be positive", ErrInvalidValue)
	}

	for attempt := 0; attempt < checkCodeMaxRetries; attempt++ {
		code, err := s.generateCheckCode()
		if err != nil {
			return nil, err
		}

		check := &models.Check{Code: code, Amount: amount, Limit: limit}
		err = s.withTx(ctx, func(uow UnitOfWork) error {
			return uow.CheckRepository().Create(ctx, check)
		})
		if errors.Is(err, ErrCodeExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return check, nil
	}

	return nil, fmt.Errorf("failed to generate a unique check code: %w", ErrCodeExists)
}

func (s *adminService) generateCheckCode() (string, error) {
	var suffix strings.Builder
	alphabetSize := big.NewInt(int64(len(checkCodeAlphabet)))
	for i := 0; i < checkCodeRandomLen; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to generate check code: %w", err)
		}
		suffix.WriteByte(checkCodeAlphabet[n.Int64()])
	}
	return fmt.Sprintf("CHK-%s-%s", s.now().Format("20060102150405"), suffix.String()), nil
}

func (s *adminService) DeleteCheck(ctx context.Context, code string) error {
	return s.withTx(ctx, func(uow UnitOfWork) error {
		deleted, err := uow.CheckRepository().Delete(ctx, strings.TrimSpace(code))
		if err != nil {
			return fmt.Errorf("failed to delete check: %w", err)
		}
		if !deleted {
			return ErrCodeNotFound
		}
		return nil
	})
}

func (s *adminService) ListChecks(ctx context.Context) ([]*models.Check, error) {
	var checks []*models.Check
	err := s.withTx(ctx, func(uow UnitOfWork) error {
		var err error
		checks, err = uow.CheckRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	return checks, nil
}

func (s *adminService) AddChannel(ctx context.Context, channelID, link string) (*models.Channel, error) {
	channelID, link = strings.TrimSpace(channelID), strings.TrimSpace(link)
	if channelID == "" || link == "" {
		return nil, fmt.Errorf("%w: channel id and link are required", ErrInvalidValue)
	}

	var channel *models.Channel
	err := s.withTx(ctx, func(uow UnitOfWork) error {
		var err error
		channel, err = uow.ChannelRepository().Create(ctx, channelID, link)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add channel: %w", err)
	}
	return channel, nil
}

func (s *adminService) DeleteChannel(ctx context.Context, number int) error {
	return s.withTx(ctx, func(uow UnitOfWork) error {
		channels, err := uow.ChannelRepository().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list channels: %w", err)
		}
		if number < 1 || number > len(channels) {
			return fmt.Errorf("%w: no channel number %d", ErrInvalidValue, number)
		}
		return uow.ChannelRepository().Delete(ctx, channels[number-1].ID)
	})
}

func (s *adminService) ListChannels(ctx context.Context) ([]*models.Channel, error) {
	var channels []*models.Channel
	err := s.withTx(ctx, func(uow UnitOfWork) error {
		var err error
		channels, err = uow.ChannelRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

func (s *adminService) AddCustomTask(ctx context.Context, channelID, link string, reward int64) (*models.CustomTask, error) {
	channelID, link = strings.TrimSpace(channelID), strings.TrimSpace(link)
	if channelID == "" || link == "" {
		return nil, fmt.Errorf("%w: channel id and link are required", ErrInvalidValue)
	}
	if reward <= 0 {
		return nil, fmt.Errorf("%w: reward must be positive", ErrInvalidValue)
	}

	var task *models.CustomTask
	err := s.withTx(ctx, func(uow UnitOfWork) error {
		var err error
		task, err = uow.CustomTaskRepository().Create(ctx, channelID, link, reward)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add task: %w", err)
	}
	return task, nil
}

func (s *adminService) DeleteCustomTask(ctx context.Context, number int) error {
	return s.withTx(ctx, func(uow UnitOfWork) error {
		tasks, err := uow.CustomTaskRepository().List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if number < 1 || number > len(tasks) {
			return fmt.Errorf("%w: no task number %d", ErrInvalidValue, number)
		}
		return uow.CustomTaskRepository().Delete(ctx, tasks[number-1].ID)
	})
}

func (s *adminService) ListCustomTasks(ctx context.Context) ([]*models.CustomTask, error) {
	var tasks []*models.CustomTask
	err := s.withTx(ctx, func(uow UnitOfWork) error {
		var err error
		tasks, err = uow.CustomTaskRepository().List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *adminService) ListAccounts(ctx context.Context, page int) (*models.AccountPage, error) {
	if page < 1 {
		page = 1
	}

	result := &models.AccountPage{Page: page}
	err := s.withTx(ctx, func(uow UnitOfWork) error {
		total, err := uow.AccountRepository().Count(ctx)
		if err != nil {
			return err
		}
		result.Total = total
		result.Pages = int((total + AccountsPageSize - 1) / AccountsPageSize)
		if result.Pages == 0 {
			result.Pages = 1
		}
		if result.Page > result.Pages {
			result.Page = result.Pages
		}

		result.Accounts, err = uow.AccountRepository().List(ctx, AccountsPageSize, (result.Page-1)*AccountsPageSize)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return result, nil
}

// withTx runs fn in a unit of work and commits when it succeeds
func (s *adminService) withTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
