package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"starsbot/events"
	"starsbot/models"
)

type redemptionService struct {
	uowFactory UnitOfWorkFactory
}

// NewRedemptionService creates a new promo code and check redemption service
func NewRedemptionService(uowFactory UnitOfWorkFactory) RedemptionService {
	return &redemptionService{
		uowFactory: uowFactory,
	}
}

// RedeemPromo activates a promo code. The code row is locked before the
// account row.
func (s *redemptionService) RedeemPromo(ctx context.Context, userID int64, code string) (*models.RedemptionResult, error) {
	code = strings.TrimSpace(code)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	promo, err := uow.PromoCodeRepository().GetForUpdate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to lock promo code: %w", err)
	}
	if promo == nil {
		return nil, ErrCodeNotFound
	}
	if promo.RedeemedBy(userID) {
		return nil, ErrAlreadyRedeemed
	}
	if promo.Exhausted() {
		return nil, ErrLimitExhausted
	}

	if _, err := lockActiveAccount(ctx, uow, userID); err != nil {
		return nil, err
	}

	if err := uow.PromoCodeRepository().AddRedemption(ctx, promo.Code, userID); err != nil {
		return nil, fmt.Errorf("failed to record promo redemption: %w", err)
	}
	if err := uow.AccountRepository().AddUsedPromoCode(ctx, userID, promo.Code); err != nil {
		return nil, fmt.Errorf("failed to record used promo code: %w", err)
	}

	result, err := creditRedemption(ctx, uow, userID, models.CodeKindPromo, promo.Code, promo.Reward, models.TransactionTypePromoRedeem)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// RedeemCheck activates a check voucher. The check row is locked before the
// account row.
func (s *redemptionService) RedeemCheck(ctx context.Context, userID int64, code string) (*models.RedemptionResult, error) {
	code = strings.TrimSpace(code)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	check, err := uow.CheckRepository().GetForUpdate(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to lock check: %w", err)
	}
	if check == nil {
		return nil, ErrCodeNotFound
	}
	if check.RedeemedBy(userID) {
		return nil, ErrAlreadyRedeemed
	}
	if check.Exhausted() {
		return nil, ErrLimitExhausted
	}

	if _, err := lockActiveAccount(ctx, uow, userID); err != nil {
		return nil, err
	}

	if err := uow.CheckRepository().AddRedemption(ctx, check.Code, userID); err != nil {
		return nil, fmt.Errorf("failed to record check redemption: %w", err)
	}

	result, err := creditRedemption(ctx, uow, userID, models.CodeKindCheck, check.Code, check.Amount, models.TransactionTypeCheckRedeem)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *redemptionService) Redeem(ctx context.Context, userID int64, text string) (*models.RedemptionResult, error) {
	result, err := s.RedeemCheck(ctx, userID, text)
	if errors.Is(err, ErrCodeNotFound) {
		return s.RedeemPromo(ctx, userID, text)
	}
	return result, err
}

func (s *redemptionService) ResolveStartParameter(ctx context.Context, param string) (*models.StartParameter, error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return &models.StartParameter{Kind: models.StartParameterNone}, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	check, err := uow.CheckRepository().GetByCode(ctx, param)
	if err != nil {
		return nil, fmt.Errorf("failed to look up check: %w", err)
	}
	if check != nil {
		return &models.StartParameter{Kind: models.StartParameterCheck, CheckCode: check.Code}, nil
	}

	if referrerID, err := strconv.ParseInt(param, 10, 64); err == nil && referrerID > 0 {
		return &models.StartParameter{Kind: models.StartParameterReferrer, ReferrerID: referrerID}, nil
	}

	return &models.StartParameter{Kind: models.StartParameterNone}, nil
}

func creditRedemption(ctx context.Context, uow UnitOfWork, userID int64, kind models.CodeKind, code string, amount int64, txType models.TransactionType) (*models.RedemptionResult, error) {
	newBalance, err := applyBalanceChange(ctx, uow, userID, amount, txType, map[string]any{"code": code})
	if err != nil {
		return nil, fmt.Errorf("failed to credit redemption: %w", err)
	}

	uow.EventBus().Publish(events.CodeRedeemedEvent{
		UserID: userID,
		Kind:   kind,
		Code:   code,
		Amount: amount,
	})

	return &models.RedemptionResult{
		Kind:       kind,
		Code:       code,
		Amount:     amount,
		NewBalance: newBalance,
	}, nil
}
