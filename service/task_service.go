package service

import (
	"context"
	"fmt"

	"starsbot/events"
	"starsbot/models"

	log "github.com/sirupsen/logrus"
)

// TaskListLimit is how many sponsor tasks are requested from the oracle
const TaskListLimit = 10

type taskService struct {
	uowFactory UnitOfWorkFactory
	oracle     VerificationOracle
	membership MembershipChecker
}

// NewTaskService creates a new task verification service
func NewTaskService(uowFactory UnitOfWorkFactory, oracle VerificationOracle, membership MembershipChecker) TaskService {
	return &taskService{
		uowFactory: uowFactory,
		oracle:     oracle,
		membership: membership,
	}
}

func (s *taskService) ListTasks(ctx context.Context, userID int64) ([]models.SponsorTask, error) {
	if err := s.ensureActive(ctx, userID); err != nil {
		return nil, err
	}

	tasks, err := s.oracle.ListTasks(ctx, userID, TaskListLimit)
	if err != nil {
		log.WithFields(log.Fields{
			"userID":   userID,
			"fallback": "no_tasks",
			"error":    err,
		}).Warn("Sponsor task list unavailable")
		return nil, nil
	}
	return tasks, nil
}

// CheckTask verifies a sponsor task and credits its reward once. All oracle
// calls happen before the transaction is opened.
func (s *taskService) CheckTask(ctx context.Context, userID int64, signature string) (*models.TaskCheckResult, error) {
	if err := s.ensureActive(ctx, userID); err != nil {
		return nil, err
	}

	status, err := s.oracle.CheckTaskStatus(ctx, signature)
	if err != nil {
		log.WithFields(log.Fields{
			"userID":    userID,
			"signature": signature,
			"fallback":  "status_unknown",
			"error":     err,
		}).Warn("Task status unavailable")
		status = models.TaskStatusUnknown
	}
	if status != models.TaskStatusComplete {
		return &models.TaskCheckResult{Status: status}, nil
	}

	tasks, err := s.oracle.ListTasks(ctx, userID, TaskListLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	var task *models.SponsorTask
	for i := range tasks {
		if tasks[i].Signature == signature {
			task = &tasks[i]
			break
		}
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	completed, countErr := s.oracle.CompletedTaskCount(ctx, userID)
	if countErr != nil {
		log.WithFields(log.Fields{
			"userID":   userID,
			"fallback": "skip_referral_confirmation",
			"error":    countErr,
		}).Warn("Completed task count unavailable")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := lockActiveAccount(ctx, uow, userID)
	if err != nil {
		return nil, err
	}

	result, err := rewardTask(ctx, uow, userID, signature, task.Reward)
	if err != nil {
		return nil, err
	}

	if countErr == nil {
		confirmed, err := confirmReferral(ctx, uow, account, completed)
		if err != nil {
			return nil, err
		}
		result.ReferralConfirmed = confirmed
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *taskService) ListCustomTasks(ctx context.Context, userID int64) ([]*models.CustomTask, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := checkActive(ctx, uow, userID); err != nil {
		return nil, err
	}

	tasks, err := uow.CustomTaskRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom tasks: %w", err)
	}
	return tasks, nil
}

// CheckCustomTask verifies channel membership for an admin defined task.
// Membership lookup failures fail closed.
func (s *taskService) CheckCustomTask(ctx context.Context, userID int64, taskID int64) (*models.TaskCheckResult, error) {
	task, err := s.loadCustomTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	member, err := s.membership.IsMember(ctx, task.ChannelID, userID)
	if err != nil {
		log.WithFields(log.Fields{
			"userID":    userID,
			"channelID": task.ChannelID,
			"fallback":  "status_unknown",
			"error":     err,
		}).Warn("Channel membership unavailable")
		return &models.TaskCheckResult{Status: models.TaskStatusUnknown}, nil
	}
	if !member {
		return &models.TaskCheckResult{Status: models.TaskStatusIncomplete}, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := lockActiveAccount(ctx, uow, userID); err != nil {
		return nil, err
	}

	result, err := rewardTask(ctx, uow, userID, task.Signature(), task.Reward)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

func (s *taskService) loadCustomTask(ctx context.Context, userID int64, taskID int64) (*models.CustomTask, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := checkActive(ctx, uow, userID); err != nil {
		return nil, err
	}

	task, err := uow.CustomTaskRepository().GetByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get custom task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) ensureActive(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return checkActive(ctx, uow, userID)
}

// checkActive rejects unknown and frozen accounts without taking a lock
func checkActive(ctx context.Context, uow UnitOfWork, userID int64) error {
	account, err := uow.AccountRepository().GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return ErrAccountNotFound
	}
	if account.Frozen {
		return ErrAccountFrozen
	}
	return nil
}

// rewardTask records the task reward key and credits the reward. A key that
// was already recorded fails with ErrTaskAlreadyRewarded.
func rewardTask(ctx context.Context, uow UnitOfWork, userID int64, signature string, reward int64) (*models.TaskCheckResult, error) {
	inserted, err := uow.TaskRewardRepository().Record(ctx, userID, signature, reward)
	if err != nil {
		return nil, fmt.Errorf("failed to record task reward: %w", err)
	}
	if !inserted {
		return nil, ErrTaskAlreadyRewarded
	}

	result := &models.TaskCheckResult{
		Status:   models.TaskStatusComplete,
		Reward:   reward,
		Rewarded: true,
	}

	if reward > 0 {
		newBalance, err := applyBalanceChange(ctx, uow, userID, reward, models.TransactionTypeTaskReward, map[string]any{"signature": signature})
		if err != nil {
			return nil, fmt.Errorf("failed to credit task reward: %w", err)
		}
		result.NewBalance = newBalance
	}

	uow.EventBus().Publish(events.TaskRewardedEvent{
		UserID:    userID,
		Signature: signature,
		Reward:    reward,
	})

	return result, nil
}
