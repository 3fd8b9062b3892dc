package dialog

import "time"

// Step is the state of an admin dialog
type Step string

const (
	StepAddChannelID   Step = "add_channel_id"
	StepAddChannelLink Step = "add_channel_link"
	StepDeleteChannel  Step = "delete_channel"

	StepAddTaskChannel Step = "add_task_channel"
	StepAddTaskLink    Step = "add_task_link"
	StepAddTaskReward  Step = "add_task_reward"
	StepDeleteTask     Step = "delete_task"

	StepSetMinReferrals   Step = "set_min_referrals"
	StepSetMinTasks       Step = "set_min_tasks"
	StepSetReferralReward Step = "set_referral_reward"

	StepAddPromoCode   Step = "add_promo_code"
	StepAddPromoReward Step = "add_promo_reward"
	StepAddPromoLimit  Step = "add_promo_limit"
	StepDeletePromo    Step = "delete_promo"

	StepFreezeUser   Step = "freeze_user"
	StepUnfreezeUser Step = "unfreeze_user"
	StepResetUser    Step = "reset_user"

	StepAddCheckAmount Step = "add_check_amount"
	StepAddCheckLimit  Step = "add_check_limit"
	StepDeleteCheck    Step = "delete_check"
)

// Keys of the partial data collected across steps
const (
	keyChannelID = "channel_id"
	keyLink      = "link"
	keyCode      = "code"
	keyReward    = "reward"
	keyAmount    = "amount"
)

// Session is the in-progress dialog of one admin
type Session struct {
	AdminID   int64             `json:"admin_id"`
	Step      Step              `json:"step"`
	Data      map[string]string `json:"data,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func newSession(adminID int64, step Step, now time.Time) *Session {
	return &Session{
		AdminID:   adminID,
		Step:      step,
		Data:      make(map[string]string),
		UpdatedAt: now,
	}
}

func (s *Session) set(key, value string) {
	if s.Data == nil {
		s.Data = make(map[string]string)
	}
	s.Data[key] = value
}
