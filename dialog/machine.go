package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"starsbot/models"
	"starsbot/service"

	log "github.com/sirupsen/logrus"
)

var prompts = map[Step]string{
	StepAddChannelID:      "📢 Send the channel id (for example @channel or -1001234567890)",
	StepAddChannelLink:    "🔗 Send the invite link of the channel",
	StepDeleteChannel:     "🗑 Send the number of the channel to delete",
	StepAddTaskChannel:    "📢 Send the channel id the user must join",
	StepAddTaskLink:       "🔗 Send the invite link of the channel",
	StepAddTaskReward:     "⭐️ Send the task reward in stars",
	StepDeleteTask:        "🗑 Send the number of the task to delete",
	StepSetMinReferrals:   "👥 Send the minimum number of referrals for a withdrawal",
	StepSetMinTasks:       "📝 Send the minimum number of completed tasks for a withdrawal",
	StepSetReferralReward: "🎁 Send the referral reward in stars",
	StepAddPromoCode:      "🎟 Send the promo code text",
	StepAddPromoReward:    "⭐️ Send the promo code reward in stars",
	StepAddPromoLimit:     "🔢 Send the number of activations",
	StepDeletePromo:       "🗑 Send the promo code to delete",
	StepFreezeUser:        "🧊 Send the user id to freeze",
	StepUnfreezeUser:      "🔥 Send the user id to unfreeze",
	StepResetUser:         "♻️ Send the user id to reset",
	StepAddCheckAmount:    "⭐️ Send the check amount in stars",
	StepAddCheckLimit:     "🔢 Send the number of activations",
	StepDeleteCheck:       "🗑 Send the check code to delete",
}

// entrySteps are the steps a dialog may be started at
var entrySteps = map[Step]bool{
	StepAddChannelID:      true,
	StepDeleteChannel:     true,
	StepAddTaskChannel:    true,
	StepDeleteTask:        true,
	StepSetMinReferrals:   true,
	StepSetMinTasks:       true,
	StepSetReferralReward: true,
	StepAddPromoCode:      true,
	StepDeletePromo:       true,
	StepFreezeUser:        true,
	StepUnfreezeUser:      true,
	StepResetUser:         true,
	StepAddCheckAmount:    true,
	StepDeleteCheck:       true,
}

const (
	msgNotANumber  = "❌ Please send a whole number."
	msgNotPositive = "❌ The number must be greater than zero."
	msgNegative    = "❌ The number can't be negative."
	msgEmpty       = "❌ The value can't be empty."
	msgCancelled   = "❌ Action cancelled."
)

// Machine drives multi step admin input
type Machine struct {
	store       Store
	admin       service.AdminService
	ledger      service.LedgerService
	botUsername string
	now         func() time.Time
}

// NewMachine creates a dialog machine. botUsername is used for check deep links.
func NewMachine(store Store, admin service.AdminService, ledger service.LedgerService, botUsername string) *Machine {
	return &Machine{
		store:       store,
		admin:       admin,
		ledger:      ledger,
		botUsername: botUsername,
		now:         time.Now,
	}
}

// Start opens a dialog at step, replacing any active one, and returns its prompt
func (m *Machine) Start(ctx context.Context, adminID int64, step Step) (string, error) {
	if !entrySteps[step] {
		return "", fmt.Errorf("unknown dialog step %q", step)
	}
	if err := m.store.Save(ctx, newSession(adminID, step, m.now())); err != nil {
		return "", err
	}
	return prompts[step], nil
}

// Active reports whether the admin has a dialog open
func (m *Machine) Active(ctx context.Context, adminID int64) (bool, error) {
	session, err := m.store.Load(ctx, adminID)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// Cancel drops the active dialog
func (m *Machine) Cancel(ctx context.Context, adminID int64) (string, error) {
	if err := m.store.Delete(ctx, adminID); err != nil {
		return "", err
	}
	return msgCancelled, nil
}

// Handle feeds text into the active dialog. handled is false when the admin
// has no dialog open. A returned error from a finished step is meant for the
// admin; the session is already closed by then. Values the service rejects as
// invalid keep the session on the same step instead.
func (m *Machine) Handle(ctx context.Context, adminID int64, text string) (reply string, handled bool, err error) {
	session, err := m.store.Load(ctx, adminID)
	if err != nil {
		return "", false, err
	}
	if session == nil {
		return "", false, nil
	}

	log.WithFields(log.Fields{
		"adminID": adminID,
		"step":    session.Step,
	}).Debug("Advancing admin dialog")

	reply, err = m.advance(ctx, session, strings.TrimSpace(text))
	return reply, true, err
}

func (m *Machine) advance(ctx context.Context, s *Session, text string) (string, error) {
	if text == "" {
		return m.retry(ctx, s, msgEmpty)
	}

	switch s.Step {
	case StepAddChannelID:
		s.set(keyChannelID, text)
		return m.next(ctx, s, StepAddChannelLink)
	case StepAddChannelLink:
		return m.finish(ctx, s, func() (string, error) {
			channel, err := m.admin.AddChannel(ctx, s.Data[keyChannelID], text)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Channel %s added", channel.ChannelID), nil
		})
	case StepDeleteChannel:
		return m.withPositive(ctx, s, text, func(n int64) (string, error) {
			if err := m.admin.DeleteChannel(ctx, int(n)); err != nil {
				return "", err
			}
			return "✅ Channel deleted", nil
		})

	case StepAddTaskChannel:
		s.set(keyChannelID, text)
		return m.next(ctx, s, StepAddTaskLink)
	case StepAddTaskLink:
		s.set(keyLink, text)
		return m.next(ctx, s, StepAddTaskReward)
	case StepAddTaskReward:
		return m.withPositive(ctx, s, text, func(reward int64) (string, error) {
			task, err := m.admin.AddCustomTask(ctx, s.Data[keyChannelID], s.Data[keyLink], reward)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Task #%d added with a reward of %d ⭐️", task.ID, task.Reward), nil
		})
	case StepDeleteTask:
		return m.withPositive(ctx, s, text, func(n int64) (string, error) {
			if err := m.admin.DeleteCustomTask(ctx, int(n)); err != nil {
				return "", err
			}
			return "✅ Task deleted", nil
		})

	case StepSetMinReferrals:
		return m.setting(ctx, s, text, models.SettingMinReferrals)
	case StepSetMinTasks:
		return m.setting(ctx, s, text, models.SettingMinTasks)
	case StepSetReferralReward:
		return m.setting(ctx, s, text, models.SettingReferralReward)

	case StepAddPromoCode:
		s.set(keyCode, text)
		return m.next(ctx, s, StepAddPromoReward)
	case StepAddPromoReward:
		reward, problem := parsePositive(text)
		if problem != "" {
			return m.retry(ctx, s, problem)
		}
		s.set(keyReward, strconv.FormatInt(reward, 10))
		return m.next(ctx, s, StepAddPromoLimit)
	case StepAddPromoLimit:
		return m.withPositive(ctx, s, text, func(limit int64) (string, error) {
			reward, _ := parseNumber(s.Data[keyReward])
			promo, err := m.admin.CreatePromoCode(ctx, s.Data[keyCode], reward, limit)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Promo code %s created: %d ⭐️, %d activations", promo.Code, promo.Reward, promo.Limit), nil
		})
	case StepDeletePromo:
		return m.finish(ctx, s, func() (string, error) {
			if err := m.admin.DeletePromoCode(ctx, text); err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Promo code %s deleted", text), nil
		})

	case StepFreezeUser:
		return m.withPositive(ctx, s, text, func(userID int64) (string, error) {
			if err := m.ledger.Freeze(ctx, userID); err != nil {
				return "", err
			}
			return fmt.Sprintf("🧊 User %d frozen", userID), nil
		})
	case StepUnfreezeUser:
		return m.withPositive(ctx, s, text, func(userID int64) (string, error) {
			if err := m.ledger.Unfreeze(ctx, userID); err != nil {
				return "", err
			}
			return fmt.Sprintf("🔥 User %d unfrozen", userID), nil
		})
	case StepResetUser:
		return m.withPositive(ctx, s, text, func(userID int64) (string, error) {
			if err := m.ledger.Reset(ctx, userID); err != nil {
				return "", err
			}
			return fmt.Sprintf("♻️ User %d reset", userID), nil
		})

	case StepAddCheckAmount:
		amount, problem := parsePositive(text)
		if problem != "" {
			return m.retry(ctx, s, problem)
		}
		s.set(keyAmount, strconv.FormatInt(amount, 10))
		return m.next(ctx, s, StepAddCheckLimit)
	case StepAddCheckLimit:
		return m.withPositive(ctx, s, text, func(limit int64) (string, error) {
			amount, _ := parseNumber(s.Data[keyAmount])
			check, err := m.admin.CreateCheck(ctx, amount, limit)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Check created\n\n💫 %d ⭐️, %d activations\n🔗 %s",
				check.Amount, check.Limit, CheckLink(m.botUsername, check.Code)), nil
		})
	case StepDeleteCheck:
		return m.finish(ctx, s, func() (string, error) {
			if err := m.admin.DeleteCheck(ctx, text); err != nil {
				return "", err
			}
			return fmt.Sprintf("✅ Check %s deleted", text), nil
		})
	}

	// Unknown step, e.g. left over from an older release
	if err := m.store.Delete(ctx, s.AdminID); err != nil {
		return "", err
	}
	return msgCancelled, nil
}

// CheckLink is the deep link that activates a check
func CheckLink(botUsername, code string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, code)
}

func (m *Machine) setting(ctx context.Context, s *Session, text string, key models.SettingKey) (string, error) {
	return m.withNumber(ctx, s, text, parseNonNegative, func(value int64) (string, error) {
		if err := m.admin.UpdateSetting(ctx, key, value); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ %s set to %d", key, value), nil
	})
}

// withNumber parses text and finishes the dialog with it, or keeps the
// session on the same step when parse reports a problem
func (m *Machine) withNumber(ctx context.Context, s *Session, text string, parse func(string) (int64, string), action func(int64) (string, error)) (string, error) {
	n, problem := parse(text)
	if problem != "" {
		return m.retry(ctx, s, problem)
	}
	return m.finish(ctx, s, func() (string, error) {
		return action(n)
	})
}

func (m *Machine) withPositive(ctx context.Context, s *Session, text string, action func(int64) (string, error)) (string, error) {
	return m.withNumber(ctx, s, text, parsePositive, action)
}

func (m *Machine) next(ctx context.Context, s *Session, step Step) (string, error) {
	s.Step = step
	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s); err != nil {
		return "", err
	}
	return prompts[step], nil
}

func (m *Machine) retry(ctx context.Context, s *Session, problem string) (string, error) {
	s.UpdatedAt = m.now()
	if err := m.store.Save(ctx, s); err != nil {
		return "", err
	}
	return problem + "\n\n" + prompts[s.Step], nil
}

func (m *Machine) finish(ctx context.Context, s *Session, action func() (string, error)) (string, error) {
	if err := m.store.Delete(ctx, s.AdminID); err != nil {
		return "", err
	}
	reply, err := action()
	if errors.Is(err, service.ErrInvalidValue) {
		return m.retry(ctx, s, "❌ "+err.Error())
	}
	return reply, err
}

func parseNumber(text string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	return n, err == nil
}

// parsePositive returns the number or the message to show the admin
func parsePositive(text string) (int64, string) {
	n, ok := parseNumber(text)
	switch {
	case !ok:
		return 0, msgNotANumber
	case n <= 0:
		return 0, msgNotPositive
	}
	return n, ""
}

func parseNonNegative(text string) (int64, string) {
	n, ok := parseNumber(text)
	switch {
	case !ok:
		return 0, msgNotANumber
	case n < 0:
		return 0, msgNegative
	}
	return n, ""
}
