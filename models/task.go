package models

import (
	"strconv"
	"time"
)

// TaskStatus is the verification state reported by the task oracle
type TaskStatus string

const (
	TaskStatusComplete    TaskStatus = "complete"
	TaskStatusIncomplete  TaskStatus = "incomplete"
	TaskStatusWaiting     TaskStatus = "waiting"
	TaskStatusAbort       TaskStatus = "abort"
	TaskStatusUnavailable TaskStatus = "unavailable"
	TaskStatusUnknown     TaskStatus = "unknown"
)

// ParseTaskStatus maps an oracle response onto a known status.
// Anything unrecognised becomes TaskStatusUnknown.
func ParseTaskStatus(raw string) TaskStatus {
	switch status := TaskStatus(raw); status {
	case TaskStatusComplete, TaskStatusIncomplete, TaskStatusWaiting, TaskStatusAbort, TaskStatusUnavailable:
		return status
	default:
		return TaskStatusUnknown
	}
}

// SponsorTask is a task offered by the oracle
type SponsorTask struct {
	Signature   string `json:"signature"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int64  `json:"reward"`
}

// TaskCheckResult is the outcome of verifying a sponsor or custom task
type TaskCheckResult struct {
	Status            TaskStatus
	Reward            int64
	NewBalance        int64
	Rewarded          bool
	ReferralConfirmed bool
}

// Channel is a chat the user must join before using the bot
type Channel struct {
	ID        int64     `db:"id"`
	ChannelID string    `db:"channel_id"`
	Link      string    `db:"link"`
	CreatedAt time.Time `db:"created_at"`
}

// CustomTask is an admin defined "join this channel" task
type CustomTask struct {
	ID        int64     `db:"id"`
	ChannelID string    `db:"channel_id"`
	Link      string    `db:"link"`
	Reward    int64     `db:"reward"`
	CreatedAt time.Time `db:"created_at"`
}

// Signature returns the idempotence key used when rewarding the task
func (t *CustomTask) Signature() string {
	return "custom:" + strconv.FormatInt(t.ID, 10)
}
