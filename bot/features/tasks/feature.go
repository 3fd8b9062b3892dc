package tasks

import (
	"starsbot/bot/common"
	"starsbot/service"
)

// Callback prefixes of the task screens
const (
	PrefixPage        = "tasks_"
	PrefixCheckTask   = "check_task_"
	PrefixCheckCustom = "check_custom_"
)

// Feature lists sponsor and custom tasks and verifies them
type Feature struct {
	sender common.Sender
	tasks  service.TaskService
}

func New(sender common.Sender, tasks service.TaskService) *Feature {
	return &Feature{
		sender: sender,
		tasks:  tasks,
	}
}
