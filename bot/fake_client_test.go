package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// fakeClient records everything the bot sends
type fakeClient struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requests  []tgbotapi.Chattable
	nextID    int
	sendErr   map[int64]error
	member    tgbotapi.ChatMember
	memberErr error
	lastChat  tgbotapi.GetChatMemberConfig
	updates   chan tgbotapi.Update
	stopped   bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		nextID:  100,
		sendErr: make(map[int64]error),
		updates: make(chan tgbotapi.Update, 10),
	}
}

func (c *fakeClient) Send(ch tgbotapi.Chattable) (tgbotapi.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg, ok := ch.(tgbotapi.MessageConfig); ok {
		if err := c.sendErr[msg.ChatID]; err != nil {
			return tgbotapi.Message{}, err
		}
	}
	c.sent = append(c.sent, ch)
	c.nextID++
	return tgbotapi.Message{MessageID: c.nextID}, nil
}

func (c *fakeClient) Request(ch tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, ch)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (c *fakeClient) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastChat = config
	return c.member, c.memberErr
}

func (c *fakeClient) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.updates
}

func (c *fakeClient) StopReceivingUpdates() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
}

// messages returns the new messages sent to chatID
func (c *fakeClient) messages(chatID int64) []tgbotapi.MessageConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, ch := range c.sent {
		if msg, ok := ch.(tgbotapi.MessageConfig); ok && msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out
}

// edits returns the message edits made in chatID
func (c *fakeClient) edits(chatID int64) []tgbotapi.EditMessageTextConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, ch := range c.sent {
		if edit, ok := ch.(tgbotapi.EditMessageTextConfig); ok && edit.ChatID == chatID {
			out = append(out, edit)
		}
	}
	return out
}

// callbackAnswers returns the texts of answered callbacks
func (c *fakeClient) callbackAnswers() []tgbotapi.CallbackConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, ch := range c.requests {
		if answer, ok := ch.(tgbotapi.CallbackConfig); ok {
			out = append(out, answer)
		}
	}
	return out
}
