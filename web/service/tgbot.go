package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"quill/logger"

	"github.com/mymmrac/telego"
)

var bot *telego.Bot

// Tgbot mirrors operational notifications (failed logins, contact-form
// submissions) to a Telegram chat when a bot token is configured. Delivery
// is best-effort and never affects request handling.
type Tgbot struct {
	settingService SettingService
}

// Start creates the bot client if Telegram notifications are enabled.
func (t *Tgbot) Start() error {
	enabled, err := t.settingService.GetTgBotEnabled()
	if err != nil || !enabled {
		return err
	}

	token, err := t.settingService.GetTgBotToken()
	if err != nil {
		return err
	}
	if token == "" {
		logger.Warning("telegram notifications enabled but no token configured")
		return nil
	}

	bot, err = telego.NewBot(token)
	if err != nil {
		logger.Warning("failed to create telegram bot:", err)
		bot = nil
		return err
	}
	logger.Info("telegram notifier started")
	return nil
}

// IsRunning reports whether the bot client is up.
func (t *Tgbot) IsRunning() bool {
	return bot != nil
}

// Stop drops the bot client.
func (t *Tgbot) Stop() {
	bot = nil
}

// UserLoginNotify reports a login attempt. Only failures are forwarded
// unless login notifications are switched on.
func (t *Tgbot) UserLoginNotify(email, ip, timeStr string, success bool) {
	if !t.IsRunning() {
		return
	}
	notify, err := t.settingService.GetTgBotLoginNotify()
	if err != nil || !notify {
		return
	}
	if success {
		t.sendToAdmin(fmt.Sprintf("✅ Login\nEmail: %s\nIP: %s\nTime: %s", email, ip, timeStr))
	} else {
		t.sendToAdmin(fmt.Sprintf("❌ Failed login\nEmail: %s\nIP: %s\nTime: %s", email, ip, timeStr))
	}
}

// ContactNotify forwards a contact-form submission summary.
func (t *Tgbot) ContactNotify(name, email, ref string) {
	if !t.IsRunning() {
		return
	}
	t.sendToAdmin(fmt.Sprintf("📨 New contact message\nFrom: %s <%s>\nRef: %s", name, email, ref))
}

// SendReport forwards the daily stats summary.
func (t *Tgbot) SendReport(posts, comments, users int64) {
	if !t.IsRunning() {
		return
	}
	t.sendToAdmin(fmt.Sprintf("📊 Daily report\nPosts: %d\nComments: %d\nUsers: %d", posts, comments, users))
}

func (t *Tgbot) sendToAdmin(msg string) {
	chatIdStr, err := t.settingService.GetTgBotChatId()
	if err != nil || chatIdStr == "" {
		return
	}
	chatId, err := strconv.ParseInt(chatIdStr, 10, 64)
	if err != nil {
		logger.Warning("invalid telegram chat id:", chatIdStr)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatId},
		Text:   msg,
	})
	if err != nil {
		logger.Warning("send message to telegram failed:", err)
	}
}
