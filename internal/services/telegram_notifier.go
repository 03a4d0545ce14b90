package services

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier — служебный канал для админов; сбои не влияют на запросы.
type Notifier interface {
	Notify(text string)
}

// TelegramNotifier шлёт сообщения в админский чат. Без токена/чата работает
// как no-op, чтобы локальная разработка не требовала бота.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(botToken string, chatID int64) *TelegramNotifier {
	if botToken == "" || chatID == 0 {
		log.Printf("[tg][skip] token or chat id empty, notifications disabled")
		return &TelegramNotifier{}
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Printf("[tg][init][err] %v — notifications disabled", err)
		return &TelegramNotifier{}
	}
	log.Printf("[tg][init] authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

func (t *TelegramNotifier) Notify(text string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Printf("[tg][send][err] %v", err)
	}
}
