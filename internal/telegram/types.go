package telegram

import (
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/types"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"time"
)

// API is the part of the Telegram client the bot talks to.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// ActionStore keeps the moderation log.
type ActionStore interface {
	InsertAction(a types.ModerationAction) (int64, error)
	RecentActions(chatID int64, limit int) ([]types.ModerationAction, error)
}

// BotConfig configuration of the bot
type BotConfig struct {
	Token          string
	Debug          bool
	UpdatesTimeout int
}

// Bot telegram interaction client
type Bot struct {
	API    API
	Config BotConfig

	client   *tgbotapi.BotAPI
	selfID   int64
	provider market.Provider
	actions  ActionStore
	now      func() time.Time
}

// Message a telegram message struct
type Message struct {
	ChatID    int64
	MessageID int
	Text      string
}
