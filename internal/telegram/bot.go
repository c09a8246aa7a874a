package telegram

import (
	"coingecko-telegram-bot/internal/commands"
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/moderation"
	"coingecko-telegram-bot/lib/translation"
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
)

const helpText = "Available commands:\n" +
	"/p [ticker] - price, 24h range and market data\n" +
	"/cv [amount] [from] [to] - convert between coins, default target IDR\n" +
	"/c [ticker] [days] - price chart, default 7 days\n" +
	"/kick, /ban, /mute [10m|2h|1d] - reply to a member's message (group admins)\n" +
	"/modlog - recent moderation actions (group admins)"

// NewBot creates new telegram bot
func NewBot(c BotConfig, provider market.Provider, actions ActionStore) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(c.Token)
	if err != nil {
		return nil, errors.Wrap(err, "could not create telegram bot")
	}

	client.Debug = c.Debug

	b := newBot(client, client.Self.ID, c, provider, actions)
	b.client = client
	return b, nil
}

func newBot(api API, selfID int64, c BotConfig, provider market.Provider, actions ActionStore) *Bot {
	return &Bot{
		API:      api,
		Config:   c,
		selfID:   selfID,
		provider: provider,
		actions:  actions,
		now:      time.Now,
	}
}

// GetUpdatesChannel starts long polling for updates
func (b *Bot) GetUpdatesChannel() (tgbotapi.UpdatesChannel, error) {
	if b.client == nil {
		return nil, errors.New("bot is not connected to telegram")
	}
	// telegram refuses getUpdates while a webhook is registered
	if err := b.RemoveWebhook(); err != nil {
		return nil, err
	}

	updatesConfig := tgbotapi.NewUpdate(0)
	if b.Config.UpdatesTimeout > 0 {
		updatesConfig.Timeout = b.Config.UpdatesTimeout
	}
	return b.client.GetUpdatesChan(updatesConfig), nil
}

func (b *Bot) StopReceivingUpdates() {
	if b.client != nil {
		b.client.StopReceivingUpdates()
	}
}

// SetWebhook registers <baseURL>/webhook/<token> with telegram.
func (b *Bot) SetWebhook(baseURL string) error {
	wh, err := tgbotapi.NewWebhook(strings.TrimRight(baseURL, "/") + "/webhook/" + b.Config.Token)
	if err != nil {
		return errors.Wrap(err, "invalid webhook url")
	}
	if _, err := b.API.Request(wh); err != nil {
		return errors.Wrap(err, "could not set webhook")
	}
	return nil
}

func (b *Bot) RemoveWebhook() error {
	if _, err := b.API.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return errors.Wrap(err, "could not remove webhook")
	}
	return nil
}

// SendMessage sends a telegram message. Replies are plain text, so coin
// names and user names never need escaping.
func (b *Bot) SendMessage(m Message) error {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyToMessageID = m.MessageID
	msg.DisableWebPagePreview = true
	_, err := b.API.Send(msg)
	return errors.Wrapf(err, "could not send message: %v", m)
}

// HandleUpdate processes a command and returns the reply text. An empty
// reply means there is nothing left to send; sent reports whether the bot
// already answered on its own, as it does with chart photos.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) (text string, sent bool) {
	if u.Message == nil {
		return "", false
	}
	m := u.Message
	log.Debugf("received command: %s", m.Command())

	var err error

	switch m.Command() {
	case "start", "help":
		text = translation.Translate(helpText)
	case "p":
		if text, err = commands.CommandPrice(ctx, b.provider, m.CommandArguments()); err != nil {
			log.Error(err)
			text = translation.Translate("An API error occurred. Please try again later.")
		}
	case "cv":
		if text, err = commands.CommandConvert(ctx, b.provider, m.CommandArguments()); err != nil {
			log.Error(err)
			text = translation.Translate("An error occurred while fetching conversion data. Please try again.")
		}
	case "c":
		return b.handleChart(ctx, m)
	case "kick":
		text = b.handleModeration(m, moderation.ActionKick)
	case "ban":
		text = b.handleModeration(m, moderation.ActionBan)
	case "mute":
		text = b.handleModeration(m, moderation.ActionMute)
	case "modlog":
		text = b.handleModlog(m)
	}

	return text, false
}

func (b *Bot) handleChart(ctx context.Context, m *tgbotapi.Message) (string, bool) {
	chartData, caption, err := commands.CommandChart(ctx, b.provider, m.CommandArguments())
	if err != nil {
		log.Error(err)
		return translation.Translate("An API error occurred. Please try again later."), false
	}
	if chartData == nil {
		return caption, false
	}

	photo := tgbotapi.NewPhoto(m.Chat.ID, tgbotapi.FileBytes{
		Name:  "chart.png",
		Bytes: chartData,
	})
	photo.Caption = caption
	photo.ReplyToMessageID = m.MessageID
	if _, err := b.API.Send(photo); err != nil {
		log.Error("error sending chart: ", err)
		return "", false
	}
	return "", true
}
