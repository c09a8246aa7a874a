package telegram

import (
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/price"
	"coingecko-telegram-bot/internal/types"
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"time"
)

const (
	testBotID   int64 = 999
	testAdminID int64 = 1
	testUserID  int64 = 2
	testGroupID int64 = -100
)

type fakeAPI struct {
	sent       []tgbotapi.Chattable
	requests   []tgbotapi.Chattable
	statuses   map[int64]string
	requestErr error
	sendErr    error
	nextID     int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID, Chat: &tgbotapi.Chat{ID: testGroupID}}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	status, ok := f.statuses[config.UserID]
	if !ok {
		status = "member"
	}
	return tgbotapi.ChatMember{Status: status}, nil
}

type fakeProvider struct {
	snapshot    price.Snapshot
	snapshotErr error
	unitPrice   float64
	priceErr    error
	history     []market.PricePoint
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Snapshot(context.Context, string) (price.Snapshot, error) {
	return f.snapshot, f.snapshotErr
}

func (f *fakeProvider) UnitPrice(context.Context, string, string) (float64, error) {
	return f.unitPrice, f.priceErr
}

func (f *fakeProvider) History(context.Context, string, int) ([]market.PricePoint, error) {
	return f.history, nil
}

type fakeActions struct {
	actions []types.ModerationAction
}

func (f *fakeActions) InsertAction(a types.ModerationAction) (int64, error) {
	a.ID = int64(len(f.actions) + 1)
	f.actions = append(f.actions, a)
	return a.ID, nil
}

func (f *fakeActions) RecentActions(chatID int64, limit int) ([]types.ModerationAction, error) {
	var out []types.ModerationAction
	for i := len(f.actions) - 1; i >= 0 && len(out) < limit; i-- {
		if f.actions[i].ChatID == chatID {
			out = append(out, f.actions[i])
		}
	}
	return out, nil
}

func newTestBot(api *fakeAPI, p market.Provider, actions ActionStore) *Bot {
	b := newBot(api, testBotID, BotConfig{Token: "123:abc"}, p, actions)
	b.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return b
}

func commandUpdate(text string, chatType string) tgbotapi.Update {
	command := text
	for i, r := range text {
		if r == ' ' {
			command = text[:i]
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Text:      text,
		From:      &tgbotapi.User{ID: testAdminID, FirstName: "Ada", LastName: "Admin"},
		Chat:      &tgbotapi.Chat{ID: testGroupID, Type: chatType},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}},
	}}
}

func replyTo(u tgbotapi.Update, target *tgbotapi.User) tgbotapi.Update {
	u.Message.ReplyToMessage = &tgbotapi.Message{MessageID: 5, From: target}
	return u
}
