package main

import (
	"coingecko-telegram-bot/internal/metrics"
	"coingecko-telegram-bot/internal/telegram"
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"testing"
)

type stubHandler struct {
	text    string
	sent    bool
	sendErr error
	panics  bool
	msgs    []telegram.Message
}

func (s *stubHandler) HandleUpdate(context.Context, tgbotapi.Update) (string, bool) {
	if s.panics {
		panic("boom")
	}
	return s.text, s.sent
}

func (s *stubHandler) SendMessage(m telegram.Message) error {
	s.msgs = append(s.msgs, m)
	return s.sendErr
}

func TestHandleCommandCountsReplies(t *testing.T) {
	update := tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 7,
		Text:      "/c btc",
		Chat:      &tgbotapi.Chat{ID: -100},
	}}

	cases := []struct {
		name      string
		h         *stubHandler
		wantCount float64
		wantSends int
	}{
		{"text reply", &stubHandler{text: "BTC"}, 1, 1},
		{"photo already sent", &stubHandler{sent: true}, 1, 0},
		{"nothing to say", &stubHandler{}, 0, 0},
		{"send failure", &stubHandler{text: "BTC", sendErr: errors.New("blocked")}, 0, 1},
		{"panic is recovered", &stubHandler{panics: true}, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())

			handleCommand(context.Background(), tc.h, m, update)

			if got := metrics.GetMetricValue(m.CommandsProcessed); got != tc.wantCount {
				t.Fatalf("commands processed = %v, want %v", got, tc.wantCount)
			}
			if len(tc.h.msgs) != tc.wantSends {
				t.Fatalf("sent %d messages, want %d", len(tc.h.msgs), tc.wantSends)
			}
			if tc.wantSends > 0 && (tc.h.msgs[0].ChatID != -100 || tc.h.msgs[0].MessageID != 7) {
				t.Fatalf("unexpected message %+v", tc.h.msgs[0])
			}
		})
	}
}
