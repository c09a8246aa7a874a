package telegram

import (
	"context"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"strings"
	"testing"
	"time"
)

var target = &tgbotapi.User{ID: testUserID, FirstName: "Spam", LastName: "Bot"}

func adminsAPI() *fakeAPI {
	return &fakeAPI{statuses: map[int64]string{
		testAdminID: "creator",
		testBotID:   "administrator",
	}}
}

func TestModerationChecks(t *testing.T) {
	cases := []struct {
		name     string
		api      *fakeAPI
		update   tgbotapi.Update
		want     string
		requests int
	}{
		{
			name:   "private chat",
			api:    adminsAPI(),
			update: replyTo(commandUpdate("/ban", "private"), target),
			want:   "This command can only be used in groups.",
		},
		{
			name:   "no reply",
			api:    adminsAPI(),
			update: commandUpdate("/kick", "supergroup"),
			want:   "Reply to the message of the user you want to kick (/kick).",
		},
		{
			name:   "mute without reply",
			api:    adminsAPI(),
			update: commandUpdate("/mute 10m", "group"),
			want:   "Reply to the message of the user you want to mute",
		},
		{
			name:   "invoker not admin",
			api:    &fakeAPI{statuses: map[int64]string{testBotID: "administrator"}},
			update: replyTo(commandUpdate("/ban", "group"), target),
			want:   "❌ You must be an admin to use this command.",
		},
		{
			name:   "bot not admin",
			api:    &fakeAPI{statuses: map[int64]string{testAdminID: "administrator"}},
			update: replyTo(commandUpdate("/ban", "group"), target),
			want:   "❌ The bot must be an admin with the 'Ban Users' permission",
		},
		{
			name:   "bot not admin for mute",
			api:    &fakeAPI{statuses: map[int64]string{testAdminID: "administrator"}},
			update: replyTo(commandUpdate("/mute", "group"), target),
			want:   "❌ The bot must be an admin with the 'Restrict Members' permission",
		},
		{
			name:   "bad mute duration",
			api:    adminsAPI(),
			update: replyTo(commandUpdate("/mute soon", "group"), target),
			want:   "Unrecognised time format.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actions := &fakeActions{}
			b := newTestBot(tc.api, &fakeProvider{}, actions)

			got, _ := b.HandleUpdate(context.Background(), tc.update)
			if !strings.HasPrefix(got, tc.want) {
				t.Fatalf("got %q, want prefix %q", got, tc.want)
			}
			if len(tc.api.requests) != 0 {
				t.Fatalf("no moderation request expected, got %d", len(tc.api.requests))
			}
			if len(actions.actions) != 0 {
				t.Fatal("nothing should be recorded")
			}
		})
	}
}

func TestKick(t *testing.T) {
	api := adminsAPI()
	actions := &fakeActions{}
	b := newTestBot(api, &fakeProvider{}, actions)

	got, _ := b.HandleUpdate(context.Background(), replyTo(commandUpdate("/kick", "group"), target))
	if got != "👋 Spam Bot has been kicked from the group." {
		t.Fatalf("reply = %q", got)
	}
	if len(api.requests) != 2 {
		t.Fatalf("got %d requests, want ban + unban", len(api.requests))
	}
	ban, ok := api.requests[0].(tgbotapi.BanChatMemberConfig)
	if !ok || ban.UserID != testUserID || ban.ChatID != testGroupID {
		t.Fatalf("first request = %#v", api.requests[0])
	}
	if want := b.now().Add(time.Minute).Unix(); ban.UntilDate != want {
		t.Fatalf("kick ban until %d, want %d", ban.UntilDate, want)
	}
	if _, ok := api.requests[1].(tgbotapi.UnbanChatMemberConfig); !ok {
		t.Fatalf("second request = %T, want unban", api.requests[1])
	}
	if len(actions.actions) != 1 || actions.actions[0].Action != "kick" || actions.actions[0].ActorName != "Ada Admin" {
		t.Fatalf("recorded %+v", actions.actions)
	}
}

func TestBan(t *testing.T) {
	api := adminsAPI()
	actions := &fakeActions{}
	b := newTestBot(api, &fakeProvider{}, actions)

	got, _ := b.HandleUpdate(context.Background(), replyTo(commandUpdate("/ban", "supergroup"), target))
	if got != "🔨 Spam Bot has been permanently banned from the group." {
		t.Fatalf("reply = %q", got)
	}
	ban := api.requests[0].(tgbotapi.BanChatMemberConfig)
	if ban.UntilDate != 0 {
		t.Fatalf("ban should be permanent, until %d", ban.UntilDate)
	}
	if !actions.actions[0].Until.IsZero() {
		t.Fatal("permanent ban recorded with an end time")
	}
}

func TestMute(t *testing.T) {
	cases := []struct {
		args  string
		want  string
		until time.Duration
	}{
		{"", "🔇 Spam Bot has been muted for 1 hour.", time.Hour},
		{"10m", "🔇 Spam Bot has been muted for 10 minutes.", 10 * time.Minute},
		{"2h", "🔇 Spam Bot has been muted for 2 hours.", 2 * time.Hour},
		{"1d", "🔇 Spam Bot has been muted for 1 day.", 24 * time.Hour},
	}

	for _, tc := range cases {
		t.Run(tc.args, func(t *testing.T) {
			api := adminsAPI()
			actions := &fakeActions{}
			b := newTestBot(api, &fakeProvider{}, actions)

			got, _ := b.HandleUpdate(context.Background(), replyTo(commandUpdate(strings.TrimSpace("/mute "+tc.args), "group"), target))
			if got != tc.want {
				t.Fatalf("reply = %q, want %q", got, tc.want)
			}
			restrict, ok := api.requests[0].(tgbotapi.RestrictChatMemberConfig)
			if !ok {
				t.Fatalf("request = %T", api.requests[0])
			}
			if want := b.now().Add(tc.until).Unix(); restrict.UntilDate != want {
				t.Fatalf("until = %d, want %d", restrict.UntilDate, want)
			}
			if p := restrict.Permissions; p == nil || p.CanSendMessages || p.CanSendMediaMessages || p.CanSendOtherMessages {
				t.Fatalf("permissions not revoked: %+v", p)
			}
			if !actions.actions[0].Until.Equal(b.now().Add(tc.until)) {
				t.Fatalf("recorded until %v", actions.actions[0].Until)
			}
		})
	}
}

func TestModerationRequestFailure(t *testing.T) {
	api := adminsAPI()
	api.requestErr = errors.New("Bad Request: not enough rights")
	actions := &fakeActions{}
	b := newTestBot(api, &fakeProvider{}, actions)

	got, _ := b.HandleUpdate(context.Background(), replyTo(commandUpdate("/ban", "group"), target))
	if !strings.HasPrefix(got, "❌ Failed to ban the user.") {
		t.Fatalf("reply = %q", got)
	}
	if len(actions.actions) != 0 {
		t.Fatal("failed action should not be recorded")
	}
}

func TestModlog(t *testing.T) {
	api := adminsAPI()
	actions := &fakeActions{}
	b := newTestBot(api, &fakeProvider{}, actions)

	if got, _ := b.HandleUpdate(context.Background(), commandUpdate("/modlog", "group")); got != "No moderation actions recorded in this chat yet." {
		t.Fatalf("empty modlog = %q", got)
	}

	b.now = time.Now
	b.HandleUpdate(context.Background(), replyTo(commandUpdate("/ban", "group"), target))
	b.HandleUpdate(context.Background(), replyTo(commandUpdate("/mute 5m", "group"), target))

	got, _ := b.HandleUpdate(context.Background(), commandUpdate("/modlog", "group"))
	lines := strings.Split(got, "\n")
	if len(lines) != 3 || lines[0] != "Recent moderation actions:" {
		t.Fatalf("modlog = %q", got)
	}
	if !strings.HasPrefix(lines[1], "🔇 mute Spam Bot, Ada Admin (") || !strings.HasPrefix(lines[2], "🔨 ban Spam Bot") {
		t.Fatalf("modlog = %q", got)
	}

	api.statuses[testAdminID] = "member"
	if got, _ := b.HandleUpdate(context.Background(), commandUpdate("/modlog", "group")); !strings.HasPrefix(got, "❌ You must be an admin") {
		t.Fatalf("non-admin modlog = %q", got)
	}
}
