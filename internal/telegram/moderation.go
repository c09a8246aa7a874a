package telegram

import (
	"coingecko-telegram-bot/internal/moderation"
	"coingecko-telegram-bot/internal/types"
	"coingecko-telegram-bot/lib/translation"
	"fmt"
	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"strings"
)

const modlogLimit = 10

var actionEmoji = map[moderation.Action]string{
	moderation.ActionKick: "👋",
	moderation.ActionBan:  "🔨",
	moderation.ActionMute: "🔇",
}

// handleModeration runs /kick, /ban and /mute. Every check answers with its
// own reply, in the order group, reply target, invoker, bot.
func (b *Bot) handleModeration(m *tgbotapi.Message, action moderation.Action) string {
	if !moderation.IsGroupChat(m.Chat.Type) {
		return translation.Translate("This command can only be used in groups.")
	}

	if m.ReplyToMessage == nil || m.ReplyToMessage.From == nil {
		switch action {
		case moderation.ActionKick:
			return translation.Translate("Reply to the message of the user you want to kick (/kick).")
		case moderation.ActionBan:
			return translation.Translate("Reply to the message of the user you want to ban (/ban).")
		default:
			return translation.Translate("Reply to the message of the user you want to mute (/mute [minutes/hours/days], default 1h).")
		}
	}

	chatID := m.Chat.ID
	if m.From == nil || !b.isUserAdmin(chatID, m.From.ID) {
		return translation.Translate("❌ You must be an admin to use this command.")
	}

	if !b.isBotAdmin(chatID) {
		if action == moderation.ActionMute {
			return translation.Translate("❌ The bot must be an admin with the 'Restrict Members' permission to do this.")
		}
		return translation.Translate("❌ The bot must be an admin with the 'Ban Users' permission to do this.")
	}

	target := m.ReplyToMessage.From
	member := tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: target.ID}
	record := types.ModerationAction{
		ChatID:     chatID,
		Action:     string(action),
		TargetID:   target.ID,
		TargetName: fullName(target),
		ActorID:    m.From.ID,
		ActorName:  fullName(m.From),
		CreatedAt:  b.now(),
	}

	var reply string
	switch action {
	case moderation.ActionKick:
		// a short ban followed by an unban removes the member but lets them rejoin
		until := b.now().Add(moderation.KickBanPeriod)
		if _, err := b.API.Request(tgbotapi.BanChatMemberConfig{ChatMemberConfig: member, UntilDate: until.Unix()}); err != nil {
			log.Errorf("error kicking user %d in chat %d: %v", target.ID, chatID, err)
			return translation.Translate("❌ Failed to kick the user. Make sure the bot has the required permissions.")
		}
		if _, err := b.API.Request(tgbotapi.UnbanChatMemberConfig{ChatMemberConfig: member}); err != nil {
			log.Errorf("error kicking user %d in chat %d: %v", target.ID, chatID, err)
			return translation.Translate("❌ Failed to kick the user. Make sure the bot has the required permissions.")
		}
		reply = translation.Translate("👋 %s has been kicked from the group.", record.TargetName)

	case moderation.ActionBan:
		if _, err := b.API.Request(tgbotapi.BanChatMemberConfig{ChatMemberConfig: member}); err != nil {
			log.Errorf("error banning user %d in chat %d: %v", target.ID, chatID, err)
			return translation.Translate("❌ Failed to ban the user. Make sure the bot has the required permissions.")
		}
		reply = translation.Translate("🔨 %s has been permanently banned from the group.", record.TargetName)

	case moderation.ActionMute:
		mute, err := moderation.ParseMuteDuration(m.CommandArguments())
		if err != nil {
			return translation.Translate("Unrecognised time format. Use for example 10m, 2h, 1d, or /mute for the default 1 hour.")
		}
		record.Until = b.now().Add(mute.Duration)
		restrict := tgbotapi.RestrictChatMemberConfig{
			ChatMemberConfig: member,
			UntilDate:        record.Until.Unix(),
			Permissions:      &tgbotapi.ChatPermissions{},
		}
		if _, err := b.API.Request(restrict); err != nil {
			log.Errorf("error muting user %d in chat %d: %v", target.ID, chatID, err)
			return translation.Translate("❌ Failed to mute the user. Make sure the bot has the required permissions.")
		}
		reply = translation.Translate("🔇 %s has been muted for %s.", record.TargetName, muteText(mute))
	}

	b.recordAction(record)
	return reply
}

// handleModlog lists the latest moderation actions of the chat for admins.
func (b *Bot) handleModlog(m *tgbotapi.Message) string {
	if !moderation.IsGroupChat(m.Chat.Type) {
		return translation.Translate("This command can only be used in groups.")
	}
	if m.From == nil || !b.isUserAdmin(m.Chat.ID, m.From.ID) {
		return translation.Translate("❌ You must be an admin to use this command.")
	}
	if b.actions == nil {
		return translation.Translate("No moderation actions recorded in this chat yet.")
	}

	actions, err := b.actions.RecentActions(m.Chat.ID, modlogLimit)
	if err != nil {
		log.Errorf("error fetching moderation log of chat %d: %v", m.Chat.ID, err)
		return translation.Translate("Failed to load the moderation log. Please try again later.")
	}
	if len(actions) == 0 {
		return translation.Translate("No moderation actions recorded in this chat yet.")
	}

	var list strings.Builder
	list.WriteString(translation.Translate("Recent moderation actions:"))
	for _, a := range actions {
		fmt.Fprintf(&list, "\n%s %s %s, %s (%s)",
			actionEmoji[moderation.Action(a.Action)], a.Action, a.TargetName, a.ActorName, humanize.Time(a.CreatedAt))
	}
	return list.String()
}

func (b *Bot) recordAction(a types.ModerationAction) {
	if b.actions == nil {
		return
	}
	if _, err := b.actions.InsertAction(a); err != nil {
		log.Errorf("failed to record %s in chat %d: %v", a.Action, a.ChatID, err)
	}
}

func (b *Bot) isUserAdmin(chatID, userID int64) bool {
	status, err := b.memberStatus(chatID, userID)
	if err != nil {
		log.Errorf("failed to check user admin status: %v", err)
		return false
	}
	return moderation.IsAdminStatus(status)
}

// isBotAdmin needs the administrator status; a bot can never be the creator.
func (b *Bot) isBotAdmin(chatID int64) bool {
	status, err := b.memberStatus(chatID, b.selfID)
	if err != nil {
		log.Errorf("failed to check bot admin status: %v", err)
		return false
	}
	return status == "administrator"
}

func (b *Bot) memberStatus(chatID, userID int64) (string, error) {
	member, err := b.API.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func muteText(mute moderation.Mute) string {
	switch mute.Unit {
	case moderation.Hours:
		return translation.TranslateN("%d hour", "%d hours", mute.Amount, mute.Amount)
	case moderation.Days:
		return translation.TranslateN("%d day", "%d days", mute.Amount, mute.Amount)
	}
	return translation.TranslateN("%d minute", "%d minutes", mute.Amount, mute.Amount)
}

func fullName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.UserName
	}
	return name
}
