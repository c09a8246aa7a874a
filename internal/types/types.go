package types

import "time"

// ModerationAction is one kick, ban or mute carried out in a group chat.
type ModerationAction struct {
	ID         int64     `json:"id"`
	ChatID     int64     `json:"chat_id"`
	Action     string    `json:"action"` // kick, ban, mute
	TargetID   int64     `json:"target_id"`
	TargetName string    `json:"target_name"`
	ActorID    int64     `json:"actor_id"`
	ActorName  string    `json:"actor_name"`
	Until      time.Time `json:"until"` // zero for permanent bans
	CreatedAt  time.Time `json:"created_at"`
}
