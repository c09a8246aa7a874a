package database

import (
	"coingecko-telegram-bot/internal/types"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"time"
)

// InsertAction records a moderation action and returns its row id. A zero
// CreatedAt is stamped with the current time.
func (s *Store) InsertAction(a types.ModerationAction) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	var until int64
	if !a.Until.IsZero() {
		until = a.Until.Unix()
	}

	query := `
	INSERT INTO moderation_actions (chat_id, action, target_id, target_name, actor_id, actor_name, until, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);`
	res, err := s.db.Exec(query, a.ChatID, a.Action, a.TargetID, a.TargetName, a.ActorID, a.ActorName, until, a.CreatedAt.Unix())
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert moderation action")
	}

	log.Debugf("moderation action inserted: chat %d, %s %d by %d", a.ChatID, a.Action, a.TargetID, a.ActorID)
	return res.LastInsertId()
}

// RecentActions returns up to limit actions of chatID, newest first.
func (s *Store) RecentActions(chatID int64, limit int) ([]types.ModerationAction, error) {
	query := `
	SELECT id, chat_id, action, target_id, target_name, actor_id, actor_name, until, created_at
	FROM moderation_actions
	WHERE chat_id = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?;`

	rows, err := s.db.Query(query, chatID, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query moderation actions for chat ID %d", chatID)
	}
	defer rows.Close()

	var actions []types.ModerationAction
	for rows.Next() {
		var a types.ModerationAction
		var until, createdAt int64
		if err := rows.Scan(&a.ID, &a.ChatID, &a.Action, &a.TargetID, &a.TargetName, &a.ActorID, &a.ActorName, &until, &createdAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		if until > 0 {
			a.Until = time.Unix(until, 0)
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		actions = append(actions, a)
	}

	return actions, rows.Err()
}
