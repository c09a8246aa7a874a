// Package moderation holds the rules behind /kick, /ban and /mute that do not
// need a Telegram connection.
package moderation

import (
	"github.com/pkg/errors"
	"strconv"
	"strings"
	"time"
)

type Action string

const (
	ActionKick Action = "kick"
	ActionBan  Action = "ban"
	ActionMute Action = "mute"
)

const (
	// KickBanPeriod is how long a kicked member stays banned before the
	// immediate unban; Telegram treats shorter bans as permanent.
	KickBanPeriod = time.Minute

	DefaultMute = time.Hour
	MinMute     = time.Minute
)

var ErrInvalidDuration = errors.New("unrecognised duration")

type Unit int

const (
	Minutes Unit = iota
	Hours
	Days
)

// Mute is a parsed /mute argument. Amount and Unit keep what the user typed
// for the reply; Duration is what gets applied.
type Mute struct {
	Duration time.Duration
	Amount   int
	Unit     Unit
}

// ParseMuteDuration reads the first word of arg as "10m", "2h", "1d" or a
// bare number of minutes. An empty argument gives the one hour default.
func ParseMuteDuration(arg string) (Mute, error) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return Mute{Duration: DefaultMute, Amount: 1, Unit: Hours}, nil
	}
	ts := strings.ToLower(fields[0])

	unit, per := Minutes, time.Minute
	switch {
	case strings.HasSuffix(ts, "m"):
		ts = ts[:len(ts)-1]
	case strings.HasSuffix(ts, "h"):
		unit, per = Hours, time.Hour
		ts = ts[:len(ts)-1]
	case strings.HasSuffix(ts, "d"):
		unit, per = Days, 24*time.Hour
		ts = ts[:len(ts)-1]
	}

	n, err := strconv.Atoi(ts)
	if err != nil || n <= 0 {
		return Mute{}, errors.Wrapf(ErrInvalidDuration, "%q", arg)
	}

	d := time.Duration(n) * per
	if d/per != time.Duration(n) {
		return Mute{}, errors.Wrapf(ErrInvalidDuration, "%q is too long", arg)
	}
	if d < MinMute {
		d = MinMute
	}
	return Mute{Duration: d, Amount: n, Unit: unit}, nil
}

// IsGroupChat reports whether moderation commands apply to the chat type.
func IsGroupChat(chatType string) bool {
	return chatType == "group" || chatType == "supergroup"
}

// IsAdminStatus reports whether a chat member status may moderate.
func IsAdminStatus(status string) bool {
	return status == "administrator" || status == "creator"
}
