// Package feed streams newly posted messages to the followers of their author
// over websockets. Events travel through Redis pub/sub so that every instance
// delivers to the sockets it holds.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "feed:user:"

// EventNewMessage is the type of the event sent when a followed user posts.
const EventNewMessage = "new_message"

// Event is the envelope written to feed sockets.
type Event struct {
	Type    string       `json:"type"`
	Payload MessageEvent `json:"payload"`
}

// MessageEvent describes a newly posted message.
type MessageEvent struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UserChannel is the Redis channel carrying userID's feed.
func UserChannel(userID uint) string {
	return channelPrefix + strconv.FormatUint(uint64(userID), 10)
}

func parseUserChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Notifier publishes feed events into Redis.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishMessage sends a new_message event to each recipient's channel in one
// pipeline. Without Redis it does nothing.
func (n *Notifier) PublishMessage(ctx context.Context, msg *models.Message, recipientIDs []uint) error {
	if n.rdb == nil || len(recipientIDs) == 0 {
		return nil
	}

	data, err := json.Marshal(Event{
		Type: EventNewMessage,
		Payload: MessageEvent{
			ID:        msg.ID,
			Text:      msg.Text,
			UserID:    msg.UserID,
			Username:  msg.User.Username,
			Timestamp: msg.Timestamp,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}

	pipe := n.rdb.Pipeline()
	for _, id := range recipientIDs {
		pipe.Publish(ctx, UserChannel(id), data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	return nil
}

// Subscribe listens on every user channel and calls onMessage for each event
// until ctx is cancelled. The subscription is confirmed before it returns.
func (n *Notifier) Subscribe(ctx context.Context, onMessage func(userID uint, payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, channelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe to feed channels: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, valid := parseUserChannel(msg.Channel)
				if !valid {
					middleware.Logger.Warn("invalid feed channel", slog.String("channel", msg.Channel))
					continue
				}
				dispatch(onMessage, userID, msg.Payload)
			}
		}
	}()
	return nil
}

func dispatch(onMessage func(uint, string), userID uint, payload string) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.Error("panic in feed subscriber",
				slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()
	onMessage(userID, payload)
}
