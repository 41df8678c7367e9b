// Package notifications publishes room and access-request events into
// Redis channels for delivery to connected clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Event kinds published on user channels.
const (
	EventRequestSubmitted = "access_request.submitted"
	EventRequestApproved  = "access_request.approved"
	EventRequestDenied    = "access_request.denied"
	EventRequestWithdrawn = "access_request.withdrawn"
	EventRoomArchived     = "room.archived"
)

// Notifier provides helpers to publish events into Redis channels.
// A nil Redis client disables publishing; every method becomes a no-op
// so the core workflow never depends on Redis being up.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf("rooms:user:%d", userID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// PublishRoom sends an event payload to a room's channel, reaching every
// client watching that room.
func (n *Notifier) PublishRoom(ctx context.Context, roomID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	channel := fmt.Sprintf("rooms:room:%d", roomID)
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// StartPatternSubscriber subscribes to `rooms:user:*` and `rooms:room:*`
// and calls onMessage for each incoming message. onMessage receives
// channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "rooms:user:*", "rooms:room:*")
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
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// EventPayload serializes an event for publishing. Fields holds the
// event-specific attributes alongside the "type" key.
func EventPayload(kind string, fields map[string]interface{}) (string, error) {
	body := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["type"] = kind
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(payload), nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "rooms:user:" + strconv.FormatUint(uint64(userID), 10)
}

// RoomChannel derives the Redis channel name for a room.
func RoomChannel(roomID uint) string {
	return "rooms:room:" + strconv.FormatUint(uint64(roomID), 10)
}
