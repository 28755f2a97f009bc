// Package notify fans attendance events out to whoever listens. Delivery
// is best effort; a failed publish never fails the scan that caused it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"attendance_backend/logger"
	"attendance_backend/models"
)

type Publisher interface {
	Publish(ctx context.Context, ev models.AttendanceEvent) error
}

type Nop struct{}

func (Nop) Publish(context.Context, models.AttendanceEvent) error { return nil }

// Redis publishes events as JSON on a pub/sub channel.
type Redis struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
}

func NewRedis(log *logger.Logger, rdb goredis.UniversalClient, channel string) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "attendance"
	}
	return &Redis{
		log:     log.With("service", "RedisAttendanceNotifier"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (r *Redis) Publish(ctx context.Context, ev models.AttendanceEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := r.rdb.Publish(ctx, r.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe forwards events until ctx is done. It returns once the
// subscription is confirmed.
func (r *Redis) Subscribe(ctx context.Context, onEvent func(models.AttendanceEvent)) error {
	if onEvent == nil {
		return fmt.Errorf("onEvent callback required")
	}
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev models.AttendanceEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					r.log.Warn("bad attendance event payload", "error", err)
					continue
				}
				onEvent(ev)
			}
		}
	}()
	return nil
}

// Async wraps a Publisher so Publish returns immediately. Failures are
// logged, never returned.
type Async struct {
	next    Publisher
	log     *logger.Logger
	timeout time.Duration
}

func NewAsync(next Publisher, log *logger.Logger) *Async {
	if log == nil {
		log = logger.Nop()
	}
	return &Async{next: next, log: log, timeout: 5 * time.Second}
}

func (a *Async) Publish(_ context.Context, ev models.AttendanceEvent) error {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Publish(ctx, ev); err != nil {
			a.log.Warn("attendance event not delivered",
				"activity_id", ev.ActivityID,
				"person_id", ev.PersonID,
				"direction", ev.Direction,
				"error", err,
			)
		}
	}()
	return nil
}
