// Package broadcast fans an admin message out to every known user.
package broadcast

import (
	"context"
	"fmt"
	"time"

	"github.com/m3rciful/shopbot/core/logger"
	"log/slog"
)

// Telegram flood limits tolerate roughly 30 messages per second; one message
// every 100ms keeps a healthy margin.
const defaultPace = 100 * time.Millisecond

// Directory enumerates the delivery audience.
type Directory interface {
	AllTgIDs(ctx context.Context) ([]int64, error)
}

// Sender delivers one message to one chat.
type Sender interface {
	SendText(chatID int64, text string) error
}

// Result summarizes one broadcast run.
type Result struct {
	Sent   int
	Errors []string
}

// Service sequentially delivers a message to all users, pacing sends to stay
// under flood limits.
type Service struct {
	directory Directory
	sender    Sender
	pace      time.Duration
}

// NewService wires the broadcast service. A non-positive pace gets the
// default.
func NewService(directory Directory, sender Sender, pace time.Duration) *Service {
	if pace <= 0 {
		pace = defaultPace
	}
	return &Service{directory: directory, sender: sender, pace: pace}
}

// Send delivers text to every known user. Per-user failures are collected,
// not fatal; cancellation stops the run between sends.
func (s *Service) Send(ctx context.Context, text string) (*Result, error) {
	ids, err := s.directory.AllTgIDs(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := &Result{}
	for i, id := range ids {
		if i > 0 {
			timer := time.NewTimer(s.pace)
			select {
			case <-ctx.Done():
				timer.Stop()
				return res, ctx.Err()
			case <-timer.C:
			}
		}
		if err := s.sender.SendText(id, text); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("user %d: %v", id, err))
			continue
		}
		res.Sent++
	}

	logger.SVCBroadcast.Info("broadcast finished",
		slog.String("event", "broadcast.send"),
		slog.Int("sent", res.Sent),
		slog.Int("errors", len(res.Errors)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return res, nil
}
