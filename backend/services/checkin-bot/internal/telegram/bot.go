package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"fleetcheck/backend/services/checkin-bot/internal/chat"
	"fleetcheck/backend/services/checkin-bot/internal/metrics"
)

const (
	workerQueue   = 64
	handleTimeout = 2 * time.Minute
)

// Bot long-polls the Bot API and feeds updates to a handler. Updates of one user always land on
// the same worker, so a driver's messages are handled in the order they were sent.
type Bot struct {
	api         API
	handler     chat.HandlerFunc
	workers     int
	pollTimeout int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewBot(api API, handler chat.HandlerFunc, workers int, pollTimeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *Bot {
	if workers <= 0 {
		workers = 1
	}
	seconds := int(pollTimeout / time.Second)
	if seconds <= 0 {
		seconds = 60
	}
	return &Bot{api: api, handler: handler, workers: workers, pollTimeout: seconds, metrics: m, logger: logger}
}

// Run blocks until ctx is cancelled or the update channel closes, then drains the workers.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(cfg)

	queues := make([]chan chat.Update, b.workers)
	var wg sync.WaitGroup
	for i := range queues {
		queues[i] = make(chan chat.Update, workerQueue)
		wg.Add(1)
		go func(queue <-chan chat.Update) {
			defer wg.Done()
			for u := range queue {
				b.handle(ctx, u)
			}
		}(queues[i])
	}
	defer func() {
		for _, q := range queues {
			close(q)
		}
		wg.Wait()
	}()

	b.logger.Info("telegram polling started", zap.Int("workers", b.workers), zap.Int("poll_timeout", b.pollTimeout))
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			u, ok := ConvertUpdate(upd)
			if !ok {
				continue
			}
			queue := queues[shard(u.UserID, b.workers)]
			select {
			case queue <- u:
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return nil
			}
		}
	}
}

func shard(userID int64, workers int) int {
	return int(uint64(userID) % uint64(workers))
}

// handle keeps running during shutdown so a started conversation step completes.
func (b *Bot) handle(ctx context.Context, u chat.Update) {
	started := time.Now()
	logger := b.logger.With(zap.Int64("user_id", u.UserID))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("update handler panicked", zap.String("panic", fmt.Sprint(r)), zap.ByteString("stack", debug.Stack()))
		}
		b.metrics.ObserveUpdate(Kind(u), time.Since(started))
	}()

	handleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
	defer cancel()
	if err := b.handler(handleCtx, u); err != nil {
		logger.Error("update handling failed", zap.String("command", u.Command), zap.Error(err))
	}
}
