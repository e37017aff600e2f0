package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

const (
	DefaultChannel = "medlib:reload"
	lastNoticeKey  = ":last"
)

// ReloadNotice announces that an instance rebuilt its content store.
type ReloadNotice struct {
	Generation string    `json:"generation"`
	Source     string    `json:"source"`
	Instance   string    `json:"instance"`
	Records    int       `json:"records"`
	At         time.Time `json:"at"`
}

type ReloadBus interface {
	Publish(ctx context.Context, n ReloadNotice) error
	// StartForwarder subscribes and calls onMsg for every notice until ctx
	// is done.
	StartForwarder(ctx context.Context, onMsg func(n ReloadNotice)) error
	// LastNotice returns the most recently published notice, or nil.
	LastNotice(ctx context.Context) (*ReloadNotice, error)
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type reloadBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewReloadBus(log *logger.Logger, cfg Config) (ReloadBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewReloadBusWithClient(log, rdb, cfg.Channel), nil
}

// NewReloadBusWithClient wraps an existing client. The bus owns rdb and
// closes it on Close.
func NewReloadBusWithClient(log *logger.Logger, rdb *goredis.Client, channel string) ReloadBus {
	ch := strings.TrimSpace(channel)
	if ch == "" {
		ch = DefaultChannel
	}
	return &reloadBus{
		log:     log.With("service", "RedisReloadBus"),
		rdb:     rdb,
		channel: ch,
	}
}

func (b *reloadBus) Publish(ctx context.Context, n ReloadNotice) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis reload bus not initialized")
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	_, err = b.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Set(ctx, b.channel+lastNoticeKey, raw, 0)
		p.Publish(ctx, b.channel, raw)
		return nil
	})
	return err
}

func (b *reloadBus) StartForwarder(ctx context.Context, onMsg func(n ReloadNotice)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis reload bus not initialized")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
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
					return
				}
				var n ReloadNotice
				if err := json.Unmarshal([]byte(m.Payload), &n); err != nil {
					b.log.Warn("bad redis reload payload", "error", err)
					continue
				}
				onMsg(n)
			}
		}
	}()

	return nil
}

func (b *reloadBus) LastNotice(ctx context.Context) (*ReloadNotice, error) {
	if b == nil || b.rdb == nil {
		return nil, fmt.Errorf("redis reload bus not initialized")
	}
	raw, err := b.rdb.Get(ctx, b.channel+lastNoticeKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var n ReloadNotice
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("decode last reload notice: %w", err)
	}
	return &n, nil
}

func (b *reloadBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
