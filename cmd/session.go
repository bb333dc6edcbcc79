package cmd

import (
	"context"
	"fmt"

	"github.com/habedi/escola/auth"
	"github.com/habedi/escola/db"
	"github.com/habedi/escola/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// sessionStore is the configured token store together with whatever must be released after use.
type sessionStore struct {
	auth.Store
	kind  string
	close func() error
}

func (s *sessionStore) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// openSessionStore opens the session backend chosen in cfg.
func openSessionStore(ctx context.Context, cfg config.Config) (*sessionStore, error) {
	switch cfg.Session {
	case config.SessionMemory:
		log.Debug().Msg("Using an in-memory session; it will not survive this process")
		return &sessionStore{Store: auth.NewMemoryStore(), kind: cfg.Session}, nil

	case config.SessionRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store := db.NewRedisStore(rdb, cfg.RedisPrefix)
		if err := store.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis at %s is unreachable: %w", cfg.RedisAddr, err)
		}
		log.Debug().Str("addr", cfg.RedisAddr).Msg("Using the redis session store")
		return &sessionStore{Store: store, kind: cfg.Session, close: rdb.Close}, nil

	case config.SessionSQLite, "":
		if err := db.InitDB(); err != nil {
			return nil, err
		}
		log.Debug().Str("path", db.Path).Msg("Using the sqlite session store")
		return &sessionStore{Store: db.NewKVRepository(db.GetDB()), kind: config.SessionSQLite, close: db.CloseDB}, nil

	default:
		return nil, config.ValidateSession(cfg.Session)
	}
}
