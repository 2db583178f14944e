package stats

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"teddywatch/internal/config"
)

// Store persists Statistics. Append must be serialised across concurrent
// callers so no update is lost, and a reader must never observe a partially
// written document.
type Store interface {
	// Init creates the empty document if none exists. Idempotent.
	Init(ctx context.Context) error
	// Load returns the whole document; a missing or unparsable document
	// yields an error wrapping ErrCorrupt.
	Load(ctx context.Context) (*Statistics, error)
	Append(ctx context.Context, ev Event) error
	Close() error
}

func NewStore(conf *config.Config, logger *logrus.Entry) (Store, error) {
	limit := conf.Stats.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	logger = logger.WithField("backend", conf.Stats.Backend)

	var (
		s   Store
		err error
	)
	switch conf.Stats.Backend {
	case config.StatsBackendFile:
		s, err = NewFileStore(conf.StatsPath(), limit, logger)
	case config.StatsBackendBadger:
		s, err = NewBadgerStore(conf.StatsPath(), limit, logger)
	case config.StatsBackendSQL:
		s, err = NewSQLStore(conf.Stats.SQL, limit, logger)
	default:
		return nil, fmt.Errorf("unknown stats backend %q", conf.Stats.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
