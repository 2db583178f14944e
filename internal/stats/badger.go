package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

const (
	statisticsKey = "detection_stats"

	maxConflictRetries = 5
)

// BadgerStore keeps the document under one key of an embedded badger DB and
// updates it inside a single read-write transaction.
type BadgerStore struct {
	db     *badger.DB
	limit  int
	mu     sync.Mutex
	logger *logrus.Entry
}

func NewBadgerStore(dir string, limit int, logger *logrus.Entry) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR), limit, logger)
}

// NewMemoryBadgerStore opens a non-persistent store.
func NewMemoryBadgerStore(limit int, logger *logrus.Entry) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR), limit, logger)
}

func openBadger(opts badger.Options, limit int, logger *logrus.Entry) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		db:     db,
		limit:  limit,
		logger: logger,
	}, nil
}

func (b *BadgerStore) Init(ctx context.Context) error {
	return b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(statisticsKey))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		b.logger.Info("creating statistics document")
		val, err := json.Marshal(Empty())
		if err != nil {
			return err
		}
		return txn.Set([]byte(statisticsKey), val)
	})
}

func (b *BadgerStore) Load(ctx context.Context) (*Statistics, error) {
	var s *Statistics
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		s, err = b.getStatistics(txn)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *BadgerStore) getStatistics(txn *badger.Txn) (*Statistics, error) {
	item, err := txn.Get([]byte(statisticsKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: document missing", ErrCorrupt)
		}
		return nil, err
	}
	var (
		s       *Statistics
		skipped int
	)
	err = item.Value(func(val []byte) error {
		s, skipped, err = decodeStatistics(val)
		return err
	})
	if err == nil && skipped > 0 {
		b.logger.Warnf("dropped %d unreadable history entries", skipped)
	}
	return s, err
}

func (b *BadgerStore) Append(ctx context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = b.db.Update(func(txn *badger.Txn) error {
			s, err := b.getStatistics(txn)
			if err != nil {
				return err
			}
			s.Apply(ev, b.limit)
			val, err := json.Marshal(s)
			if err != nil {
				return err
			}
			return txn.Set([]byte(statisticsKey), val)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		b.logger.Warnf("statistics update conflict, retry %d", attempt+1)
	}
	return err
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}
