package stats

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"teddywatch/internal/config"
)

const countersRowId = 1

type eventRow struct {
	Id        int64  `gorm:"primaryKey;autoIncrement"`
	Kind      string `gorm:"type:varchar(8);NOT NULL"`
	Count     int    `gorm:"column:object_count;default:0"`
	EventTime string `gorm:"type:varchar(40);NOT NULL"`
}

func (eventRow) TableName() string {
	return "detection_events"
}

type countersRow struct {
	Id               int   `gorm:"primaryKey"`
	TotalDetections  int64 `gorm:"default:0"`
	TotalFalseAlarms int64 `gorm:"default:0"`
}

func (countersRow) TableName() string {
	return "detection_counters"
}

// SQLStore keeps events and counters in two tables. Appends run in one
// transaction holding the counters row lock.
type SQLStore struct {
	db     *gorm.DB
	limit  int
	mu     sync.Mutex
	logger *logrus.Entry
}

func NewSQLStore(conf config.SQLConfig, limit int, logger *logrus.Entry) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch conf.Driver {
	case "mysql":
		dialector = mysql.Open(conf.DSN)
	case "sqlite":
		dialector = sqlite.Open(conf.DSN)
	default:
		return nil, fmt.Errorf("unknown sql driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt: conf.Driver == "mysql",
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if conf.Driver == "sqlite" {
		// one long-lived connection: sqlite locks the whole file for writers
		// and an in-memory database lives only as long as its connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Second * time.Duration(conf.MaxLifetime))
	}

	return &SQLStore{
		db:     db,
		limit:  limit,
		logger: logger,
	}, nil
}

func (s *SQLStore) Init(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&eventRow{}, &countersRow{}); err != nil {
		return fmt.Errorf("migrate statistics tables: %w", err)
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&countersRow{Id: countersRowId}).Error
}

func (s *SQLStore) Load(ctx context.Context) (*Statistics, error) {
	var stats *Statistics
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		stats, err = s.load(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SQLStore) load(tx *gorm.DB) (*Statistics, error) {
	var counters countersRow
	if err := tx.First(&counters, countersRowId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: counters row missing", ErrCorrupt)
		}
		return nil, err
	}

	var rows []eventRow
	if err := tx.Order("id desc").Limit(s.limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	slices.Reverse(rows)

	stats := &Statistics{
		Detections:       make([]Event, 0, len(rows)),
		TotalDetections:  counters.TotalDetections,
		TotalFalseAlarms: counters.TotalFalseAlarms,
	}
	for _, r := range rows {
		stats.Detections = append(stats.Detections, Event{
			Kind:      Kind(r.Kind),
			Count:     r.Count,
			Timestamp: r.EventTime,
		})
	}
	return stats, nil
}

func (s *SQLStore) Append(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counters countersRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&counters, countersRowId).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: counters row missing", ErrCorrupt)
			}
			return err
		}

		if ev.IsHit() {
			counters.TotalDetections++
		} else {
			counters.TotalFalseAlarms++
		}
		if err := tx.Save(&counters).Error; err != nil {
			return err
		}

		row := &eventRow{Kind: string(ev.Kind), Count: ev.Count, EventTime: ev.Timestamp}
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		// drop everything older than the newest limit rows
		var cutoff []int64
		err = tx.Model(&eventRow{}).Order("id desc").Offset(s.limit).Limit(1).Pluck("id", &cutoff).Error
		if err != nil {
			return err
		}
		if len(cutoff) > 0 {
			return tx.Where("id <= ?", cutoff[0]).Delete(&eventRow{}).Error
		}
		return nil
	})
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
