package history

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dlget/dlq/internal/queue"
)

// Record is one terminal task outcome. The table is append-only audit data;
// nothing here is ever read back into scheduling state.
type Record struct {
	gorm.Model
	/* QueueID is the queue manager's id for the request. */
	QueueID string `gorm:"index;not null"`
	/* Handle is the pool handle the request ran under. */
	Handle string `gorm:"not null"`
	/* URL is the transfer source. */
	URL string `gorm:"not null"`
	/* Path is the transfer destination. */
	Path string `gorm:"not null"`
	/* State is the terminal state label (Completed, Failed, Cancelled,
	   or unknown_at_downloader when the pool had already forgotten it). */
	State string `gorm:"not null"`
	/* Error is the failure message, if any. */
	Error string `gorm:"type:text"`
	/* Bytes is how much payload was written. */
	Bytes int64 `gorm:"not null"`
	/* TotalBytes is the declared size, 0 when unknown. */
	TotalBytes int64 `gorm:"not null"`
	/* FinishedAt is when the task reached its terminal state. */
	FinishedAt time.Time
}

// Store persists terminal outcomes to a sqlite database
type Store struct {
	conn *gorm.DB
}

// Open opens (creating if needed) the history database at path
func Open(path string) (*Store, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return NewStore(conn)
}

// NewStore wraps an existing gorm connection and migrates the schema
func NewStore(conn *gorm.DB) (*Store, error) {
	if conn == nil {
		return nil, fmt.Errorf("gorm connection cannot be nil")
	}
	if err := conn.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Record appends a terminal outcome. Implements queue.Recorder.
func (s *Store) Record(out queue.Outcome) error {
	rec := &Record{
		QueueID:    out.QueueID,
		Handle:     out.Handle,
		URL:        out.URL,
		Path:       out.Path,
		State:      out.State.String(),
		Error:      out.Error,
		Bytes:      out.Bytes,
		TotalBytes: out.TotalBytes,
		FinishedAt: out.FinishedAt,
	}
	if err := s.conn.Create(rec).Error; err != nil {
		return err
	}
	return nil
}

// Recent returns the most recent outcomes, newest first
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []Record
	if err := s.conn.Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the total number of recorded outcomes
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.conn.Model(&Record{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
