package store

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DownloadLog is one recorded certificate download.
type DownloadLog struct {
	ID            uint `gorm:"primaryKey"`
	ParticipantID int  `gorm:"index"`
	IPAddress     string
	DownloadedAt  time.Time
}

// DownloadRecorder persists download activity to sqlite.
type DownloadRecorder struct {
	db *gorm.DB
}

// OpenDownloadLog opens (or creates) the download log database. Use
// "file::memory:?cache=shared" for an in-memory log.
func OpenDownloadLog(dsn string) (*DownloadRecorder, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&DownloadLog{}); err != nil {
		return nil, err
	}
	return &DownloadRecorder{db: db}, nil
}

// Record logs one download for a participant.
func (r *DownloadRecorder) Record(participantID int, ip string) error {
	return r.db.Create(&DownloadLog{
		ParticipantID: participantID,
		IPAddress:     ip,
		DownloadedAt:  time.Now().UTC(),
	}).Error
}

// Count returns the number of recorded downloads for a participant.
func (r *DownloadRecorder) Count(participantID int) (int64, error) {
	var n int64
	err := r.db.Model(&DownloadLog{}).
		Where("participant_id = ?", participantID).
		Count(&n).Error
	return n, err
}
