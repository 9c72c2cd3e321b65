package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CollectionDocument is the single-row-per-collection model used by the SQL backends.
type CollectionDocument struct {
	Name      string `gorm:"primaryKey;size:64"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// GormBackend works with any gorm dialect; sqlite and mysql are wired in bootstrap.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&CollectionDocument{}); err != nil {
		return nil, err
	}
	return &GormBackend{db: db}, nil
}

func (r *GormBackend) Read(ctx context.Context, c Collection) ([]byte, error) {
	var doc CollectionDocument
	err := r.db.WithContext(ctx).First(&doc, "name = ?", string(c)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(doc.Payload), nil
}

func (r *GormBackend) Write(ctx context.Context, writes []Write) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			doc := CollectionDocument{Name: string(w.Collection), Payload: string(w.Data), UpdatedAt: time.Now()}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
			}).Create(&doc).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

var _ Backend = (*GormBackend)(nil)
