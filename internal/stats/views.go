// Package stats accumulates public post view counts.
package stats

import (
	"context"
	"time"

	"github.com/inkpress/inkpress/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recorder persists post view counts into daily buckets.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder constructs a Recorder backed by GORM.
func NewRecorder(db *gorm.DB) *Recorder { return &Recorder{db: db} }

// Record increments the view count for a post on today's bucket.
func (r *Recorder) Record(ctx context.Context, postID uint64) error {
	if r == nil || r.db == nil || postID == 0 {
		return nil
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)
	view := models.PostView{PostID: postID, Day: day, Count: 1}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{"count": gorm.Expr("count + 1")}),
		}).
		Create(&view).Error
}

// RecordAsync increments the view count without blocking the read path.
// Failures are logged and otherwise ignored; view counting never breaks a
// public page.
func (r *Recorder) RecordAsync(postID uint64) {
	if r == nil || r.db == nil || postID == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if errRecord := r.Record(ctx, postID); errRecord != nil {
			log.WithError(errRecord).WithField("post_id", postID).Warn("record post view failed")
		}
	}()
}

// PostViewCount pairs a post with its accumulated view count.
type PostViewCount struct {
	PostID uint64 `json:"post_id"`
	Views  uint64 `json:"views"`
}

// TopPosts returns the most viewed posts since the given time.
func (r *Recorder) TopPosts(ctx context.Context, since time.Time, limit int) ([]PostViewCount, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []PostViewCount
	errFind := r.db.WithContext(ctx).
		Model(&models.PostView{}).
		Select("post_id, SUM(count) AS views").
		Where("day >= ?", since.UTC().Truncate(24*time.Hour)).
		Group("post_id").
		Order("views DESC").
		Limit(limit).
		Scan(&rows).Error
	if errFind != nil {
		return nil, errFind
	}
	return rows, nil
}

// TotalViews returns the all-time view count for one post.
func (r *Recorder) TotalViews(ctx context.Context, postID uint64) (uint64, error) {
	var total *uint64
	errScan := r.db.WithContext(ctx).
		Model(&models.PostView{}).
		Select("SUM(count)").
		Where("post_id = ?", postID).
		Scan(&total).Error
	if errScan != nil {
		return 0, errScan
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
