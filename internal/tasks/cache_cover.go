package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

// CoverFetcher downloads and stores a cover image.
type CoverFetcher interface {
	GetCover(ctx context.Context, entryID, coverURL string) (string, error)
}

// CacheCoverTask downloads the cover of a newly shelved book.
type CacheCoverTask struct {
	EntryID string `json:"entry_id"`
	URL     string `json:"url"`
}

// Config returns the queue configuration for cover caching tasks.
func (t CacheCoverTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cache_cover",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: true,
		},
	}
}

// CacheCoverProcessor creates a processor function for CacheCoverTask.
func CacheCoverProcessor(fetcher CoverFetcher) backlite.QueueProcessor[CacheCoverTask] {
	return func(ctx context.Context, task CacheCoverTask) error {
		if fetcher == nil {
			return fmt.Errorf("cover cache not configured")
		}
		if _, err := fetcher.GetCover(ctx, task.EntryID, task.URL); err != nil {
			return fmt.Errorf("cache cover for %s: %w", task.EntryID, err)
		}
		return nil
	}
}

// NewCacheCoverQueue creates a backlite queue for cover caching tasks.
func NewCacheCoverQueue(fetcher CoverFetcher) backlite.Queue {
	return backlite.NewQueue(CacheCoverProcessor(fetcher))
}
