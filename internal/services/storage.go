package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/models"
)

const (
	workItemsBucket = "work_items"
	runsBucket      = "runs"
	metadataBucket  = "metadata"
	lastRefreshKey  = "last_refresh"
)

// cachedWorkItem wraps a work item with its cache timestamp so stale
// entries can be aged out on read.
type cachedWorkItem struct {
	Item     *models.WorkItem `json:"item"`
	CachedAt time.Time        `json:"cached_at"`
}

type storage struct {
	db     *bolt.DB
	config *common.StorageConfig
}

func NewStorage(config *common.StorageConfig) (interfaces.Storage, error) {
	dbDir := filepath.Dir(config.DatabasePath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(config.DatabasePath, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{workItemsBucket, runsBucket, metadataBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &storage{
		db:     db,
		config: config,
	}, nil
}

func (s *storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveWorkItems caches fetched work items with the current timestamp.
func (s *storage) SaveWorkItems(items map[int]*models.WorkItem) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(workItemsBucket))
		now := time.Now()

		for id, item := range items {
			data, err := json.Marshal(cachedWorkItem{Item: item, CachedAt: now})
			if err != nil {
				return fmt.Errorf("failed to marshal work item %d: %w", id, err)
			}
			if err := bucket.Put(workItemKey(id), data); err != nil {
				return fmt.Errorf("failed to save work item %d: %w", id, err)
			}
		}

		metaBucket := tx.Bucket([]byte(metadataBucket))
		refreshData, _ := now.MarshalBinary()
		return metaBucket.Put([]byte(lastRefreshKey), refreshData)
	})
}

// LoadWorkItems returns the cached work items among ids that are still
// within the cache TTL. Missing or expired entries are simply absent.
func (s *storage) LoadWorkItems(ids []int) (map[int]*models.WorkItem, error) {
	items := make(map[int]*models.WorkItem)
	cutoff := time.Now().Add(-time.Duration(s.config.CacheTTLHours) * time.Hour)

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(workItemsBucket))

		for _, id := range ids {
			data := bucket.Get(workItemKey(id))
			if data == nil {
				continue
			}
			var cached cachedWorkItem
			if err := json.Unmarshal(data, &cached); err != nil {
				continue
			}
			if cached.Item == nil || cached.CachedAt.Before(cutoff) {
				continue
			}
			items[id] = cached.Item
		}
		return nil
	})

	return items, err
}

// SaveRunSummary persists the outcome of one reconciliation run.
func (s *storage) SaveRunSummary(summary *models.RunSummary) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))

		data, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal run summary %s: %w", summary.RunID, err)
		}

		key := []byte(fmt.Sprintf("%s:%s", summary.GeneratedAt.UTC().Format(time.RFC3339), summary.RunID))
		if err := bucket.Put(key, data); err != nil {
			return err
		}

		return s.pruneRuns(bucket)
	})
}

// pruneRuns drops run history older than the retention window. Keys
// lead with the RFC3339 timestamp so the cursor walks chronologically.
func (s *storage) pruneRuns(bucket *bolt.Bucket) error {
	if s.config.RetentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -s.config.RetentionDays).Format(time.RFC3339)

	c := bucket.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		ts := string(k)
		if idx := strings.LastIndexByte(ts, ':'); idx > 0 {
			ts = ts[:idx]
		}
		if ts >= cutoff {
			break
		}
		if err := c.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// LoadRunSummaries returns the stored run history, newest first.
func (s *storage) LoadRunSummaries() ([]*models.RunSummary, error) {
	var summaries []*models.RunSummary

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))

		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var summary models.RunSummary
			if err := json.Unmarshal(v, &summary); err != nil {
				continue
			}
			summaries = append(summaries, &summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].GeneratedAt.After(summaries[j].GeneratedAt)
	})

	return summaries, nil
}

// LastRefresh reports when the work item cache was last written.
func (s *storage) LastRefresh() (string, error) {
	var lastRefresh time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		metaBucket := tx.Bucket([]byte(metadataBucket))
		data := metaBucket.Get([]byte(lastRefreshKey))

		if data == nil {
			return nil
		}
		return lastRefresh.UnmarshalBinary(data)
	})
	if err != nil {
		return "", err
	}

	if lastRefresh.IsZero() {
		return "", nil
	}
	return lastRefresh.Format("2006-01-02 15:04"), nil
}

func workItemKey(id int) []byte {
	return []byte(fmt.Sprintf("%08d", id))
}
