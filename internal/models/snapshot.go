// Package models defines data structures and domain types.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// ClickEvent is a single recorded redirect as reported by the backend.
type ClickEvent struct {
	OccurredAt    time.Time
	UserAgent     string
	OriginAddress string
	HasOrigin     bool
}

// Bucket is a count keyed by a calendar period or a category label.
type Bucket struct {
	Key   string
	Count int
}

// BucketMap is a keyed set of counts that remembers the order in which keys
// first appeared in the response body. Keys are unique.
type BucketMap []Bucket

// DailyBucketMap is keyed by YYYY-MM-DD.
type DailyBucketMap = BucketMap

// MonthlyBucketMap is keyed by YYYY-MM.
type MonthlyBucketMap = BucketMap

// CategoryCount is keyed by the raw user-agent label.
type CategoryCount = BucketMap

// Get returns the count stored under key.
func (b BucketMap) Get(key string) (int, bool) {
	for _, bucket := range b {
		if bucket.Key == key {
			return bucket.Count, true
		}
	}
	return 0, false
}

// Len returns the number of distinct keys.
func (b BucketMap) Len() int {
	return len(b)
}

// SortedByKey returns a copy ordered ascending by key.
func (b BucketMap) SortedByKey() []Bucket {
	sorted := make([]Bucket, len(b))
	copy(sorted, b)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

// UnmarshalJSON decodes a JSON object of non-negative integer counts, keeping
// first-occurrence order. A repeated key overwrites the earlier count in place.
func (b *BucketMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("bucket map: %w", err)
	}
	if tok == nil {
		*b = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("bucket map: expected object, got %v", tok)
	}

	var out BucketMap
	index := make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("bucket map: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("bucket map: unexpected key %v", keyTok)
		}

		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("bucket %q: %w", key, err)
		}
		if count < 0 {
			return fmt.Errorf("bucket %q: negative count %d", key, count)
		}

		if i, seen := index[key]; seen {
			out[i].Count = count
			continue
		}
		index[key] = len(out)
		out = append(out, Bucket{Key: key, Count: count})
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("bucket map: %w", err)
	}

	*b = out
	return nil
}

// Snapshot is one complete analytics result for an alias. Each successful
// read produces a new Snapshot; snapshots are never merged.
type Snapshot struct {
	TotalClicks   int
	DailyStats    DailyBucketMap
	MonthlyStats  MonthlyBucketMap
	CategoryStats CategoryCount
	RecentClicks  []ClickEvent
}
