package layout

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 64
	defaultCacheTTL  = 5 * time.Minute
)

// Cache memoizes BuildMonth results keyed by a fingerprint of the full input
// tuple. Because the computation is pure, a stale entry is simply evicted
// and recomputed, never patched. Safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, *MonthLayout]
}

// NewCache creates a memoization cache. Non-positive size/ttl select the
// defaults.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{
		lru: expirable.NewLRU[string, *MonthLayout](size, nil, ttl),
	}
}

// BuildMonth returns the memoized layout for the input, computing it on miss.
func (c *Cache) BuildMonth(in Input) *MonthLayout {
	key := fingerprint(in)
	if cached, ok := c.lru.Get(key); ok {
		return cached
	}
	out := BuildMonth(in)
	c.lru.Add(key, out)
	return out
}

// Len reports the number of live entries, mainly for introspection.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// fingerprint hashes everything a computation depends on: month, settings,
// timezone and the event set. Now is folded in (bucketed to the minute) only
// when HideEndedEvents makes results time-dependent.
func fingerprint(in Input) string {
	h := sha256.New()
	buf := make([]byte, 8)

	writeInt := func(v int64) {
		binary.BigEndian.PutUint64(buf, uint64(v))
		h.Write(buf)
	}
	writeStr := func(s string) {
		writeInt(int64(len(s)))
		h.Write([]byte(s))
	}

	writeInt(int64(in.Month.Year))
	writeInt(int64(in.Month.Month))

	s := in.Settings.Normalize()
	writeStr(string(s.WeekStartDay))
	writeStr(string(s.EventStyle))
	flags := int64(0)
	if s.ShowAdjacentMonths {
		flags |= 1
	}
	if s.ShowWeekNumbers {
		flags |= 2
	}
	if s.HideEndedEvents {
		flags |= 4
	}
	if s.CompactMode {
		flags |= 8
	}
	writeInt(flags)

	loc := in.Location
	if loc == nil {
		loc = time.Local
	}
	writeStr(loc.String())

	if s.HideEndedEvents {
		writeInt(in.Now.Truncate(time.Minute).Unix())
	}

	writeInt(int64(len(in.Events)))
	for _, ev := range in.Events {
		writeInt(ev.ID)
		writeInt(ev.StartUTC.UnixNano())
		writeInt(ev.EndUTC.UnixNano())
		writeInt(int64(ev.ColorIndex))
		writeStr(ev.Name)
	}

	return hex.EncodeToString(h.Sum(nil))
}
