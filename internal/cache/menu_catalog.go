// Package cache keeps menu existence lookups in Redis.
package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"kitchenpos/internal/logger"
)

// MenuSetKey holds the ids of menus known to exist
const MenuSetKey = "kitchenpos:menus"

// MenuCounter counts existing menus among ids
type MenuCounter interface {
	CountMenus(ctx context.Context, ids []int64) (int, error)
}

// MenuCatalog answers CountMenus from a Redis set and asks next for ids it has not seen.
// Menus are never deleted, so a cached id stays valid.
type MenuCatalog struct {
	rdb    redis.Cmdable
	next   MenuCounter
	logger *logger.Logger
	group  singleflight.Group
}

func NewMenuCatalog(rdb redis.Cmdable, next MenuCounter, log *logger.Logger) *MenuCatalog {
	return &MenuCatalog{rdb: rdb, next: next, logger: log}
}

func (m *MenuCatalog) CountMenus(ctx context.Context, ids []int64) (int, error) {
	ids = distinct(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = strconv.FormatInt(id, 10)
	}

	cached, err := m.rdb.SMIsMember(ctx, MenuSetKey, members...).Result()
	if err != nil {
		m.logger.Warn("cache_lookup_failed", "Menu cache unavailable, reading from store", "", map[string]interface{}{
			"error": err.Error(),
		})
		return m.next.CountMenus(ctx, ids)
	}

	hits := 0
	var misses []int64
	for i, ok := range cached {
		if ok {
			hits++
		} else {
			misses = append(misses, ids[i])
		}
	}
	if len(misses) == 0 {
		return hits, nil
	}

	found, err := m.countMisses(ctx, misses)
	if err != nil {
		return 0, err
	}
	return hits + found, nil
}

// countMisses collapses identical concurrent lookups into one store query
func (m *MenuCatalog) countMisses(ctx context.Context, misses []int64) (int, error) {
	v, err, _ := m.group.Do(groupKey(misses), func() (interface{}, error) {
		found, err := m.next.CountMenus(ctx, misses)
		if err != nil {
			return 0, err
		}

		// only a full match tells which ids exist
		if found == len(misses) {
			members := make([]interface{}, len(misses))
			for i, id := range misses {
				members[i] = strconv.FormatInt(id, 10)
			}
			if err := m.rdb.SAdd(ctx, MenuSetKey, members...).Err(); err != nil {
				m.logger.Warn("cache_store_failed", "Failed to cache menu ids", "", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
		return found, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func groupKey(ids []int64) string {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
