// Copyright (c) 2026 MEhub. All rights reserved.

package script

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MathiasBorgers/MEhub-sub000/internal/platform/constants"
)

// # Download Counter

// RedisDownloadCounter keeps the live per-script download totals.
//
// Totals live only here: the relational row never carries a counter, so
// the hot download path is a single INCR with no write contention on the
// catalog table.
type RedisDownloadCounter struct {
	client *redis.Client
}

// NewDownloadCounter creates a Redis-backed implementation of the DownloadCounter.
func NewDownloadCounter(client *redis.Client) *RedisDownloadCounter {
	return &RedisDownloadCounter{client: client}
}

func downloadKey(scriptID string) string {
	return fmt.Sprintf("%s%s", constants.RedisPrefixDownloads, scriptID)
}

/*
Increment bumps the script's download total and returns the new value.
*/
func (counter *RedisDownloadCounter) Increment(context context.Context, scriptID string) (int64, error) {
	total, err := counter.client.Incr(context, downloadKey(scriptID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_download_counter_incr_failed: %w", err)
	}
	return total, nil
}

/*
Get returns the script's current download total.

Description: A script that has never been downloaded has no key; that
reads as zero rather than an error.

Parameters:
  - context: context.Context
  - scriptID: string

Returns:
  - int64: Current total
  - error: Connectivity errors
*/
func (counter *RedisDownloadCounter) Get(context context.Context, scriptID string) (int64, error) {
	total, err := counter.client.Get(context, downloadKey(scriptID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_download_counter_get_failed: %w", err)
	}
	return total, nil
}

/*
GetMany returns download totals for several scripts in one MGET.

Description: Used when rendering catalog pages so a page of N scripts
costs one round trip instead of N.

Parameters:
  - context: context.Context
  - scriptIDs: []string

Returns:
  - map[string]int64: Totals keyed by script ID (absent keys read as zero)
  - error: Connectivity errors
*/
func (counter *RedisDownloadCounter) GetMany(context context.Context, scriptIDs []string) (map[string]int64, error) {
	totals := make(map[string]int64, len(scriptIDs))
	if len(scriptIDs) == 0 {
		return totals, nil
	}

	keys := make([]string, len(scriptIDs))
	for index, scriptID := range scriptIDs {
		keys[index] = downloadKey(scriptID)
	}

	values, err := counter.client.MGet(context, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_download_counter_mget_failed: %w", err)
	}

	for index, value := range values {
		text, ok := value.(string)
		if !ok {
			continue
		}
		var total int64
		if _, err := fmt.Sscan(text, &total); err != nil {
			continue
		}
		totals[scriptIDs[index]] = total
	}

	return totals, nil
}

// # List Cache

// RedisListCache holds rendered catalog pages for a short window.
type RedisListCache struct {
	client *redis.Client
}

// NewListCache creates a Redis-backed implementation of the ListCache.
func NewListCache(client *redis.Client) *RedisListCache {
	return &RedisListCache{client: client}
}

/*
GetPage returns a cached page payload, or (nil, nil) on a miss.
*/
func (cache *RedisListCache) GetPage(context context.Context, key string) ([]byte, error) {
	payload, err := cache.client.Get(context, constants.RedisPrefixListCache+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_list_cache_get_failed: %w", err)
	}
	return payload, nil
}

/*
SetPage stores a rendered page payload with a TTL.
*/
func (cache *RedisListCache) SetPage(context context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := cache.client.Set(context, constants.RedisPrefixListCache+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_list_cache_set_failed: %w", err)
	}
	return nil
}

/*
Invalidate drops every cached catalog page.

Description: Called after any catalog mutation. Cached pages share one
prefix, so a SCAN plus DEL clears them without touching other keyspaces.

Parameters:
  - context: context.Context

Returns:
  - error: Connectivity errors
*/
func (cache *RedisListCache) Invalidate(context context.Context) error {
	iterator := cache.client.Scan(context, 0, constants.RedisPrefixListCache+"*", 0).Iterator()

	keys := []string{}
	for iterator.Next(context) {
		keys = append(keys, iterator.Val())
	}
	if err := iterator.Err(); err != nil {
		return fmt.Errorf("redis_list_cache_scan_failed: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}
	if err := cache.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_list_cache_del_failed: %w", err)
	}

	return nil
}
