// Copyright (c) 2026 Scholaris Platform. All rights reserved.
// Author: platform-team@scholaris.io

package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/scholaris/admin-gateway/internal/platform/constants"
)

// # Versioned Session Cache

// ErrStaleWrite is returned when a session write carries a version that is
// not newer than the stored one. The caller must drop the write: a fresher
// state (e.g. a logout) has already been recorded.
var ErrStaleWrite = errors.New("session: stale write rejected")

// Record is the server-side session state stored in Redis, keyed by the
// browser-session identifier.
//
// # Versioning
//
// Within one browser tab, last-write-wins is acceptable. Across the shared
// Redis cache it is not: a slow login response must never overwrite a newer
// logout. Every Record carries a monotonically increasing Version, and the
// cache rejects any write whose version does not advance it.
type Record struct {
	// User is the authenticated principal, or nil after logout.
	User *User `json:"user"`
	// TokenHash binds the record to a specific access token so a revoked or
	// replaced credential can never resurrect an old session.
	TokenHash string `json:"token_hash,omitempty"`
	// Version is the optimistic-concurrency counter for this browser session.
	Version int64 `json:"version"`
}

// Cache stores session records in Redis with compare-and-set semantics.
type Cache struct {
	client *redis.Client
}

// NewCache constructs a session cache on top of an existing Redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// casScript writes the record only when the submitted version is strictly
// greater than the stored one. KEYS[1] = data key, KEYS[2] = version key;
// ARGV[1] = payload, ARGV[2] = version, ARGV[3] = TTL in milliseconds.
var casScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '0')
if tonumber(ARGV[2]) <= current then
  return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

/*
Get returns the session record for a browser-session id.

Description: A cache miss is not an error — it simply means the session must
be rehydrated from the credential.

Parameters:
  - context: context.Context
  - browserID: string

Returns:
  - *Record: Stored record, or nil on miss
  - error: Connectivity failures only
*/
func (c *Cache) Get(context context.Context, browserID string) (*Record, error) {
	payload, err := c.client.Get(context, dataKey(browserID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session_cache_get_failed: %w", err)
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		// A corrupt record is treated as a miss; it will be overwritten by
		// the next successful rehydration.
		return nil, nil
	}
	return &record, nil
}

/*
Put stores a session record, enforcing optimistic versioning.

Description: The write succeeds only when record.Version is strictly greater
than the stored version. A rejected write returns [ErrStaleWrite] and leaves
the stored state untouched.

Parameters:
  - context: context.Context
  - browserID: string
  - record: *Record

Returns:
  - error: ErrStaleWrite, or connectivity failures
*/
func (c *Cache) Put(context context.Context, browserID string, record *Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("session_cache_encode_failed: %w", err)
	}

	ok, err := casScript.Run(
		context,
		c.client,
		[]string{dataKey(browserID), versionKey(browserID)},
		payload,
		record.Version,
		constants.SessionCacheTTL.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("session_cache_put_failed: %w", err)
	}
	if ok == 0 {
		return ErrStaleWrite
	}
	return nil
}

// dataKey builds the Redis key for the serialized record.
func dataKey(browserID string) string {
	return constants.RedisPrefixSession + browserID
}

// versionKey builds the Redis key for the version counter.
func versionKey(browserID string) string {
	return constants.RedisPrefixSession + browserID + ":version"
}

// HashToken derives the cache binding for an access token. The raw token is
// never stored server-side.
func HashToken(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}
