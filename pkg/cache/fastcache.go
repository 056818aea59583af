// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

type FastCacheConfig struct {
	MaxBytes int // default 16MB
}

// FastCache is an in-process ICache. Each entry is stored as an 8 byte
// big-endian unix-nano deadline (0 = no expiry) followed by the value, so
// expiry is checked lazily on read.
type FastCache struct {
	cache *fastcache.Cache
	now   func() time.Time
}

func NewFastCache(conf FastCacheConfig) *FastCache {
	maxBytes := conf.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 16 * 1024 * 1024
	}
	return &FastCache{
		cache: fastcache.New(maxBytes),
		now:   time.Now,
	}
}

func (fc *FastCache) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)

	raw, ok := fc.cache.HasGet(nil, []byte(key))
	if !ok || len(raw) < 8 {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	if deadline := int64(binary.BigEndian.Uint64(raw[:8])); deadline > 0 && fc.now().UnixNano() > deadline {
		fc.cache.Del([]byte(key))
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(raw[8:]))
	return cmd
}

func (fc *FastCache) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)

	var payload []byte
	switch v := value.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		data, err := sonic.Marshal(v)
		if err != nil {
			cmd.SetErr(err)
			return cmd
		}
		payload = data
	}

	var deadline int64
	if expiration > 0 {
		deadline = fc.now().Add(expiration).UnixNano()
	}
	buf := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(deadline))
	fc.cache.Set([]byte(key), append(buf, payload...))

	cmd.SetVal("OK")
	return cmd
}

func (fc *FastCache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, key := range keys {
		if fc.cache.Has([]byte(key)) {
			fc.cache.Del([]byte(key))
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

// Reset drops every entry.
func (fc *FastCache) Reset() {
	fc.cache.Reset()
}
