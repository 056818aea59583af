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
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFastCache_SetGet(t *testing.T) {
	fc := NewFastCache(FastCacheConfig{MaxBytes: 1024 * 1024})
	ctx := context.Background()

	require.NoError(t, fc.Set(ctx, "k", "v", time.Hour).Err())
	val, err := fc.Get(ctx, "k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	_, err = fc.Get(ctx, "missing").Result()
	assert.True(t, errors.Is(err, redis.Nil))
}

func TestFastCache_Expiration(t *testing.T) {
	fc := NewFastCache(FastCacheConfig{})
	now := time.Now()
	fc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, fc.Set(ctx, "k", []byte("v"), time.Minute).Err())
	assert.Equal(t, "v", fc.Get(ctx, "k").Val())

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, fc.Get(ctx, "k").Err(), redis.Nil)
}

func TestFastCache_StructValueAndDel(t *testing.T) {
	fc := NewFastCache(FastCacheConfig{})
	ctx := context.Background()

	require.NoError(t, fc.Set(ctx, "tables", []string{"a", "b"}, 0).Err())
	assert.JSONEq(t, `["a","b"]`, fc.Get(ctx, "tables").Val())

	assert.Equal(t, int64(1), fc.Del(ctx, "tables", "other").Val())
	assert.ErrorIs(t, fc.Get(ctx, "tables").Err(), redis.Nil)
}

func newMiniredisCache(t *testing.T) (ICache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, mr := newMiniredisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute).Err())
	assert.Equal(t, "v", c.Get(ctx, "k").Val())

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "k").Err(), redis.Nil)
}

func TestCachedQuery_ReadThrough(t *testing.T) {
	for name, c := range map[string]ICache{
		"fastcache": NewFastCache(FastCacheConfig{}),
		"redis":     func() ICache { c, _ := newMiniredisCache(t); return c }(),
	} {
		t.Run(name, func(t *testing.T) {
			calls := 0
			query := func(ctx context.Context) ([]string, error) {
				calls++
				return []string{"orders", "users"}, nil
			}
			cq := NewCachedQuery[[]string](c, WithTTL[[]string](time.Minute))
			ctx := context.Background()

			got, err := cq.Get(ctx, "ds:1:tables", query)
			require.NoError(t, err)
			assert.Equal(t, []string{"orders", "users"}, got)

			got, err = cq.Get(ctx, "ds:1:tables", query)
			require.NoError(t, err)
			assert.Equal(t, []string{"orders", "users"}, got)
			assert.Equal(t, 1, calls)

			require.NoError(t, cq.Invalidate(ctx, "ds:1:tables"))
			_, err = cq.Get(ctx, "ds:1:tables", query)
			require.NoError(t, err)
			assert.Equal(t, 2, calls)
		})
	}
}

func TestCachedQuery_ErrorNotCached(t *testing.T) {
	cq := NewCachedQuery[int](NewFastCache(FastCacheConfig{}))
	ctx := context.Background()

	_, err := cq.Get(ctx, "k", func(ctx context.Context) (int, error) { return 0, errors.New("down") })
	assert.EqualError(t, err, "down")

	v, err := cq.Get(ctx, "k", func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestRedisEnabled(t *testing.T) {
	assert.False(t, Redis{}.Enabled())
	assert.True(t, Redis{Mode: "single", Address: "127.0.0.1:6379"}.Enabled())
	_, err := NewRedisCmdable(Redis{Mode: "cluster", Address: "x"})
	assert.Error(t, err)
}
