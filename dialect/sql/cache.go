package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/joinsql"
)

// Fragment is a rendered FROM clause as stored in a joinsql.Cache.
type Fragment struct {
	Dialect    string    `msgpack:"dialect"`
	SQL        string    `msgpack:"sql"`
	RenderedAt time.Time `msgpack:"rendered_at"`
}

// RenderCached renders src for the given dialect, reusing a fragment cached
// under CacheKey{dialect, src.Key()} when present. Fragments are stored
// msgpack encoded with the given ttl. The returned bool reports a cache hit.
func RenderCached(ctx context.Context, c joinsql.Cache, src *joinsql.Source, dialectName string, ttl time.Duration) (*Fragment, bool, error) {
	key := joinsql.CacheKey{Dialect: dialectName, Fingerprint: src.Key()}.String()
	data, err := c.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("dialect/sql: cache get: %w", err)
	}
	if data != nil {
		var frag Fragment
		if err := msgpack.Unmarshal(data, &frag); err == nil {
			return &frag, true, nil
		}
		// A corrupt entry is replaced by a fresh render.
		if err := c.Delete(ctx, key); err != nil {
			return nil, false, fmt.Errorf("dialect/sql: cache delete: %w", err)
		}
	}
	f, err := FormatterFor(dialectName)
	if err != nil {
		return nil, false, err
	}
	query, err := NewSourceDB(src).CreateSQLWith(f)
	if err != nil {
		return nil, false, joinsql.NewQueryError(src.Name, "render", err)
	}
	frag := &Fragment{Dialect: dialectName, SQL: query, RenderedAt: time.Now().UTC()}
	if data, err = msgpack.Marshal(frag); err != nil {
		return nil, false, fmt.Errorf("dialect/sql: encode fragment: %w", err)
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return nil, false, fmt.Errorf("dialect/sql: cache set: %w", err)
	}
	return frag, false, nil
}
