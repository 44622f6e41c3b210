// Package cache is the response cache that sits in front of read endpoints.
//
// Entries expire a fixed TTL after they were written, independent of reads. Writes invalidate
// whole namespaces: a playlist change by one user drops every user's cached playlist
// listing.
package cache

import (
	"context"
	"strconv"
	"strings"
)

// Namespace groups cache keys that are invalidated together.
type Namespace string

const (
	NamespaceSongs     Namespace = "songs"
	NamespaceSearch    Namespace = "search"
	NamespacePlaylists Namespace = "playlists"
	NamespaceUploaded  Namespace = "uploaded"
)

// Key identifies one cached response: the route namespace plus the parameters that
// discriminate it (limit/order, search term, requesting user).
type Key struct {
	Namespace Namespace
	Scope     string
}

func (k Key) String() string {
	return string(k.Namespace) + ":" + k.Scope
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, bool) {
	ns, scope, ok := strings.Cut(s, ":")
	if !ok || ns == "" {
		return Key{}, false
	}
	return Key{Namespace: Namespace(ns), Scope: scope}, true
}

// SongsKey 歌曲列表缓存键：songs:{limit|all}:{order|default}
func SongsKey(limit int, order string) Key {
	l := "all"
	if limit > 0 {
		l = strconv.Itoa(limit)
	}
	if order == "" {
		order = "default"
	}
	return Key{Namespace: NamespaceSongs, Scope: l + ":" + order}
}

// SearchKey expects an already normalized (trimmed, lowercased) query.
func SearchKey(query string) Key {
	return Key{Namespace: NamespaceSearch, Scope: query}
}

// PlaylistsKey 每个用户可见歌单列表的缓存键
func PlaylistsKey(userID int64) Key {
	return Key{Namespace: NamespacePlaylists, Scope: strconv.FormatInt(userID, 10)}
}

// UploadedKey 每个用户上传歌曲列表的缓存键
func UploadedKey(userID int64) Key {
	return Key{Namespace: NamespaceUploaded, Scope: strconv.FormatInt(userID, 10)}
}

// InNamespace returns a predicate matching every key in any of the namespaces.
func InNamespace(namespaces ...Namespace) func(Key) bool {
	return func(k Key) bool {
		for _, ns := range namespaces {
			if k.Namespace == ns {
				return true
			}
		}
		return false
	}
}

// Cache is implemented by MemoryCache and RedisCache. Values are opaque bytes.
type Cache interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	// Invalidate removes every key accepted by match and returns how many were removed.
	Invalidate(ctx context.Context, match func(Key) bool) (int, error)
	InvalidateAll(ctx context.Context) error
}
