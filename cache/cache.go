// Package cache provides the service-wide key/value cache.
//
// By default an in-process cache is used; UseRedisCache switches the whole
// service to a shared redis instance. Values are msgpack-encoded, so any
// cached type must round-trip through msgpack. The cache is never
// authoritative: every entry must be reconstructible from durable storage.
package cache

import (
	"strings"
	"time"

	"github.com/TwiN/gocache/v2"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Cache key prefixes
const (
	KeyCertificate = "cert"
	KeyPDF         = "pdf"
)

// Backend is the minimal contract the service needs from a cache backend.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear(prefix string) error
}

var c Backend = newGocacheBackend()

// Key combines the passed parts into a single cache key.
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get retrieves the value stored at key and unmarshals it into target.
// The returned bool indicates whether the key was set.
func Get(key string, target any) (bool, error) {
	data, set, err := c.Get(key)
	if err != nil || !set {
		return false, err
	}
	if err = msgpack.Unmarshal(data, target); err != nil {
		return false, errors.Wrap(err, "cache: could not decode cached value")
	}
	return true, nil
}

// Set stores the passed value at key with the passed expiration.
func Set(key string, value any, ttl time.Duration) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "cache: could not encode value")
	}
	return c.Set(key, data, ttl)
}

// Delete removes the value stored at key.
func Delete(key string) error {
	return c.Delete(key)
}

// Clear removes all values whose key starts with the passed prefix.
func Clear(prefix string) error {
	return c.Clear(prefix)
}

type gocacheBackend struct {
	g *gocache.Cache
}

func newGocacheBackend() *gocacheBackend {
	g := gocache.NewCache().WithMaxSize(gocache.NoMaxSize)
	_ = g.StartJanitor()
	return &gocacheBackend{g: g}
}

func (b *gocacheBackend) Get(key string) ([]byte, bool, error) {
	v, set := b.g.Get(key)
	if !set {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

func (b *gocacheBackend) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	b.g.SetWithTTL(key, value, ttl)
	return nil
}

func (b *gocacheBackend) Delete(key string) error {
	b.g.Delete(key)
	return nil
}

func (b *gocacheBackend) Clear(prefix string) error {
	for _, k := range b.g.GetKeysByPattern(prefix+"*", 0) {
		b.g.Delete(k)
	}
	return nil
}
