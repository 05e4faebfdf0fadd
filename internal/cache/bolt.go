package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	dbFileMode    = 0o600
	dbOpenTimeout = time.Second
)

var bucketName = []byte("cache")

type entry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Value     json.RawMessage `json:"value"`
}

// Bolt is a Cache persisted in a bbolt file
type Bolt struct {
	db     *bbolt.DB
	logger *zap.Logger
	now    func() time.Time
}

// OpenBolt opens (or creates) the cache file at path.
func OpenBolt(path string, logger *zap.Logger) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create cache dir")
		}
	}

	db, err := bbolt.Open(path, dbFileMode, &bbolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, errors.Wrap(err, "open cache db")
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create cache bucket")
	}

	return &Bolt{db: db, logger: logger, now: time.Now}, nil
}

// Open returns a bbolt cache when enabled, falling back to Nop on any error.
func Open(enabled bool, path string, logger *zap.Logger) Cache {
	if !enabled {
		return Nop{}
	}
	c, err := OpenBolt(path, logger)
	if err != nil {
		logger.Warn("Cache unavailable, continuing without it", zap.String("path", path), zap.Error(err))
		return Nop{}
	}
	logger.Info("Cache enabled", zap.String("path", path))
	return c
}

// Get implements Cache
func (c *Bolt) Get(key string, dst any) bool {
	var raw []byte
	if err := c.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketName).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		c.logger.Debug("Cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == nil {
		return false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.Delete(key)
		return false
	}
	if !e.ExpiresAt.IsZero() && !c.now().Before(e.ExpiresAt) {
		c.Delete(key)
		return false
	}
	if err := json.Unmarshal(e.Value, dst); err != nil {
		c.logger.Debug("Cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set implements Cache. A ttl of zero means the entry never expires.
func (c *Bolt) Set(key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Debug("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	e := entry{Value: payload}
	if ttl > 0 {
		e.ExpiresAt = c.now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}

	if err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), raw)
	}); err != nil {
		c.logger.Debug("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete implements Cache
func (c *Bolt) Delete(key string) {
	if err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Delete([]byte(key))
	}); err != nil {
		c.logger.Debug("Cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// Close closes the underlying file
func (c *Bolt) Close() error {
	return c.db.Close()
}
