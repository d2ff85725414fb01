// Cache backs GetLocalHandle for remote endpoints with an embedded
// key-value store, so repeated probes of the same remote file (a
// continuation run re-reading a file already scanned, say) reuse the
// already-downloaded local copy instead of refetching.
package blob

import (
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Cache maps "bucket/key" to a local filesystem path still valid on
// disk.
type Cache struct {
	db *badger.DB
}

// OpenCache opens (creating if absent) a badger database rooted at
// dir to back a Cache.
func OpenCache(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(bucket, key string) []byte {
	return []byte(bucket + "/" + key)
}

// Lookup returns the cached local path for bucket/key, verifying it
// still exists on disk (a prior run's temp file may have been
// cleaned up by the OS).
func (c *Cache) Lookup(bucket, key string) (string, bool) {
	var localPath string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(bucket, key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			localPath = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false
	}
	if _, statErr := os.Stat(localPath); statErr != nil {
		return "", false
	}
	return localPath, true
}

// Store records that bucket/key's content now lives at localPath.
func (c *Cache) Store(bucket, key, localPath string) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cacheKey(bucket, key), []byte(localPath))
	})
}
