package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"texlint/internal/diag"
	"texlint/internal/latex"
)

// diskCacheSchemaVersion is bumped whenever DiskPayload or the validator output changes.
const diskCacheSchemaVersion uint16 = 1

// CacheKey identifies validator output for one content + options pair.
type CacheKey [sha256.Size]byte

// String returns the hex form of the key.
func (k CacheKey) String() string {
	return hex.EncodeToString(k[:])
}

// NewCacheKey hashes content together with everything that changes the
// validator output for it.
func NewCacheKey(content []byte, opts latex.Options) CacheKey {
	h := sha256.New()
	var hdr [3]byte
	binary.LittleEndian.PutUint16(hdr[:2], diskCacheSchemaVersion)
	if opts.ReportUnclosedBrackets {
		hdr[2] = 1
	}
	h.Write(hdr[:])
	h.Write(content)
	var key CacheKey
	copy(key[:], h.Sum(nil))
	return key
}

// DiskCache хранит результаты валидации на диске, по ключу от содержимого.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores the raw validator output for one document.
// Filtering and limits are applied after a cache hit, so they are not part of it.
type DiskPayload struct {
	Schema      uint16
	Path        string // informational; the key does not depend on it
	Diagnostics []diag.Diagnostic
}

// OpenDiskCache opens the cache under the user cache directory
// ($XDG_CACHE_HOME or ~/.cache on Linux).
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens (creating if needed) a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key CacheKey) string {
	hexKey := key.String()
	// подкаталог по первым двум символам, чтобы не держать всё в одной папке
	return filepath.Join(c.dir, "diag", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key CacheKey, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	payload.Schema = diskCacheSchemaVersion
	return writeAtomic(p, 0o644, func(w io.Writer) error {
		return msgpack.NewEncoder(w).Encode(payload)
	})
}

// Get reads and deserializes a payload from the disk cache.
// Entries written with another schema version count as misses.
func (c *DiskCache) Get(key CacheKey, out *DiskPayload) (bool, error) {
	if c == nil || out == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	*out = DiskPayload{}
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		*out = DiskPayload{}
		return false, nil
	}
	return true, nil
}

// DropAll removes every entry; the cache stays usable.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "diag"))
}
