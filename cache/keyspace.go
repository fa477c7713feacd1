package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// TTL classes. Entities change rarely and owning write paths overwrite them;
// list pages past the first are read far less and go stale faster.
const (
	TTLEntity        = 30 * 24 * time.Hour
	TTLTopic         = 24 * time.Hour
	TTLListFirstPage = 24 * time.Hour
	TTLListPage      = time.Hour
	TTLLock          = time.Hour
)

const lockPrefix = "lock:"

// KeySpace builds every cache key used by the service. Keys are pure
// functions of their inputs.
type KeySpace struct {
	prefix     string
	serializer KeySerializer
}

// NewKeySpace returns a key space whose keys all start with prefix.
func NewKeySpace(prefix string) KeySpace {
	return KeySpace{prefix: prefix, serializer: NewDefaultKeySerializer()}
}

// Entity is the key of one cached record of kind, e.g. "subject:slim:8".
func (k KeySpace) Entity(kind string, id uint32) string {
	return k.prefix + kind + ":" + strconv.FormatUint(uint64(id), 10)
}

// Entities maps ids to entity keys, keeping order.
func (k KeySpace) Entities(kind string, ids []uint32) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = k.Entity(kind, id)
	}
	return keys
}

// List is the key of one cached page of a filtered, sorted listing.
// The filter is hashed, so semantically equal filters share a key; fields
// tagged `cachekey:"set"` are compared as sets.
func (k KeySpace) List(kind string, filter any, sort string, page int) string {
	digest := xxhash.Sum64String(k.serializer.SerializeKey(kind, filter))
	return strings.Join([]string{
		k.prefix + kind,
		"browse",
		strconv.FormatUint(digest, 16),
		sort,
		strconv.Itoa(page),
	}, ":")
}

// Trending is the key holding the ranked list of kind for one group and period.
func (k KeySpace) Trending(kind string, group uint8, period string) string {
	return k.prefix + "trending:" + kind + ":" + strconv.Itoa(int(group)) + ":" + period
}

// Lock is the key of the advisory lock guarding target.
func (k KeySpace) Lock(target string) string {
	return lockPrefix + target
}
