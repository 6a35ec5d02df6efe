// Package identity resolves legacy records to stable user ids by email.
package identity

// Cache is the run-scoped email -> user id mapping. It exists so that a
// cross-reference from a later source (a friend's email, a like target)
// resolves without a database round trip per reference.
//
// The cache is explicit state owned by the pipeline run, not a process-wide
// global, and it is only valid within one run: a second run must re-resolve
// through the database unique constraint on email. Single-threaded by the
// pipeline's design, so no locking.
type Cache struct {
	ids map[string]uint64
}

func NewCache() *Cache {
	return &Cache{ids: make(map[string]uint64)}
}

func (c *Cache) Get(email string) (uint64, bool) {
	id, ok := c.ids[email]
	return id, ok
}

func (c *Cache) Put(email string, id uint64) {
	c.ids[email] = id
}

// Forget removes an entry; used when the transaction that created the user
// row was rolled back.
func (c *Cache) Forget(email string) {
	delete(c.ids, email)
}

func (c *Cache) Len() int {
	return len(c.ids)
}
