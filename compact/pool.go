package compact

import (
	"fmt"
	"iter"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/breezy-team/breezy-sub003/hashset"
	"github.com/breezy-team/breezy-sub003/internal/debug"
)

// pool holds the canonical instance of every interned tuple. Entries are not
// counted as references: a tuple leaves the pool when its last external
// reference is released.
type pool struct {
	mu    sync.Mutex
	set   *hashset.Set[*Tuple]
	empty *Tuple
}

// interned is the process wide intern pool.
var interned = newPool()

func newPool() *pool {
	set, err := hashset.New[*Tuple](hashset.WithCapacity(1024))
	if err != nil {
		panic(err)
	}

	empty := &Tuple{}
	empty.flags.Store(uint32(tag(0).WithAllText().WithInterned().WithImmortal()))
	if _, err := set.Add(empty); err != nil {
		panic(err)
	}

	log.WithField("capacity", set.Stats().Capacity).Debug("compact intern pool ready")

	return &pool{set: set, empty: empty}
}

// Retain adds a reference to t and returns it. Retaining a tuple whose last
// reference was already released panics.
func (t *Tuple) Retain() *Tuple {
	if t.tag().Immortal() {
		return t
	}
	if t.refs.Add(1) <= 1 {
		panic(fmt.Sprintf("compact: retain of released tuple %v", t))
	}
	return t
}

// tryRetain adds a reference unless the count already reached zero.
func (t *Tuple) tryRetain() bool {
	if t.tag().Immortal() {
		return true
	}
	for {
		n := t.refs.Load()
		if n <= 0 {
			return false
		}
		if t.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a reference to t. Releasing the last reference removes an
// interned tuple from the intern pool and releases the nested tuples it
// holds. Releasing more references than were held panics.
func (t *Tuple) Release() {
	if t.tag().Immortal() {
		return
	}
	n := t.refs.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("compact: release of released tuple %v", t))
	}
	if n > 0 {
		return
	}

	if t.tag().Interned() {
		interned.release(t)
	}
	for _, v := range t.items {
		if c, ok := v.(*Tuple); ok {
			c.Release()
		}
	}
}

// Refs returns the number of external references to t. The intern pool's
// own entry is never included.
func (t *Tuple) Refs() int64 {
	if t.tag().Immortal() {
		return 1
	}
	return t.refs.Load()
}

// Intern returns the canonical instance for the value of t, registering t as
// canonical if there is none yet. Intern consumes the caller's reference to
// t: the returned tuple carries one reference for the caller, and t is
// released if another instance was returned. On error t is not consumed.
//
// Nested tuples are not interned; see InternDeep.
func (t *Tuple) Intern() (*Tuple, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "intern nil tuple")
	}
	if t.tag().Interned() {
		return t, nil
	}

	canon, err := interned.intern(t)
	if err != nil {
		return nil, err
	}
	if canon != t {
		t.Release()
	}
	return canon, nil
}

// InternDeep is like Intern but first interns every nested tuple that is not
// already interned, recursively. Nested tuples that are already interned are
// kept as they are.
func (t *Tuple) InternDeep() (*Tuple, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "intern nil tuple")
	}
	if t.tag().Interned() || t.tag().AllText() {
		return t.Intern()
	}

	nested := false
	for _, v := range t.items {
		if c, ok := v.(*Tuple); ok && !c.IsInterned() {
			nested = true
			break
		}
	}
	if !nested {
		return t.Intern()
	}

	items := make([]any, len(t.items))
	for i, v := range t.items {
		c, ok := v.(*Tuple)
		if !ok {
			items[i] = v
			continue
		}
		ci, err := c.Retain().InternDeep()
		if err != nil {
			c.Release()
			releaseAll(items[:i])
			return nil, err
		}
		items[i] = ci
	}

	// build retains the nested tuples, so drop the references taken above
	deep := build(items)
	releaseAll(items)

	canon, err := deep.Intern()
	if err != nil {
		deep.Release()
		return nil, err
	}
	t.Release()
	return canon, nil
}

func releaseAll(items []any) {
	for _, v := range items {
		if c, ok := v.(*Tuple); ok {
			c.Release()
		}
	}
}

// intern registers t or returns the live canonical instance with an added
// reference.
func (p *pool) intern(t *Tuple) (*Tuple, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// another goroutine may have interned t while we waited
	if t.tag().Interned() {
		return t, nil
	}

	if canon, ok := p.set.Get(t); ok {
		if canon.tryRetain() {
			return canon, nil
		}

		// the canonical instance lost its last reference and its release is
		// waiting on the lock. evict it so t can take its place; the release
		// finds it no longer interned and leaves the pool alone.
		log.WithField("tuple", canon).Debug("compact evict released tuple")
		if _, err := p.set.Discard(canon); err != nil {
			return nil, err
		}
		canon.update(tag.WithoutInterned)
	}

	if _, err := p.set.Add(t); err != nil {
		return nil, errors.WithMessagef(err, "intern %v", t)
	}
	t.update(tag.WithInterned)

	return t, nil
}

// release removes t from the pool after its last reference was dropped.
func (p *pool) release(t *Tuple) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !t.tag().Interned() {
		return
	}
	debug.Assert(func() bool { return t.refs.Load() == 0 }, "release of live tuple %v", t)

	got, ok := p.set.Get(t)
	if !ok || got != t {
		panic(fmt.Sprintf("compact: interned tuple %v missing from intern pool", t))
	}
	if ok, err := p.set.Discard(t); !ok || err != nil {
		panic(fmt.Sprintf("compact: unable to remove %v from intern pool: %v", t, err))
	}
	t.update(tag.WithoutInterned)
}

// lookup returns the live canonical instance equal to key with an added
// reference.
func (p *pool) lookup(key hashset.Key) (*Tuple, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	canon, ok := p.set.Lookup(key)
	if !ok || !canon.tryRetain() {
		return nil, false
	}
	return canon, true
}

// Lookup returns the interned tuple holding the elements, without building
// a tuple. The returned tuple carries a reference for the caller.
func Lookup(elems ...any) (*Tuple, bool) {
	if len(elems) == 0 {
		return Empty(), true
	}
	return interned.lookup(Seq(elems))
}

// Intern builds a tuple from the elements and interns it.
func Intern(elems ...any) (*Tuple, error) {
	t, err := New(elems...)
	if err != nil {
		return nil, err
	}
	return t.Intern()
}

// PoolStats returns the occupancy of the intern pool table.
func PoolStats() hashset.Stats {
	interned.mu.Lock()
	defer interned.mu.Unlock()
	return interned.set.Stats()
}

// PoolSlots returns the state of every slot of the intern pool table.
func PoolSlots() []hashset.State {
	interned.mu.Lock()
	defer interned.mu.Unlock()
	return interned.set.Slots()
}

// Pooled iterates a snapshot of the interned tuples in table order.
func Pooled() iter.Seq[*Tuple] {
	interned.mu.Lock()
	snapshot := make([]*Tuple, 0, interned.set.Len())
	for t := range interned.set.All() {
		snapshot = append(snapshot, t)
	}
	interned.mu.Unlock()

	return func(yield func(*Tuple) bool) {
		for _, t := range snapshot {
			if !yield(t) {
				return
			}
		}
	}
}

// Shrink rebuilds the intern pool table at the smallest size that fits the
// interned tuples.
func Shrink() error {
	interned.mu.Lock()
	defer interned.mu.Unlock()
	return interned.set.Compact()
}
