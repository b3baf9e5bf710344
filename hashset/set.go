// package hashset provides an open addressing set that deduplicates values.
// Adding a value equal to one already present returns the stored value, so the
// set can be used to pick a single canonical instance per distinct value.
package hashset

import (
	"iter"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/breezy-team/breezy-sub003/internal/debug"
)

// Key is anything that can probe a Set by value.
type Key interface {
	Hash() uint64
}

// Value is implemented by types stored in a Set. Values that report Equal
// must have the same Hash. Equal is called with either another stored value
// or with the Key passed to Lookup, so it may receive foreign types and must
// return false for those it does not understand.
//
// Hashes are not cached by the set: Hash should be cheap.
type Value interface {
	comparable
	Key
	Equal(other any) bool
}

// Set is an open addressing hash set using perturbed probing. The zero value
// is an empty set ready to use. It is not safe for concurrent use.
//
// A nil *Set reads as empty: Len, Get, Lookup, Contains, Stats, Slots and All
// report nothing. Add, Discard and Compact on a nil *Set return
// ErrInvalidArgument.
type Set[T Value] struct {
	slots []slot[T]
	used  int // occupied slots
	fill  int // occupied and tombstone slots
	max   int
}

// New constructs an empty Set.
func New[T Value](opts ...Option) (*Set[T], error) {
	c := config{capacity: minCapacity, max: maxCapacity}
	for _, opt := range opts {
		opt(&c)
	}
	if c.max < minCapacity {
		return nil, errors.Wrapf(ErrInvalidArgument, "max capacity %d below %d", c.max, minCapacity)
	}
	if c.capacity > c.max {
		return nil, errors.Wrapf(ErrOutOfMemory, "capacity %d exceeds max %d", c.capacity, c.max)
	}
	return &Set[T]{slots: make([]slot[T], c.capacity), max: c.max}, nil
}

// Len returns the number of values in the set.
func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return s.used
}

// lookup walks the probe sequence for hash h. If a stored value matches key
// it returns that slot index as found. free is the first tombstone passed on
// the way or else the terminating empty slot, and is -1 only when found.
// When identity is set, a slot holding exactly self matches without calling
// Equal.
func (s *Set[T]) lookup(h uint64, key any, self T, identity bool) (found, free int) {
	if len(s.slots) == 0 {
		return -1, -1
	}

	mask := uint64(len(s.slots) - 1)
	i := h & mask
	free = -1

	for perturb := h; ; perturb >>= perturbShift {
		sl := &s.slots[i]

		switch sl.state {
		case Empty:
			if free < 0 {
				free = int(i)
			}
			return -1, free

		case Tombstone:
			// keep going: an equal value may live further down the chain
			if free < 0 {
				free = int(i)
			}

		default:
			if identity && sl.val == self {
				return int(i), -1
			}
			if sl.val.Hash() == h && sl.val.Equal(key) {
				return int(i), -1
			}
		}

		i = ((i << 2) + i + perturb + 1) & mask
	}
}

// Add stores v unless an equal value is present, and returns the stored
// value in either case.
func (s *Set[T]) Add(v T) (T, error) {
	if s == nil {
		var zero T
		return zero, errors.Wrap(ErrInvalidArgument, "add to nil set")
	}
	if s.slots == nil {
		s.slots = make([]slot[T], minCapacity)
		if s.max == 0 {
			s.max = maxCapacity
		}
	}

	h := v.Hash()
	found, free := s.lookup(h, v, v, true)
	if found >= 0 {
		return s.slots[found].val, nil
	}

	// only claiming a never used slot raises fill, so tombstone reuse never
	// triggers a resize.
	if s.slots[free].state == Empty && (s.fill+1)*loadDen >= len(s.slots)*loadNum {
		if err := s.resize(s.used + 1); err != nil {
			var zero T
			return zero, err
		}
		free = s.emptySlot(h)
	}

	sl := &s.slots[free]
	if sl.state == Empty {
		s.fill++
	}
	sl.state, sl.val = Occupied, v
	s.used++

	debug.Assert(func() bool { return s.used <= s.fill && s.fill < len(s.slots) },
		"used %d fill %d slots %d", s.used, s.fill, len(s.slots))

	return v, nil
}

// Get returns the stored value equal to v.
func (s *Set[T]) Get(v T) (T, bool) {
	if s == nil {
		var zero T
		return zero, false
	}
	found, _ := s.lookup(v.Hash(), v, v, true)
	if found < 0 {
		var zero T
		return zero, false
	}
	return s.slots[found].val, true
}

// Lookup returns the stored value equal to k, where k may be any
// representation the stored values know how to compare against.
func (s *Set[T]) Lookup(k Key) (T, bool) {
	var zero T
	if s == nil || k == nil {
		return zero, false
	}
	found, _ := s.lookup(k.Hash(), k, zero, false)
	if found < 0 {
		return zero, false
	}
	return s.slots[found].val, true
}

// Contains returns true if a value equal to v is stored.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.Get(v)
	return ok
}

// Discard removes the value equal to v, leaving a tombstone in its slot. It
// returns true if a value was removed.
func (s *Set[T]) Discard(v T) (bool, error) {
	if s == nil {
		return false, errors.Wrap(ErrInvalidArgument, "discard from nil set")
	}
	if s.used == 0 {
		return false, nil
	}

	found, _ := s.lookup(v.Hash(), v, v, true)
	if found < 0 {
		return false, nil
	}

	s.slots[found] = slot[T]{state: Tombstone}
	s.used--
	return true, nil
}

// Compact rebuilds the table at the smallest size the load policy allows for
// the current values, dropping every tombstone.
func (s *Set[T]) Compact() error {
	if s == nil {
		return errors.Wrap(ErrInvalidArgument, "compact nil set")
	}
	return s.resize(s.used)
}

// growSize returns the table size to rehash into when holding used values.
func growSize(used int) int {
	factor := 4
	if used > bigTable {
		factor = 2
	}
	size := minCapacity
	for size > 0 && size <= used*factor {
		size <<= 1
	}
	return size
}

// resize rehashes every live value into a fresh table sized for used values.
// Tombstones are not carried over.
func (s *Set[T]) resize(used int) error {
	size := growSize(used)
	if size <= 0 || size > s.max {
		return errors.Wrapf(ErrOutOfMemory, "table of %d slots for %d values exceeds max %d",
			size, used, s.max)
	}

	old := s.slots
	log.WithFields(log.Fields{
		"old":  len(old),
		"new":  size,
		"used": s.used,
		"fill": s.fill,
	}).Debug("hashset resize")

	s.slots = make([]slot[T], size)
	s.fill = s.used

	for i := range old {
		if old[i].state != Occupied {
			continue
		}
		val := old[i].val
		s.slots[s.emptySlot(val.Hash())] = slot[T]{state: Occupied, val: val}
	}

	return nil
}

// emptySlot returns the first empty slot in the probe sequence for h. It is
// only valid on a table without tombstones that cannot contain an equal
// value, such as one being rebuilt.
func (s *Set[T]) emptySlot(h uint64) int {
	mask := uint64(len(s.slots) - 1)
	i := h & mask
	for perturb := h; s.slots[i].state != Empty; perturb >>= perturbShift {
		i = ((i << 2) + i + perturb + 1) & mask
	}
	return int(i)
}

// All iterates the live values in table order. The set must not be modified
// during iteration.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s == nil {
			return
		}
		for i := range s.slots {
			if s.slots[i].state == Occupied && !yield(s.slots[i].val) {
				return
			}
		}
	}
}

// Stats is a snapshot of the table occupancy.
type Stats struct {
	Used       int // occupied slots
	Fill       int // occupied and tombstone slots
	Tombstones int
	Capacity   int // total slots
}

// Stats returns the current table occupancy.
func (s *Set[T]) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		Used:       s.used,
		Fill:       s.fill,
		Tombstones: s.fill - s.used,
		Capacity:   len(s.slots),
	}
}

// Slots returns the state of every slot in table order.
func (s *Set[T]) Slots() []State {
	if s == nil {
		return nil
	}
	out := make([]State, len(s.slots))
	for i := range s.slots {
		out[i] = s.slots[i].state
	}
	return out
}
