package hashset

import "math/bits"

const (
	minCapacity = 8

	// 1<<40 slots on 64 bit platforms, 1<<24 on 32 bit ones.
	maxCapacity = 1 << (bits.UintSize/2 + 8)

	// the table grows once fill reaches loadNum/loadDen of the slots.
	loadNum = 3
	loadDen = 5

	// past this many values the table grows by 2x used instead of 4x.
	bigTable = 50000

	perturbShift = 5
)

type config struct {
	capacity int
	max      int
}

// Option configures a Set created with New.
type Option func(*config)

// WithCapacity sizes the initial table so that n values fit without a
// resize.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = tableSize(n, minCapacity) }
}

// WithMaxCapacity bounds the number of slots the table may grow to. Adds that
// would need a larger table fail with ErrOutOfMemory.
func WithMaxCapacity(slots int) Option {
	return func(c *config) { c.max = slots }
}

// tableSize returns the smallest power of two, at least min, whose load
// threshold is above n.
func tableSize(n, min int) int {
	size := min
	for size > 0 && n*loadDen >= size*loadNum {
		size <<= 1
	}
	if size <= 0 {
		// overflowed, report something larger than any max
		return int(^uint(0) >> 1)
	}
	return size
}
