package compact

import (
	"cmp"

	"github.com/pkg/errors"
)

// Equal reports if other holds equal elements in the same order. other may
// be a *Tuple, a Seq or a []any. Two distinct interned tuples are never
// equal.
func (t *Tuple) Equal(other any) bool {
	if t == nil {
		return false
	}
	switch o := other.(type) {
	case *Tuple:
		return o != nil && equalTuples(t, o)
	case Seq:
		return t.equalSeq(o)
	case []any:
		return t.equalSeq(o)
	}
	return false
}

func (t *Tuple) equalSeq(s []any) bool {
	if len(s) != len(t.items) {
		return false
	}
	for i, v := range s {
		n, _, err := normalize(v)
		if err != nil || !equalElem(t.items[i], n) {
			return false
		}
	}
	return true
}

// Compare orders t against other, which may be a *Tuple, a Seq or a []any.
// It returns a negative number, zero or a positive number as t sorts before,
// equal to or after other. Elements are compared pairwise; a tuple that is a
// strict prefix of the other sorts first.
func (t *Tuple) Compare(other any) (int, error) {
	if t == nil {
		return 0, errors.Wrap(ErrInvalidArgument, "compare nil tuple")
	}
	if o, ok := other.(*Tuple); ok && o != nil {
		return compareTuples(t, o), nil
	}
	rhs, err := itemsOf(other)
	if err != nil {
		return 0, err
	}
	return compareItems(t.items, rhs), nil
}

// Less reports if t sorts before u. A nil tuple sorts before every other.
func (t *Tuple) Less(u *Tuple) bool { return compareTuples(t, u) < 0 }

// Compare orders two tuples, for use with slices.SortFunc and friends. A nil
// tuple sorts before every other and equals nil.
//
// Elements of different kinds are ordered null < bool < number < bytes <
// text < tuple. Integers and floats compare numerically.
func Compare(a, b *Tuple) int { return compareTuples(a, b) }

func equalTuples(a, b *Tuple) bool {
	if a == b {
		return true
	}
	ta, tb := a.tag(), b.tag()
	if ta.Interned() && tb.Interned() {
		return false
	}
	if len(a.items) != len(b.items) {
		return false
	}
	if ta.Hashed() && tb.Hashed() && a.hash.Load() != b.hash.Load() {
		return false
	}

	if ta.AllText() && tb.AllText() {
		for i := range a.items {
			if a.items[i].(string) != b.items[i].(string) {
				return false
			}
		}
		return true
	}

	for i := range a.items {
		if !equalElem(a.items[i], b.items[i]) {
			return false
		}
	}
	return true
}

func compareTuples(a, b *Tuple) int {
	switch {
	case a == b:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if a.tag().AllText() && b.tag().AllText() {
		n := min(len(a.items), len(b.items))
		for i := 0; i < n; i++ {
			if c := cmp.Compare(a.items[i].(string), b.items[i].(string)); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.items), len(b.items))
	}
	return compareItems(a.items, b.items)
}

func compareItems(a, b []any) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := compareElem(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// itemsOf returns the normalized elements of a tuple or plain sequence.
func itemsOf(v any) ([]any, error) {
	switch v := v.(type) {
	case *Tuple:
		if v == nil {
			return nil, errors.Wrap(ErrInvalidArgument, "nil tuple")
		}
		return v.items, nil
	case Seq:
		return normalizeAll(v)
	case []any:
		return normalizeAll(v)
	default:
		return nil, errors.Wrapf(ErrType, "%T is not a sequence", v)
	}
}

func normalizeAll(elems []any) ([]any, error) {
	out := make([]any, len(elems))
	for i, v := range elems {
		n, _, err := normalize(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		out[i] = n
	}
	return out, nil
}
