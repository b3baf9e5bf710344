// package compact implements compact tuples: small immutable sequences of
// scalar values used as hashable, ordered keys.
//
// A tuple may be interned, making it the single canonical instance for its
// value within the process. Interned tuples compare equal only to themselves,
// which lets large key sets share memory and compare by pointer.
//
// Tuples carry an explicit reference count. A tuple starts with one reference
// owned by its creator; Retain adds one and Release drops one. When the last
// reference of an interned tuple is released it leaves the intern pool, and
// a later Intern of an equal value registers a new canonical instance. The
// pool itself never holds a counted reference.
package compact

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// MaxSize is the largest number of elements a tuple can hold.
const MaxSize = 255

// Tuple is an immutable fixed size sequence of elements. Permitted element
// kinds are null, bool, integers, floats, text, Bytes and nested tuples.
//
// Tuples are safe for concurrent use once constructed.
type Tuple struct {
	flags atomic.Uint32
	refs  atomic.Int64
	hash  atomic.Uint64
	items []any
}

// New constructs a tuple from the elements. Every element is validated
// before anything is allocated. An empty element list returns the shared
// empty tuple.
func New(elems ...any) (*Tuple, error) {
	if len(elems) > MaxSize {
		return nil, errors.Wrapf(ErrInvalidArgument, "%d elements exceeds %d", len(elems), MaxSize)
	}
	if len(elems) == 0 {
		return Empty(), nil
	}

	items := make([]any, len(elems))
	for i, v := range elems {
		n, _, err := normalize(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
		items[i] = n
	}

	return build(items), nil
}

// MustNew is like New but panics on error. It is intended for constant keys.
func MustNew(elems ...any) *Tuple {
	t, err := New(elems...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSequence constructs a tuple holding the elements of seq.
func FromSequence(seq Seq) (*Tuple, error) {
	return New(seq...)
}

// Empty returns the shared empty tuple. It is always interned and its
// reference count is never tracked.
func Empty() *Tuple {
	return interned.empty
}

// build wraps normalized items in a new tuple holding one reference. Nested
// tuples gain a reference owned by the new tuple.
func build(items []any) *Tuple {
	t := &Tuple{items: items}

	text := true
	for _, v := range items {
		switch v := v.(type) {
		case string:
		case *Tuple:
			v.Retain()
			text = false
		default:
			text = false
		}
	}

	var flags tag
	if text {
		flags = flags.WithAllText()
	}
	t.flags.Store(uint32(flags))
	t.refs.Store(1)

	return t
}

func (t *Tuple) tag() tag { return tag(t.flags.Load()) }

// update atomically applies fn to the flag word.
func (t *Tuple) update(fn func(tag) tag) {
	for {
		old := t.flags.Load()
		if t.flags.CompareAndSwap(old, uint32(fn(tag(old)))) {
			return
		}
	}
}

// Len returns the number of elements.
func (t *Tuple) Len() int {
	if t == nil {
		return 0
	}
	return len(t.items)
}

// Item returns the i'th element. Integers are returned as int64, floats as
// float64 and byte strings as Bytes.
func (t *Tuple) Item(i int) (any, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "item of nil tuple")
	}
	if i < 0 || i >= len(t.items) {
		return nil, errors.Wrapf(ErrIndex, "index %d of %d", i, len(t.items))
	}
	return t.items[i], nil
}

// Kind returns the kind of the i'th element.
func (t *Tuple) Kind(i int) (Kind, error) {
	v, err := t.Item(i)
	if err != nil {
		return 0, err
	}
	return kindOf(v), nil
}

// Text returns the i'th element if it is text.
func (t *Tuple) Text(i int) (string, error) {
	v, err := t.Item(i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrType, "element %d is %s, not text", i, kindOf(v))
	}
	return s, nil
}

// AsSequence returns a new plain sequence holding the elements in order.
func (t *Tuple) AsSequence() Seq {
	if t == nil {
		return nil
	}
	out := make(Seq, len(t.items))
	copy(out, t.items)
	return out
}

// Items is an alias of AsSequence.
func (t *Tuple) Items() Seq { return t.AsSequence() }

// Slice returns a new tuple holding the elements in [lo, hi).
func (t *Tuple) Slice(lo, hi int) (*Tuple, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "slice of nil tuple")
	}
	if lo < 0 || hi > len(t.items) || lo > hi {
		return nil, errors.Wrapf(ErrIndex, "slice [%d:%d] of %d", lo, hi, len(t.items))
	}
	if lo == hi {
		return Empty(), nil
	}
	items := make([]any, hi-lo)
	copy(items, t.items[lo:hi])
	return build(items), nil
}

// Contains returns true if any element equals v.
func (t *Tuple) Contains(v any) bool {
	if t == nil {
		return false
	}
	n, _, err := normalize(v)
	if err != nil {
		return false
	}
	for _, item := range t.items {
		if equalElem(item, n) {
			return true
		}
	}
	return false
}

// Hash returns the hash of the tuple. It depends only on the element values
// and is computed once.
func (t *Tuple) Hash() uint64 {
	if t.tag().Hashed() {
		return t.hash.Load()
	}
	h := hashItems(t.items)
	t.hash.Store(h)
	t.update(tag.WithHashed)
	return h
}

// IsInterned returns true if the tuple is the canonical instance for its
// value.
func (t *Tuple) IsInterned() bool {
	return t != nil && t.tag().Interned()
}

// String formats the tuple like ("dir", "file.txt").
func (t *Tuple) String() string {
	var b strings.Builder
	t.format(&b)
	return b.String()
}

func (t *Tuple) format(b *strings.Builder) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteByte('(')
	for i, v := range t.items {
		if i > 0 {
			b.WriteString(", ")
		}
		switch v := v.(type) {
		case nil:
			b.WriteString("nil")
		case bool:
			b.WriteString(strconv.FormatBool(v))
		case int64:
			b.WriteString(strconv.FormatInt(v, 10))
		case float64:
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		case string:
			b.WriteString(strconv.Quote(v))
		case Bytes:
			b.WriteByte('b')
			b.WriteString(strconv.Quote(string(v)))
		case *Tuple:
			v.format(b)
		default:
			fmt.Fprint(b, v)
		}
	}
	if len(t.items) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
}
