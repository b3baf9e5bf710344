package compact

import "github.com/pkg/errors"

// Concat returns a new tuple holding the elements of a followed by those of
// b. Either may be a *Tuple, a Seq or a []any. The result is not interned.
func Concat(a, b any) (*Tuple, error) {
	lhs, err := itemsOf(a)
	if err != nil {
		return nil, err
	}
	rhs, err := itemsOf(b)
	if err != nil {
		return nil, err
	}

	n := len(lhs) + len(rhs)
	if n > MaxSize {
		return nil, errors.Wrapf(ErrInvalidArgument, "concatenation of %d elements exceeds %d", n, MaxSize)
	}
	if n == 0 {
		return Empty(), nil
	}

	items := make([]any, 0, n)
	items = append(items, lhs...)
	items = append(items, rhs...)
	return build(items), nil
}

// Concat returns a new tuple holding the elements of t followed by those of
// other.
func (t *Tuple) Concat(other any) (*Tuple, error) {
	if t == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "concat to nil tuple")
	}
	return Concat(t, other)
}
