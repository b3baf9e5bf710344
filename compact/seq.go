package compact

// Seq is a plain, mutable sequence of elements. It hashes and compares like
// a tuple holding the same elements, so it can be used to probe the intern
// pool without building a tuple.
type Seq []any

// Hash returns the hash a tuple of the same elements would have. Elements
// that are not permitted contribute a fixed lane; such a Seq never equals a
// tuple.
func (s Seq) Hash() uint64 {
	h := newHasher()
	for _, v := range s {
		n, _, err := normalize(v)
		if err != nil {
			h.add(0)
			continue
		}
		h.add(hashElem(n))
	}
	return h.sum()
}

// Equal reports if other holds equal elements in the same order. other may
// be a *Tuple, a Seq or a []any.
func (s Seq) Equal(other any) bool {
	switch o := other.(type) {
	case *Tuple:
		return o != nil && o.Equal(s)
	case Seq:
		return equalSeqs(s, o)
	case []any:
		return equalSeqs(s, o)
	}
	return false
}

// Compare orders s against other like Tuple.Compare.
func (s Seq) Compare(other any) (int, error) {
	items, err := normalizeAll(s)
	if err != nil {
		return 0, err
	}
	rhs, err := itemsOf(other)
	if err != nil {
		return 0, err
	}
	return compareItems(items, rhs), nil
}

func equalSeqs(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		na, _, err := normalize(a[i])
		if err != nil {
			return false
		}
		nb, _, err := normalize(b[i])
		if err != nil {
			return false
		}
		if !equalElem(na, nb) {
			return false
		}
	}
	return true
}
