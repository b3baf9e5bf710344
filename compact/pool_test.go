package compact

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/breezy-team/breezy-sub003/hashset"
	"github.com/breezy-team/breezy-sub003/internal/assert"
	"github.com/breezy-team/breezy-sub003/internal/pcg"
)

func mustIntern(t testing.TB, elems ...any) *Tuple {
	t.Helper()
	tu, err := Intern(elems...)
	assert.NoError(t, err)
	return tu
}

func TestPool(t *testing.T) {
	t.Run("Same Instance", func(t *testing.T) {
		a := mustIntern(t, "dir", "file.txt")
		b := mustIntern(t, "dir", "file.txt")
		defer a.Release()
		defer b.Release()

		assert.Same(t, a, b)
		assert.That(t, a.IsInterned())
		assert.Equal(t, a.Refs(), 2)
	})

	t.Run("Constructed Then Interned", func(t *testing.T) {
		x := MustNew("pool", "constructed")
		y := MustNew("pool", "constructed")
		assert.NotSame(t, x, y)

		cx, err := x.Intern()
		assert.NoError(t, err)
		cy, err := y.Intern()
		assert.NoError(t, err)
		defer cx.Release()
		defer cy.Release()

		assert.Same(t, cx, x)
		assert.Same(t, cy, x)
		assert.That(t, !y.IsInterned())
		assert.Equal(t, y.Refs(), 0)
	})

	t.Run("Idempotent", func(t *testing.T) {
		a := mustIntern(t, "pool", "idempotent")
		defer a.Release()

		b, err := a.Intern()
		assert.NoError(t, err)
		assert.Same(t, a, b)
		assert.Equal(t, a.Refs(), 1)
	})

	t.Run("Empty Singleton", func(t *testing.T) {
		a, err := Intern()
		assert.NoError(t, err)
		b := MustNew()
		assert.Same(t, a, b)
		assert.Same(t, a, Empty())
		assert.That(t, slices.Contains(slices.Collect(Pooled()), Empty()))
	})

	t.Run("Concat Not Interned", func(t *testing.T) {
		a := mustIntern(t, "cat", "a")
		defer a.Release()
		b := mustIntern(t, "cat", "b")
		defer b.Release()

		c, err := Concat(a, b)
		assert.NoError(t, err)
		assert.That(t, !c.IsInterned())
		assert.That(t, c.Equal(Seq{"cat", "a", "cat", "b"}))

		ci, err := c.Intern()
		assert.NoError(t, err)
		defer ci.Release()
		assert.Same(t, ci, c)
		assert.That(t, ci.IsInterned())
	})

	t.Run("Hash Stable", func(t *testing.T) {
		a := MustNew("hash", 3.5, int64(7))
		h := a.Hash()
		ai, err := a.Intern()
		assert.NoError(t, err)
		defer ai.Release()
		assert.Equal(t, ai.Hash(), h)
		assert.Equal(t, Seq{"hash", 3.5, 7}.Hash(), h)
	})

	t.Run("Round Trip", func(t *testing.T) {
		elems := Seq{"rt", nil, true, int64(-2), 1.25, Bytes("\x00\x01")}
		a := mustIntern(t, elems...)
		defer a.Release()
		assert.Equal(t, a.AsSequence(), elems)

		b, err := FromSequence(a.AsSequence())
		assert.NoError(t, err)
		bi, err := b.Intern()
		assert.NoError(t, err)
		defer bi.Release()
		assert.Same(t, bi, a)
	})

	t.Run("Interned Equal Only To Self", func(t *testing.T) {
		a := mustIntern(t, "self", 1)
		defer a.Release()
		b := MustNew("self", 1.0)
		defer b.Release()

		assert.That(t, a.Equal(b))
		assert.That(t, a.Equal(a))
		assert.That(t, a.Equal(Seq{"self", 1}))
	})

	t.Run("Release Removes", func(t *testing.T) {
		before := PoolStats().Used

		a := mustIntern(t, "dir", "released")
		assert.Equal(t, PoolStats().Used, before+1)
		a.Release()

		assert.That(t, !a.IsInterned())
		assert.Equal(t, PoolStats().Used, before)

		_, ok := Lookup("dir", "released")
		assert.That(t, !ok)

		b := mustIntern(t, "dir", "released")
		defer b.Release()
		assert.NotSame(t, a, b)
		assert.That(t, b.IsInterned())
		assert.Equal(t, PoolStats().Used, before+1)
	})

	t.Run("Discard And Re-add", func(t *testing.T) {
		s, err := hashset.New[*Tuple]()
		assert.NoError(t, err)

		a := MustNew(3.14, 3.14)
		defer a.Release()
		_, err = s.Add(a)
		assert.NoError(t, err)
		ok, err := s.Discard(a)
		assert.NoError(t, err)
		assert.That(t, ok)

		b := MustNew(3.14, 3.14)
		defer b.Release()
		got, err := s.Add(b)
		assert.NoError(t, err)
		assert.Same(t, got, b)
		assert.Equal(t, s.Len(), 1)
		assert.Equal(t, s.Stats().Fill, 1)
	})

	t.Run("Lookup", func(t *testing.T) {
		a := mustIntern(t, "look", "up", 2)
		defer a.Release()

		got, ok := Lookup("look", "up", 2.0)
		assert.That(t, ok)
		assert.Same(t, got, a)
		assert.Equal(t, a.Refs(), 2)
		got.Release()

		_, ok = Lookup("look", "down", 2)
		assert.That(t, !ok)
		_, ok = Lookup("look", struct{}{})
		assert.That(t, !ok)

		e, ok := Lookup()
		assert.That(t, ok)
		assert.Same(t, e, Empty())
	})

	t.Run("Shallow", func(t *testing.T) {
		inner := MustNew("shallow", "inner")
		defer inner.Release()
		outer := MustNew(inner, "outer")

		oi, err := outer.Intern()
		assert.NoError(t, err)
		defer oi.Release()
		assert.That(t, oi.IsInterned())
		assert.That(t, !inner.IsInterned())
	})

	t.Run("Deep", func(t *testing.T) {
		inner := MustNew("deep", "inner")
		defer inner.Release()
		outer := MustNew(inner, 1)

		d, err := outer.InternDeep()
		assert.NoError(t, err)
		defer d.Release()

		assert.That(t, d.IsInterned())
		assert.That(t, inner.IsInterned())
		v, err := d.Item(0)
		assert.NoError(t, err)
		assert.Same(t, v, inner)
		assert.Equal(t, inner.Refs(), 2)

		dup := MustNew("deep", "inner")
		other := MustNew(dup, 1)
		dup.Release()
		od, err := other.InternDeep()
		assert.NoError(t, err)
		defer od.Release()
		assert.Same(t, od, d)
	})

	t.Run("Shrink", func(t *testing.T) {
		held := make([]*Tuple, 200)
		for i := range held {
			held[i] = mustIntern(t, "shrink", i)
		}
		for _, tu := range held {
			tu.Release()
		}

		assert.NoError(t, Shrink())

		stats := PoolStats()
		assert.Equal(t, stats.Tombstones, 0)
		assert.Equal(t, stats.Used, stats.Fill)
		for _, st := range PoolSlots() {
			assert.That(t, st != hashset.Tombstone)
		}
	})
}

func TestPoolConcurrent(t *testing.T) {
	const (
		workers = 8
		values  = 64
		rounds  = 2000
	)

	before := PoolStats().Used

	t.Run("Held", func(t *testing.T) {
		held := make([]*Tuple, values)
		for i := range held {
			held[i] = mustIntern(t, "held", fmt.Sprint(i))
		}

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				p := pcg.New(uint64(w), 1)
				for r := 0; r < rounds; r++ {
					i := p.Intn(values)
					tu, err := Intern("held", fmt.Sprint(i))
					if err != nil || tu != held[i] {
						panic(fmt.Sprintf("got %v want %p: %v", tu, held[i], err))
					}
					tu.Release()
				}
			}(w)
		}
		wg.Wait()

		for i, tu := range held {
			assert.Equal(t, tu.Refs(), 1, "value %d", i)
			tu.Release()
		}
		assert.Equal(t, PoolStats().Used, before)
	})

	t.Run("Churn", func(t *testing.T) {
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				p := pcg.New(uint64(w), 2)
				for r := 0; r < rounds; r++ {
					tu, err := Intern("churn", p.Intn(values))
					if err != nil || !tu.IsInterned() {
						panic(fmt.Sprintf("intern %v: %v", tu, err))
					}
					tu.Release()
				}
			}(w)
		}
		wg.Wait()

		for i := 0; i < values; i++ {
			_, ok := Lookup("churn", i)
			assert.That(t, !ok, "value %d still pooled", i)
		}
		assert.Equal(t, PoolStats().Used, before)
	})
}

func TestPoolMissingEntryPanics(t *testing.T) {
	tu := MustNew("missing", "entry")

	// mark interned without registering, as a corrupted pool would
	tu.update(tag.WithInterned)
	assert.Panics(t, func() { tu.Release() })
}

func BenchmarkIntern(b *testing.B) {
	var keys [256]Seq
	for i := range keys {
		keys[i] = Seq{fmt.Sprintf("dir%d", i%16), fmt.Sprintf("file%d.txt", i)}
	}

	b.Run("Intern Held", func(b *testing.B) {
		held := make([]*Tuple, len(keys))
		for i := range keys {
			held[i] = mustIntern(b, keys[i]...)
		}
		defer func() {
			for _, tu := range held {
				tu.Release()
			}
		}()

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			tu, _ := Intern(keys[i&255]...)
			tu.Release()
		}
	})

	b.Run("Intern Churn", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			tu, _ := Intern(keys[i&255]...)
			tu.Release()
		}
	})

	b.Run("Lookup", func(b *testing.B) {
		held := make([]*Tuple, len(keys))
		for i := range keys {
			held[i] = mustIntern(b, keys[i]...)
		}
		defer func() {
			for _, tu := range held {
				tu.Release()
			}
		}()

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			tu, _ := Lookup(keys[i&255]...)
			tu.Release()
		}
	})

	b.Run("Map", func(b *testing.B) {
		table := make(map[[2]string]*[2]string)
		var mu sync.Mutex

		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			k := [2]string{keys[i&255][0].(string), keys[i&255][1].(string)}
			mu.Lock()
			if _, ok := table[k]; !ok {
				table[k] = &k
			}
			mu.Unlock()
		}
	})

	b.Run("Compare Interned", func(b *testing.B) {
		x := mustIntern(b, keys[0]...)
		y := mustIntern(b, keys[1]...)
		defer x.Release()
		defer y.Release()

		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = x.Equal(y)
		}
	})
}
