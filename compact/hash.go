package compact

import (
	"math"
	"math/bits"

	"github.com/cespare/xxhash"
)

// xxh64 primes, used to fold element hashes together.
const (
	prime1 uint64 = 11400714785074694791
	prime2 uint64 = 14029467366897019727
	prime5 uint64 = 2870177450012600261
)

// salts keep elements of different kinds with the same payload apart.
const (
	saltNull  uint64 = 0x9e3779b97f4a7c15
	saltFalse uint64 = 0xc2b2ae3d27d4eb4f
	saltTrue  uint64 = 0x165667b19e3779f9
	saltNaN   uint64 = 0x27d4eb2f165667c5
	saltBytes uint64 = 0x85ebca77c2b2ae63
)

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// hashElem hashes a normalized element. Numerically equal integers and
// floats hash the same.
func hashElem(v any) uint64 {
	switch v := v.(type) {
	case nil:
		return saltNull
	case bool:
		if v {
			return saltTrue
		}
		return saltFalse
	case int64:
		return mix64(uint64(v))
	case float64:
		if i, ok := integral(v); ok {
			return mix64(uint64(i))
		}
		if math.IsNaN(v) {
			return saltNaN
		}
		return mix64(math.Float64bits(v) ^ prime5)
	case string:
		return xxhash.Sum64String(v)
	case Bytes:
		return mix64(xxhash.Sum64String(string(v)) ^ saltBytes)
	case *Tuple:
		return v.Hash()
	default:
		panic("compact: hash of unnormalized element")
	}
}

// hasher folds a sequence of element hashes using the xxh64 round.
type hasher struct {
	acc uint64
	n   int
}

func newHasher() hasher { return hasher{acc: prime5} }

func (h *hasher) add(lane uint64) {
	h.acc += lane * prime2
	h.acc = bits.RotateLeft64(h.acc, 31)
	h.acc *= prime1
	h.n++
}

func (h *hasher) sum() uint64 {
	return h.acc + (uint64(h.n) ^ (prime5 ^ 3527539))
}

// hashItems hashes normalized elements.
func hashItems(items []any) uint64 {
	h := newHasher()
	for _, v := range items {
		h.add(hashElem(v))
	}
	return h.sum()
}
