package compact

import (
	"cmp"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the kind of a tuple element.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindText
	KindTuple
)

var kindNames = [...]string{
	KindNull:  "null",
	KindBool:  "bool",
	KindInt:   "int",
	KindFloat: "float",
	KindBytes: "bytes",
	KindText:  "text",
	KindTuple: "tuple",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// rank orders kinds against each other. Integers and floats share a rank
// because they compare numerically.
func (k Kind) rank() int {
	switch k {
	case KindInt, KindFloat:
		return int(KindInt)
	case KindBytes, KindText, KindTuple:
		return int(k) - 1
	default:
		return int(k)
	}
}

// Bytes is an immutable byte string element. It is a distinct kind from
// text: Bytes("a") and "a" are not equal.
type Bytes string

// KindOf returns the kind an element would be stored as, and false if the
// element is not permitted in a tuple.
func KindOf(v any) (Kind, bool) {
	_, k, err := normalize(v)
	return k, err == nil
}

// normalize validates an element and converts it to its stored form:
// integers become int64, floats become float64 and byte slices are copied
// into Bytes.
func normalize(v any) (any, Kind, error) {
	switch v := v.(type) {
	case nil:
		return nil, KindNull, nil
	case bool:
		return v, KindBool, nil
	case int64:
		return v, KindInt, nil
	case int:
		return int64(v), KindInt, nil
	case int8:
		return int64(v), KindInt, nil
	case int16:
		return int64(v), KindInt, nil
	case int32:
		return int64(v), KindInt, nil
	case uint8:
		return int64(v), KindInt, nil
	case uint16:
		return int64(v), KindInt, nil
	case uint32:
		return int64(v), KindInt, nil
	case uint:
		return unsigned(uint64(v))
	case uint64:
		return unsigned(v)
	case float64:
		return v, KindFloat, nil
	case float32:
		return float64(v), KindFloat, nil
	case string:
		return v, KindText, nil
	case Bytes:
		return v, KindBytes, nil
	case []byte:
		return Bytes(v), KindBytes, nil
	case *Tuple:
		if v == nil {
			return nil, 0, errors.Wrap(ErrType, "nil tuple element")
		}
		return v, KindTuple, nil
	default:
		return nil, 0, errors.Wrapf(ErrType, "element of type %s", reflect.TypeOf(v))
	}
}

func unsigned(v uint64) (any, Kind, error) {
	if v > math.MaxInt64 {
		return nil, 0, errors.Wrapf(ErrType, "integer %d overflows int64", v)
	}
	return int64(v), KindInt, nil
}

// kindOf returns the kind of an already normalized element.
func kindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case Bytes:
		return KindBytes
	case string:
		return KindText
	default:
		return KindTuple
	}
}

// compareElem orders two normalized elements.
func compareElem(a, b any) int {
	ka, kb := kindOf(a), kindOf(b)
	if ra, rb := ka.rank(), kb.rank(); ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ka {
	case KindNull:
		return 0
	case KindBool:
		return compareBool(a.(bool), b.(bool))
	case KindInt, KindFloat:
		return compareNumber(a, b)
	case KindBytes:
		return strings.Compare(string(a.(Bytes)), string(b.(Bytes)))
	case KindText:
		return strings.Compare(a.(string), b.(string))
	default:
		return compareTuples(a.(*Tuple), b.(*Tuple))
	}
}

// equalElem reports if two normalized elements are equal. It is cheaper
// than compareElem for tuples, which can short circuit on interning.
func equalElem(a, b any) bool {
	switch a := a.(type) {
	case string:
		b, ok := b.(string)
		return ok && a == b
	case *Tuple:
		b, ok := b.(*Tuple)
		return ok && equalTuples(a, b)
	}
	if kindOf(b) == KindTuple {
		return false
	}
	return compareElem(a, b) == 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}

// compareNumber compares int64 and float64 values numerically. NaN is below
// every other number and equal to itself.
func compareNumber(a, b any) int {
	switch a := a.(type) {
	case int64:
		switch b := b.(type) {
		case int64:
			return cmp.Compare(a, b)
		default:
			return -compareFloatInt(b.(float64), a)
		}
	default:
		fa := a.(float64)
		switch b := b.(type) {
		case int64:
			return compareFloatInt(fa, b)
		default:
			return cmp.Compare(fa, b.(float64))
		}
	}
}

// compareFloatInt compares f against i exactly, without rounding i to a
// float.
func compareFloatInt(f float64, i int64) int {
	switch {
	case math.IsNaN(f):
		return -1
	case f < -(1 << 63):
		return -1
	case f >= 1<<63:
		return 1
	}

	whole := math.Trunc(f)
	if c := cmp.Compare(int64(whole), i); c != 0 {
		return c
	}
	return cmp.Compare(f, whole)
}

// integral returns f as an int64 if it holds an integer value in range.
func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}
