// package assert provides the small set of test assertions used across the
// repository. Every failure stops the test immediately.
package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// That fails the test if v is false.
func That(t testing.TB, v bool, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, v, msgAndArgs...)
}

// Equal fails the test if a and b are not equal after converting them to a
// common type, so untyped constants can be compared against sized integers.
func Equal(t testing.TB, a, b interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	require.EqualValues(t, b, a, msgAndArgs...)
}

// Same fails the test unless a and b are the same pointer.
func Same(t testing.TB, a, b interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	require.Same(t, b, a, msgAndArgs...)
}

// NotSame fails the test if a and b are the same pointer.
func NotSame(t testing.TB, a, b interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	require.NotSame(t, b, a, msgAndArgs...)
}

// NoError fails the test if err is not nil.
func NoError(t testing.TB, err error, msgAndArgs ...interface{}) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// ErrorIs fails the test unless err matches target.
func ErrorIs(t testing.TB, err, target error, msgAndArgs ...interface{}) {
	t.Helper()
	require.ErrorIs(t, err, target, msgAndArgs...)
}

// Panics fails the test unless fn panics.
func Panics(t testing.TB, fn func(), msgAndArgs ...interface{}) {
	t.Helper()
	require.Panics(t, fn, msgAndArgs...)
}
