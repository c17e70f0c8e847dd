package easyjit

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFloat64(t *testing.T) {
	t.Run("1", func(t *testing.T) {
		for _, v := range []float64{0, 1, -1, 3.1415, math.MaxFloat64, math.SmallestNonzeroFloat64, math.Inf(1), math.Inf(-1)} {
			require.EqualValues(t, v, DecodeFloat64(EncodeFloat64(v)))
		}
	})
	t.Run("nan bits", func(t *testing.T) {
		back := DecodeFloat64(EncodeFloat64(math.NaN()))
		require.True(t, math.IsNaN(back))
	})
	t.Run("wrong size", func(t *testing.T) {
		require.Panics(t, func() {
			DecodeFloat64([]byte{1, 2, 3})
		})
	})
	t.Run("rw", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteFloat64(&buf, 2.5))
		v, err := ReadFloat64(&buf)
		require.NoError(t, err)
		require.EqualValues(t, 2.5, v)

		_, err = ReadFloat64(&buf)
		require.Error(t, err)
	})
}

func TestString8(t *testing.T) {
	t.Run("1", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteString8(&buf, "abc"))
		require.NoError(t, WriteString8(&buf, ""))
		s, err := ReadString8(&buf)
		require.NoError(t, err)
		require.EqualValues(t, "abc", s)
		s, err = ReadString8(&buf)
		require.NoError(t, err)
		require.EqualValues(t, "", s)
	})
	t.Run("too long", func(t *testing.T) {
		var buf bytes.Buffer
		require.Panics(t, func() {
			_ = WriteString8(&buf, string(bytes.Repeat([]byte("a"), 256)))
		})
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := ReadString8(bytes.NewReader([]byte{5, 'a', 'b'}))
		require.Error(t, err)
	})
}

func TestCatchPanicOrError(t *testing.T) {
	t.Run("1", func(t *testing.T) {
		require.NoError(t, CatchPanicOrError(func() error { return nil }))
	})
	t.Run("2", func(t *testing.T) {
		err := CatchPanicOrError(func() error { return errors.New("expected") })
		require.EqualError(t, err, "expected")
	})
	t.Run("3", func(t *testing.T) {
		err := CatchPanicOrError(func() error { panic("boom") })
		require.EqualError(t, err, "boom")
	})
	t.Run("4", func(t *testing.T) {
		err := CatchPanicOrError(func() error { panic(errors.New("boom")) })
		require.EqualError(t, err, "boom")
	})
}
