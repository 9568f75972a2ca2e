package langerr

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlang/weft/internal/sourcecode"
	"go.uber.org/multierr"
)

func TestError(t *testing.T) {
	src := sourcecode.NewSource(sourcecode.InMemorySource{
		NameString: "mem://a.tf",
		CodeString: "library a {\n  x: 1;\n  x: 2;\n}",
	})
	ref := sourcecode.RefAt(src, sourcecode.Span{Start: 22, End: 23})

	t.Run("message includes location", func(t *testing.T) {
		err := New(AlreadyDefined, "x defined more than once in a", ref)
		assert.Equal(t, "mem://a.tf:3:3: ALREADY_DEFINED: x defined more than once in a", err.Error())
	})

	t.Run("unlocated", func(t *testing.T) {
		err := Unlocated(InvalidDateTime, "invalid year")
		assert.Equal(t, "INVALID_DATETIME: invalid year", err.Error())
		assert.Nil(t, err.Src)

		err.Locate(ref)
		if assert.NotNil(t, err.Src) {
			assert.Equal(t, "3:3", err.Src.ShortLocation())
		}

		//an already located error keeps its location
		other := sourcecode.RefAt(src, sourcecode.Span{Start: 0, End: 1})
		err.Locate(other)
		assert.Equal(t, "3:3", err.Src.ShortLocation())
	})

	t.Run("the reference is copied", func(t *testing.T) {
		r := ref
		err := New(AlreadyDefined, "", r)
		r.Span.Start = 0
		assert.EqualValues(t, 22, err.Src.Span.Start)
	})

	t.Run("wrap", func(t *testing.T) {
		cause := errors.New("month out of range")
		err := Wrap(cause, InvalidDateTime)
		assert.Equal(t, InvalidDateTime, err.Code)
		assert.ErrorIs(t, err, cause)

		assert.Same(t, err, Wrap(err, InvalidDateTime))
		assert.Same(t, err, Wrap(err, Unknown))

		rewrapped := Wrap(err, ParseError)
		assert.NotSame(t, err, rewrapped)
		assert.Equal(t, ParseError, rewrapped.Code)
		assert.Equal(t, InvalidDateTime, CodeOf(rewrapped.Cause))

		assert.Nil(t, Wrap(nil, ParseError))
	})

	t.Run("code of", func(t *testing.T) {
		err := fmt.Errorf("x: %w", New(NilError, "nil", ref))
		assert.Equal(t, NilError, CodeOf(err))
		assert.True(t, Is(err, NilError))
		assert.False(t, Is(nil, Unknown))
		assert.Equal(t, Unknown, CodeOf(errors.New("")))
	})

	t.Run("properties", func(t *testing.T) {
		err := New(InvalidDateTime, "invalid year", ref).Put("field", "year")
		v, ok := err.Get("field")
		assert.True(t, ok)
		assert.Equal(t, "year", v)
	})

	t.Run("digest", func(t *testing.T) {
		err := New(AlreadyDefined, "x defined more than once in a", ref).Put("name", "x")
		assert.Equal(t,
			"ALREADY_DEFINED: x defined more than once in a\n"+
				"    x: 2;\n"+
				"    ^\n"+
				"  at mem://a.tf:3:3\n"+
				"  name: x\n",
			err.Digest())
	})

	t.Run("log", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		logger := zerolog.New(buf)
		logger.Warn().Object("error", New(IncompatibleTypes, "cannot cast list to long", ref)).Send()

		assert.Contains(t, buf.String(), `"code":"INCOMPATIBLE_TYPES"`)
		assert.Contains(t, buf.String(), `"location":"mem://a.tf:3:3"`)
	})
}

func TestSink(t *testing.T) {

	t.Run("fail fast", func(t *testing.T) {
		sink := NewFailFastSink()
		assert.False(t, sink.IsRecovery())
		assert.False(t, sink.Recover(Unlocated(NilError, "")))
		assert.Empty(t, sink.Errors())
		assert.NoError(t, sink.Err())
	})

	t.Run("recovery", func(t *testing.T) {
		sink := NewRecoverySink()
		var recorded []*Error
		sink.OnRecord(func(e *Error) {
			recorded = append(recorded, e)
		})

		assert.True(t, sink.Recover(Unlocated(AlreadyDefined, "a")))
		assert.True(t, sink.Recover(errors.New("b")))

		require.Len(t, sink.Errors(), 2)
		assert.Equal(t, AlreadyDefined, sink.Errors()[0].Code)
		assert.Equal(t, ParseError, sink.Errors()[1].Code)
		assert.Equal(t, sink.Errors(), recorded)

		errs := multierr.Errors(sink.Err())
		assert.Len(t, errs, 2)
	})
}
