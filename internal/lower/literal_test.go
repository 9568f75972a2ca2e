package lower

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/testconfig"
	"github.com/weftlang/weft/internal/types"
)

func TestParseLong(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("bounds", func(t *testing.T) {
		v, err := ParseLong("9223372036854775807")
		if assert.Nil(t, err) {
			assert.EqualValues(t, math.MaxInt64, v)
		}

		v, err = ParseLong("-9223372036854775808")
		if assert.Nil(t, err) {
			assert.EqualValues(t, math.MinInt64, v)
		}

		_, err = ParseLong("9223372036854775808")
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.NumberOutOfBounds, err.Code)
			assert.Equal(t, NUMBER_OUT_OF_BOUNDS, err.Message)
			literal, _ := err.Get("literal")
			assert.Equal(t, "9223372036854775808", literal)
		}

		_, err = ParseLong("-9223372036854775809")
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.NumberOutOfBounds, err.Code)
		}
	})

	t.Run("digit separators", func(t *testing.T) {
		v, err := ParseLong("1_000_000")
		if assert.Nil(t, err) {
			assert.EqualValues(t, 1_000_000, v)
		}
	})

	t.Run("not a number", func(t *testing.T) {
		_, err := ParseLong("12a")
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.ParseError, err.Code)
		}
	})
}

func TestParseHex(t *testing.T) {
	testconfig.AllowParallelization(t)

	cases := []struct {
		literal string
		value   int64
	}{
		{"0x00", 0},
		{"0xFF", 255},
		{"0xff", 255},
		{"0x7FFFFFFFFFFFFFFF", math.MaxInt64},
		{"0xFFFFFFFFFFFFFFFF", -1},
		{"0x8000000000000000", math.MinInt64},
		{"0xFFFF_FFFF", 0xFFFFFFFF},
	}

	for _, c := range cases {
		t.Run(c.literal, func(t *testing.T) {
			v, err := ParseHex(c.literal)
			if assert.Nil(t, err) {
				assert.Equal(t, c.value, v)
			}
		})
	}

	t.Run("more than 16 digits", func(t *testing.T) {
		_, err := ParseHex("0x1FFFFFFFFFFFFFFFF")
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.NumberOutOfBounds, err.Code)
		}
	})

	t.Run("no digits", func(t *testing.T) {
		_, err := ParseHex("0x")
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.ParseError, err.Code)
		}
	})
}

func TestParseDouble(t *testing.T) {
	testconfig.AllowParallelization(t)

	v, err := ParseDouble("1.5e3")
	if assert.Nil(t, err) {
		assert.Equal(t, 1500.0, v)
	}

	v, err = ParseDouble("NaN")
	if assert.Nil(t, err) {
		assert.True(t, math.IsNaN(v))
	}

	v, err = ParseDouble("-Infinity")
	if assert.Nil(t, err) {
		assert.True(t, math.IsInf(v, -1))
	}

	//out of range
	v, err = ParseDouble("1e400")
	if assert.Nil(t, err) {
		assert.True(t, math.IsInf(v, 1))
	}

	_, err = ParseDouble("1.5.5")
	assert.NotNil(t, err)
}

func TestParseDecimal(t *testing.T) {
	testconfig.AllowParallelization(t)

	v, err := ParseDecimal("1.10d")
	if assert.Nil(t, err) {
		assert.Equal(t, "1.10", v.StringFixed(2))
		assert.EqualValues(t, -2, v.Exponent())
	}

	v, err = ParseDecimal("123_456.789D")
	if assert.Nil(t, err) {
		assert.Equal(t, "123456.789", v.String())
	}

	_, err = ParseDecimal("1.2.3d")
	if assert.NotNil(t, err) {
		assert.Equal(t, langerr.ParseError, err.Code)
	}
}

func TestParseBinary(t *testing.T) {
	testconfig.AllowParallelization(t)

	v, err := ParseBinary("0b00FF_10 20")
	if assert.Nil(t, err) {
		assert.Equal(t, []byte{0x00, 0xFF, 0x10, 0x20}, v)
	}

	v, err = ParseBinary("0b")
	if assert.Nil(t, err) {
		assert.Empty(t, v)
	}

	_, err = ParseBinary("0b0")
	if assert.NotNil(t, err) {
		assert.Equal(t, langerr.IllegalArgument, err.Code)
		assert.Equal(t, ODD_BINARY_LITERAL, err.Message)
	}

	_, err = ParseBinary("0bZZ")
	if assert.NotNil(t, err) {
		assert.Equal(t, langerr.IllegalArgument, err.Code)
		assert.Error(t, err.Cause)
	}
}

func TestStringLiterals(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("verbatim", func(t *testing.T) {
		s, err := UnquoteVerbatim(`'it''s'`)
		if assert.Nil(t, err) {
			assert.Equal(t, "it's", s)
		}

		_, err = UnquoteVerbatim(`'a`)
		assert.NotNil(t, err)
	})

	t.Run("heredoc", func(t *testing.T) {
		s, err := UnquoteHereDoc("~~~\nline 1\nline 2\n~~~")
		if assert.Nil(t, err) {
			assert.Equal(t, "line 1\nline 2", s)
		}

		s, err = UnquoteHereDoc("~~~\r\n\r\nx\r\n\r\n~~~")
		if assert.Nil(t, err) {
			assert.Equal(t, "\r\nx\r\n", s)
		}

		_, err = UnquoteHereDoc("~~~")
		assert.NotNil(t, err)
	})

	t.Run("key", func(t *testing.T) {
		s, err := KeyName(":name")
		if assert.Nil(t, err) {
			assert.Equal(t, "name", s)
		}

		s, err = KeyName(":`first name`")
		if assert.Nil(t, err) {
			assert.Equal(t, "first name", s)
		}

		_, err = KeyName("name")
		assert.NotNil(t, err)
	})

	t.Run("escape sequences", func(t *testing.T) {
		s, err := Unescape(`a\tb\u0041\U0001F600\#\"\\`)
		if assert.Nil(t, err) {
			assert.Equal(t, "a\tbA😀#\"\\", s)
		}

		_, err = Unescape(`\q`)
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.ParseError, err.Code)
		}

		_, err = Unescape(`\u00`)
		assert.NotNil(t, err)

		//surrogates are not valid code points
		_, err = Unescape(`\uD800`)
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.IllegalArgument, err.Code)
		}
	})
}

func TestLowerLiteral(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("decimal integer", func(t *testing.T) {
		f := newFixture(t, "42")
		expr := f.mustLowerExpression(f.leaf(syntax.DecLiteral, "42"))

		if assert.IsType(t, &ast.LongLiteral{}, expr) {
			assert.EqualValues(t, 42, expr.(*ast.LongLiteral).Value)
			assert.Equal(t, f.whole(), expr.Src().Span)
		}
	})

	t.Run("out of bounds literal is located at the literal", func(t *testing.T) {
		f := newFixture(t, "[9223372036854775808]")
		list := f.node(syntax.ListLiteral, "[9223372036854775808]", f.leaf(syntax.DecLiteral, "9223372036854775808"))

		result, err := f.lower(EntryExpression, list, false)
		assert.Nil(t, result.Node)
		if assert.Error(t, err) {
			e := err.(*langerr.Error)
			assert.Equal(t, langerr.NumberOutOfBounds, e.Code)
			assert.Equal(t, f.span("9223372036854775808", 0), e.Src.Span)
		}
	})

	t.Run("minimum long", func(t *testing.T) {
		f := newFixture(t, "-9223372036854775808")
		neg := f.node(syntax.UnaryExpression, "-9223372036854775808", f.leaf(syntax.DecLiteral, "9223372036854775808")).WithText("-")

		expr := f.mustLowerExpression(neg)
		if assert.IsType(t, &ast.LongLiteral{}, expr) {
			assert.EqualValues(t, math.MinInt64, expr.(*ast.LongLiteral).Value)
		}
	})

	t.Run("boolean", func(t *testing.T) {
		f := newFixture(t, "true")
		expr := f.mustLowerExpression(f.leaf(syntax.BooleanLiteral, "true"))
		assert.Equal(t, true, expr.(*ast.BooleanLiteral).Value)
		assert.Equal(t, types.Boolean, expr.ValueType())
	})

	t.Run("key literal", func(t *testing.T) {
		f := newFixture(t, ":k")
		expr := f.mustLowerExpression(f.leaf(syntax.KeyLiteral, ":k"))
		require.IsType(t, &ast.StringLiteral{}, expr)
		assert.Equal(t, "k", expr.(*ast.StringLiteral).Value)
	})

	t.Run("datetime", func(t *testing.T) {
		f := newFixture(t, "2017-03-17T16:04:02@Europe/Berlin")
		expr := f.mustLowerExpression(f.leaf(syntax.DateTimeLiteral, "2017-03-17T16:04:02@Europe/Berlin"))
		require.IsType(t, &ast.DateTimeLiteral{}, expr)
		assert.Equal(t, "Europe/Berlin", expr.(*ast.DateTimeLiteral).Zone)
	})
}
