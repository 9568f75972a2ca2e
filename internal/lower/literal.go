package lower

import (
	"encoding/hex"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/weftlang/weft/internal/ast"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/syntax"
)

const (
	HEX_PREFIX             = "0x"
	BINARY_PREFIX          = "0b"
	HEREDOC_DELIMITER      = "~~~"
	TWOS_COMPLEMENT_DIGITS = 16
)

func (b *builder) lowerLiteral(n *syntax.Node) (ast.Expression, error) {
	base := ast.At(b.ref(n))

	switch n.Kind {
	case syntax.NilLiteral:
		return &ast.NilLiteral{NodeBase: base}, nil
	case syntax.BooleanLiteral:
		switch n.Text {
		case "true":
			return &ast.BooleanLiteral{NodeBase: base, Value: true}, nil
		case "false":
			return &ast.BooleanLiteral{NodeBase: base, Value: false}, nil
		}
		return nil, b.errorf(langerr.ParseError, n, INVALID_BOOLEAN)
	case syntax.DecLiteral:
		v, err := ParseLong(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.LongLiteral{NodeBase: base, Value: v}, nil
	case syntax.HexLiteral:
		v, err := ParseHex(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.LongLiteral{NodeBase: base, Value: v}, nil
	case syntax.DoubleLiteral:
		v, err := ParseDouble(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.DoubleLiteral{NodeBase: base, Value: v}, nil
	case syntax.DecimalLiteral:
		v, err := ParseDecimal(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.DecimalLiteral{NodeBase: base, Value: v}, nil
	case syntax.BinaryLiteral:
		v, err := ParseBinary(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.BinaryLiteral{NodeBase: base, Value: v}, nil
	case syntax.DateTimeLiteral:
		dt, err := ParseDateTime(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.DateTimeLiteral{NodeBase: base, Value: dt.Time, Zone: dt.Zone}, nil
	case syntax.StringVerbatim:
		s, err := UnquoteVerbatim(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.StringLiteral{NodeBase: base, Value: s}, nil
	case syntax.StringHereDoc:
		s, err := UnquoteHereDoc(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.StringLiteral{NodeBase: base, Value: s}, nil
	case syntax.KeyLiteral:
		key, err := KeyName(n.Text)
		if err != nil {
			return nil, err.Locate(base.Ref)
		}
		return &ast.StringLiteral{NodeBase: base, Value: key}, nil
	}

	return nil, b.unexpected(n, "literal")
}

// ParseLong parses a decimal integer, underscores are digit separators.
func ParseLong(text string) (int64, *langerr.Error) {
	digits := strings.ReplaceAll(text, "_", "")
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, langerr.Unlocated(langerr.NumberOutOfBounds, NUMBER_OUT_OF_BOUNDS).Put("literal", text)
		}
		return 0, langerr.Unlocated(langerr.ParseError, INVALID_DEC_LITERAL).Put("literal", text)
	}
	return v, nil
}

// ParseHex parses a 0x-prefixed hexadecimal integer. A literal with exactly 16 digits is read as
// a two's complement bit pattern: 0xFFFFFFFFFFFFFFFF is -1.
func ParseHex(text string) (int64, *langerr.Error) {
	digits := strings.ReplaceAll(text, "_", "")
	if len(digits) >= len(HEX_PREFIX) && strings.EqualFold(digits[:len(HEX_PREFIX)], HEX_PREFIX) {
		digits = digits[len(HEX_PREFIX):]
	}

	if digits == "" {
		return 0, langerr.Unlocated(langerr.ParseError, INVALID_HEX_LITERAL).Put("literal", text)
	}
	if len(digits) > TWOS_COMPLEMENT_DIGITS {
		return 0, langerr.Unlocated(langerr.NumberOutOfBounds, NUMBER_OUT_OF_BOUNDS).Put("literal", text)
	}

	if len(digits) == TWOS_COMPLEMENT_DIGITS {
		u, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return 0, langerr.Unlocated(langerr.ParseError, INVALID_HEX_LITERAL).Put("literal", text)
		}
		return int64(u), nil
	}

	v, err := strconv.ParseInt(digits, 16, 64)
	if err != nil {
		return 0, langerr.Unlocated(langerr.ParseError, INVALID_HEX_LITERAL).Put("literal", text)
	}
	return v, nil
}

// ParseDouble parses a floating point literal, NaN and Infinity are accepted.
func ParseDouble(text string) (float64, *langerr.Error) {
	s := strings.ReplaceAll(text, "_", "")

	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity", "+Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		//out of range values are rounded to an infinity or zero
		if errors.Is(err, strconv.ErrRange) {
			return v, nil
		}
		return 0, langerr.Unlocated(langerr.ParseError, INVALID_DOUBLE).Put("literal", text)
	}
	return v, nil
}

// ParseDecimal parses an arbitrary precision decimal, the scale of the literal is kept: 1.10d has two decimal places.
func ParseDecimal(text string) (decimal.Decimal, *langerr.Error) {
	s := strings.ReplaceAll(text, "_", "")
	s = strings.TrimRight(s, "dD")

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, langerr.Unlocated(langerr.ParseError, INVALID_DECIMAL).Put("literal", text)
	}
	return v, nil
}

// ParseBinary decodes a 0b-prefixed hex string, underscores and white space separate groups of digits.
func ParseBinary(text string) ([]byte, *langerr.Error) {
	s := strings.TrimPrefix(text, BINARY_PREFIX)
	s = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	if len(s)%2 != 0 {
		return nil, langerr.Unlocated(langerr.IllegalArgument, ODD_BINARY_LITERAL).Put("literal", text)
	}

	bytes, err := hex.DecodeString(s)
	if err != nil {
		e := langerr.Unlocated(langerr.IllegalArgument, INVALID_BINARY_DIGIT).Put("literal", text)
		e.Cause = err
		return nil, e
	}
	return bytes, nil
}

// UnquoteVerbatim removes the quotes of a verbatim string, two consecutive single quotes denote one quote.
func UnquoteVerbatim(text string) (string, *langerr.Error) {
	if len(text) < 2 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return "", langerr.Unlocated(langerr.ParseError, INVALID_VERBATIM_STRING)
	}
	return strings.ReplaceAll(text[1:len(text)-1], "''", "'"), nil
}

// UnquoteHereDoc removes the delimiters of a heredoc string and the line breaks that follow the opening
// delimiter and precede the closing one.
func UnquoteHereDoc(text string) (string, *langerr.Error) {
	if len(text) < 2*len(HEREDOC_DELIMITER) || !strings.HasPrefix(text, HEREDOC_DELIMITER) || !strings.HasSuffix(text, HEREDOC_DELIMITER) {
		return "", langerr.Unlocated(langerr.ParseError, INVALID_HEREDOC_STRING)
	}

	s := text[len(HEREDOC_DELIMITER) : len(text)-len(HEREDOC_DELIMITER)]

	switch {
	case strings.HasPrefix(s, "\r\n"):
		s = s[2:]
	case strings.HasPrefix(s, "\n"):
		s = s[1:]
	}

	switch {
	case strings.HasSuffix(s, "\r\n"):
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "\n"):
		s = s[:len(s)-1]
	}
	return s, nil
}

// KeyName returns the key denoted by a key literal such as :name or :`some key`.
func KeyName(text string) (string, *langerr.Error) {
	if !strings.HasPrefix(text, ":") {
		return "", langerr.Unlocated(langerr.ParseError, INVALID_KEY_LITERAL)
	}
	return Identifier(text[1:]), nil
}

// Identifier removes the backticks of an escaped identifier.
func Identifier(text string) string {
	if len(text) >= 2 && text[0] == '`' && text[len(text)-1] == '`' {
		return text[1 : len(text)-1]
	}
	return text
}

// Unescape resolves the escape sequences of an interpolated string fragment.
func Unescape(text string) (string, *langerr.Error) {
	if !strings.Contains(text, `\`) {
		return text, nil
	}

	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(text); {
		c := text[i]
		if c != '\\' {
			sb.WriteByte(c)
			i++
			continue
		}

		if i+1 >= len(text) {
			return "", langerr.Unlocated(langerr.ParseError, fmtInvalidEscape(text[i:]))
		}

		switch text[i+1] {
		case '\\':
			sb.WriteByte('\\')
		case 'r':
			sb.WriteByte('\r')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '"':
			sb.WriteByte('"')
		case '#':
			sb.WriteByte('#')
		case 'u', 'U':
			digitCount := 4
			if text[i+1] == 'U' {
				digitCount = 8
			}
			end := i + 2 + digitCount
			if end > len(text) {
				return "", langerr.Unlocated(langerr.ParseError, fmtInvalidEscape(text[i:]))
			}
			codePoint, err := strconv.ParseUint(text[i+2:end], 16, 32)
			if err != nil {
				return "", langerr.Unlocated(langerr.ParseError, fmtInvalidEscape(text[i:end]))
			}
			r := rune(codePoint)
			if !utf8.ValidRune(r) {
				return "", langerr.Unlocated(langerr.IllegalArgument, INVALID_UNICODE_ESCAPE).Put("escape", text[i:end])
			}
			sb.WriteRune(r)
			i = end
			continue
		default:
			return "", langerr.Unlocated(langerr.ParseError, fmtInvalidEscape(text[i:i+2]))
		}
		i += 2
	}
	return sb.String(), nil
}
