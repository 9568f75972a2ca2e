package lower

import (
	"fmt"
	"strings"

	"github.com/weftlang/weft/internal/syntax"
	"github.com/weftlang/weft/internal/types"
)

const (
	NUMBER_OUT_OF_BOUNDS = "Number out of bounds."
	INVALID_HEX_LITERAL  = "invalid hexadecimal literal"
	INVALID_DEC_LITERAL  = "invalid integer literal"
	INVALID_DOUBLE       = "invalid double literal"
	INVALID_DECIMAL      = "invalid decimal literal"
	ODD_BINARY_LITERAL   = "binary literal must consist of an even number of hex digits"
	INVALID_BINARY_DIGIT = "binary literal contains a character that is not a hex digit"
	INVALID_BOOLEAN      = "invalid boolean literal"

	//date-time
	MISSING_TIME_SEPARATOR     = "missing date/time separator 'T'"
	INVALID_DATE               = "date must consist of a year, a month and a day of month"
	INVALID_YEAR               = "invalid year"
	INVALID_MONTH              = "month must consist of one or two digits"
	INVALID_DAY_OF_MONTH       = "day of month must consist of one or two digits"
	INVALID_TIME               = "time must consist of an hour, a minute and a second"
	INVALID_HOUR               = "hour must consist of one or two digits"
	INVALID_MINUTE             = "minute must consist of one or two digits"
	INVALID_SECOND             = "second must consist of one or two digits"
	INVALID_FRACTION_OF_SECOND = "invalid fraction of second"
	INVALID_OFFSET             = "offset must be Z or a signed hour and minute"
	INVALID_OFFSET_HOUR        = "offset hour must consist of one or two digits"
	INVALID_OFFSET_MINUTE      = "offset minute must consist of one or two digits"
	EMPTY_TIME_ZONE            = "time zone name is empty"

	//strings
	INVALID_ESCAPE_SEQUENCE  = "invalid escape sequence"
	INVALID_UNICODE_ESCAPE   = "unicode escape does not denote a valid code point"
	MISSING_EMBEDDED_EXPR    = "missing expression in string interpolation"
	INVALID_VERBATIM_STRING  = "verbatim string must be enclosed in single quotes"
	INVALID_HEREDOC_STRING   = "heredoc string must be enclosed in ~~~"
	INVALID_KEY_LITERAL      = "key literal must start with ':'"
	DICT_KEY_WITHOUT_VALUE   = "dict key is not followed by a value"
	MISSING_SPLAT_EXPRESSION = "missing expression after splat"

	//structure
	UNIT_SHOULD_BE_MODULE_OR_INTERACTIVE = "unit should be a module or an interactive session"
	MISSING_VAR_VALUE                    = "missing value in variable definition"
	MISSING_NAME                         = "missing name"
	MUST_REFERENCE_A_MODULE              = "must reference a module in unit space"
	FUNCTION_BODY_AND_VIA                = "function must have either a body or a via clause, not both"
	FUNCTION_WITHOUT_BODY                = "function must have a body or a via clause"
	PARTIAL_APPLICATION_NAMED_ONLY       = "partial application only accepts named arguments"
	MISSING_IMPORT_PATH                  = "missing import path"

	//match
	DEFAULT_PATTERN_NOT_LAST             = "default pattern must be the last pattern of the match"
	MULTIPLE_DEFAULT_PATTERNS            = "match cannot have more than one default pattern"
	SPLAT_CAPTURE_ALREADY_DEFINED        = "splat capture already defined in this pattern"
	MISSING_SPLAT_CAPTURE                = "missing splat capture in pattern"
	SPLAT_CAPTURE_SHOULD_BE_LAST         = "splat capture should be the last element of a head/tail list pattern"
	SPLAT_CAPTURE_SHOULD_BE_FIRST        = "splat capture should be the first element of an init/last list pattern"
	CLOSED_DICT_PATTERN_CANNOT_HAVE_REST = "closed dict pattern cannot have a splat capture"
	DICT_PATTERN_KEY_SHOULD_BE_CONSTANT  = "dict pattern keys should be key literals or verbatim strings"
	MISSING_PATTERN                      = "missing pattern in match line"
	MISSING_MATCH_SUBJECT                = "missing match subject"
)

func fmtCannotCast(from, to types.Type) string {
	return fmt.Sprintf("cannot cast %s to %s", from, to)
}

func fmtUnknownType(name string) string {
	return fmt.Sprintf("unknown type: %s", name)
}

func fmtUnexpectedNode(kind syntax.Kind, context string) string {
	return fmt.Sprintf("unexpected %s node in %s", kind, context)
}

func fmtMissingChild(kind syntax.Kind, role string) string {
	return fmt.Sprintf("%s node is missing its %s", kind, role)
}

func fmtUnknownOperator(symbol string) string {
	return fmt.Sprintf("unknown operator %q", symbol)
}

func fmtValuesCannotBeOrdered(t types.Type) string {
	return fmt.Sprintf("values of type %s cannot be ordered", t)
}

func fmtDefinedMoreThanOnceIn(name, library string) string {
	return fmt.Sprintf("%s defined more than once in %s", name, library)
}

func fmtAlreadyDefined(name string) string {
	return name + " already defined"
}

func fmtDictPatternKeyAlreadyDefined(key string) string {
	return fmt.Sprintf("key :%s already defined in this pattern", key)
}

func fmtUnknownTimeZone(name string) string {
	return fmt.Sprintf("unknown time zone '%s'", name)
}

func fmtOffsetNotValidForZone(offset, zone string) string {
	return fmt.Sprintf("offset '%s' is not valid for time zone '%s'", offset, zone)
}

func fmtInvalidEscape(seq string) string {
	return fmt.Sprintf("%s: %s", INVALID_ESCAPE_SEQUENCE, seq)
}

func fmtSyntaxError(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "syntax error"
	}
	return "syntax error: " + text
}
