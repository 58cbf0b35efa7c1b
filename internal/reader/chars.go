package reader

// Character classification mirrors the original source's isXXX macros
// (original_source/src/read.c lines 75-114): a small fixed set of ASCII
// delimiter/identifier/number classes that drive the reader's lookahead
// decisions. None of this extends to non-ASCII letters — Unicode
// identifier characters beyond the special-initial set are out of scope,
// matching the grammar the original parser implements.

func isWhitespace(c rune) bool   { return c == ' ' || c == '\t' }
func isLineEnding(c rune) bool   { return c == '\n' }
func isItSpace(c rune) bool      { return isWhitespace(c) || isLineEnding(c) || c == ';' || c == '#' }
func isLPar(c rune) bool         { return c == '(' || c == '[' || c == '{' }
func isRPar(c rune) bool         { return c == ')' || c == ']' || c == '}' }
func isEOFRune(c rune, ok bool) bool { return !ok }

func isDelimiter(c rune, ok bool) bool {
	if !ok {
		return true
	}
	return isWhitespace(c) || isLineEnding(c) || isLPar(c) || isRPar(c) ||
		c == '"' || c == ';' || c == 0
}

func isExactness(c rune) bool { return c == 'e' || c == 'E' || c == 'i' || c == 'I' }
func isRadixChar(c rune) bool {
	switch c {
	case 'b', 'B', 'o', 'O', 'd', 'D', 'x', 'X':
		return true
	}
	return false
}
func isBoolStart(c rune) bool { return c == 't' || c == 'T' || c == 'f' || c == 'F' }
func isSign(c rune) bool      { return c == '-' || c == '+' }
func isDot(c rune) bool       { return c == '.' }

func isBinaryDigit(c rune) bool  { return c == '0' || c == '1' }
func isOctalDigit(c rune) bool   { return c >= '0' && c <= '7' }
func isDecimalDigit(c rune) bool { return c >= '0' && c <= '9' }
func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func isSpecialInitial(c rune) bool {
	switch c {
	case '!', '$', '%', '&', '*', '/', ':', '<', '=', '>', '?', '@', '^', '_', '~':
		return true
	}
	return false
}
func isLetter(c rune) bool   { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isInitial(c rune) bool  { return isSpecialInitial(c) || isLetter(c) }
func isVLine(c rune) bool    { return c == '|' }
func isExplicitSign(c rune) bool { return c == '+' || c == '-' }
func isPeculiar(c rune) bool     { return isExplicitSign(c) || c == '.' }
func isIdentifierStart(c rune) bool { return isInitial(c) || isVLine(c) || isPeculiar(c) }
func isSpecialSubsequent(c rune) bool { return isExplicitSign(c) || c == '.' || c == '@' }
func isSubsequent(c rune) bool {
	return isInitial(c) || isDecimalDigit(c) || isSpecialSubsequent(c)
}
func isDotSubsequent(c rune) bool     { return isSubsequent(c) || isDot(c) }
func isSignSubsequent(c rune) bool    { return isInitial(c) || isExplicitSign(c) || c == '@' }
func isAbbrevPrefix(c rune) bool      { return c == '\'' || c == '`' || c == ',' }

// charNames maps #\<name> literals to their codepoint. The original C
// source's equivalent table collapses every name to '\n', which is
// plainly a transcription bug (see the distinct case labels with a
// shared constant); this implements the standard R7RS mapping instead,
// matching the named-character set the language description calls for.
var charNames = map[string]rune{
	"alarm":     0x0007,
	"backspace": 0x0008,
	"delete":    0x007F,
	"escape":    0x001B,
	"newline":   0x000A,
	"return":    0x000D,
	"space":     0x0020,
	"tab":       0x0009,
	"null":      0x0000,
}
