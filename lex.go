package formula

import (
	"strconv"
	"unicode"
)

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenNum is a run of digits and decimal points.
	tokenNum
	// tokenVar is a variable reference, either prefixed like $x or
	// $player.Health, or a bare word that is not an operator.
	tokenVar
	// tokenOp is an operator symbol. It may not be registered.
	tokenOp
	// tokenOpen is an open bracket.
	tokenOpen
	// tokenClose is a close bracket.
	tokenClose
	// tokenSep is a comma. Commas separate tokens the same way whitespace
	// does, so min(1,2) and min 1 2 mean the same.
	tokenSep
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenNum:
		return "Num"
	case tokenVar:
		return "Var"
	case tokenOp:
		return "Op"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	case tokenSep:
		return "Sep"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

const (
	// VarPrefix starts a variable reference.
	VarPrefix = '$'
	// ContextSep separates a context name from a field name in a variable
	// reference like $player.Health.
	ContextSep = '.'
	// SignGlyph is the unary negation operator. It never joins a run of
	// other special characters, so 1-±1 is 1 - (±1).
	SignGlyph = '±'
	// Separator is the argument separator.
	Separator = ','
	// OpenBracket and CloseBracket group subexpressions.
	OpenBracket  = '('
	CloseBracket = ')'
)

// tokenize splits a formula into tokens. Formulas need no whitespace between
// tokens: a word operator is split from adjacent digits ("sin1", "1d4"), and
// a run of special characters is split into the longest registered operator
// symbols ("1<=2", "!!1").
func tokenize(src string) []lexToken {
	rs := []rune(src)
	toks := make([]lexToken, 0, len(rs)/2+1)
	for i := 0; i < len(rs); {
		r := rs[i]
		tok := lexToken{pos: i + 1}
		j := i + 1
		switch {
		case unicode.IsSpace(r):
			i = j
			continue
		case r == Separator:
			tok.kind = tokenSep
		case r == OpenBracket:
			tok.kind = tokenOpen
		case r == CloseBracket:
			tok.kind = tokenClose
		case r == SignGlyph:
			tok.kind = tokenOp
		case r == VarPrefix:
			j = scanVar(rs, i)
			tok.kind = tokenVar
		case isDigit(r), r == ContextSep:
			for j < len(rs) && (isDigit(rs[j]) || rs[j] == ContextSep) {
				j++
			}
			tok.kind = tokenNum
		case isAlpha(r):
			var word bool
			j, word = scanWord(rs, i)
			tok.kind = tokenVar
			if word {
				tok.kind = tokenOp
			}
		default:
			for j < len(rs) && isSpecial(rs[j]) {
				j++
			}
			toks = splitSpecial(toks, rs[i:j], i+1)
			i = j
			continue
		}
		tok.text = string(rs[i:j])
		toks = append(toks, tok)
		i = j
	}
	return toks
}

// scanVar scans a variable reference starting at the prefix rune at rs[i]
// and returns the index after its end. The reference continues over letters
// and digits and at most one context separator that is followed by a letter
// or digit.
func scanVar(rs []rune, i int) int {
	j := i + 1
	dot := false
	for j < len(rs) {
		switch r := rs[j]; {
		case isAlnum(r):
			j++
		case r == ContextSep && !dot && j > i+1 && j+1 < len(rs) && isAlnum(rs[j+1]):
			dot = true
			j++
		default:
			return j
		}
	}
	return j
}

// scanWord scans a run of letters starting at rs[i]. If letters and digits
// continuing the run spell a registered operator like log10 or deg2rad, the
// operator is scanned instead, unless it ends in a digit and more digits
// follow. The second result reports whether the scanned text is a registered
// operator.
func scanWord(rs []rune, i int) (int, bool) {
	j := i
	for j < len(rs) && isAlpha(rs[j]) {
		j++
	}
	k := j
	for k < len(rs) && isAlnum(rs[k]) {
		k++
	}
	for e := k; e > j; e-- {
		if !isDigit(rs[e-1]) || e == len(rs) || !isDigit(rs[e]) {
			if _, ok := operators[string(rs[i:e])]; ok {
				return e, true
			}
		}
	}
	_, ok := operators[string(rs[i:j])]
	return j, ok
}

// splitSpecial appends the operator tokens in a run of special characters.
// Each token is the longest registered symbol at its position; a rune which
// begins no registered symbol becomes a token by itself, which the parser
// rejects.
func splitSpecial(toks []lexToken, run []rune, pos int) []lexToken {
	for k := 0; k < len(run); {
		n := 1
		for l := maxSymbolLen; l > 1; l-- {
			if k+l > len(run) {
				continue
			}
			if _, ok := operators[string(run[k:k+l])]; ok {
				n = l
				break
			}
		}
		toks = append(toks, lexToken{text: string(run[k : k+n]), kind: tokenOp, pos: pos + k})
		k += n
	}
	return toks
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isAlpha(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isAlnum(r rune) bool {
	return isAlpha(r) || isDigit(r)
}

// isSpecial reports whether r can be part of a symbolic operator.
func isSpecial(r rune) bool {
	switch {
	case isAlnum(r), unicode.IsSpace(r):
		return false
	case r == VarPrefix, r == ContextSep, r == SignGlyph, r == Separator,
		r == OpenBracket, r == CloseBracket:
		return false
	default:
		return true
	}
}
