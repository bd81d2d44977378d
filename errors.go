package formula

import "strconv"

// OperatorError is an error indicating an operator token that is not in the
// operator registry. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "unknown operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// BracketError is an error indicating unbalanced brackets in the input. It
// implements InputError.
type BracketError struct {
	// Col is the position of the unmatched bracket.
	Col int
	// Left is the opening bracket, or the empty string if a close bracket
	// had no open bracket.
	Left string
	// Right is the closing bracket, or the empty string if an open bracket
	// was never closed.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// ArityError is an error indicating an operator without enough operands, or
// a formula that does not reduce to exactly one value. It implements
// InputError.
type ArityError struct {
	// Col is the position of the operator, or of the last token of the
	// formula if Operator is empty.
	Col int
	// Operator is the operator lacking operands. It is empty when the whole
	// formula left Have values instead of one.
	Operator string
	// Want is the number of operands required.
	Want int
	// Have is the number of operands available.
	Have int
}

func (err *ArityError) Error() string {
	if err.Operator == "" {
		if err.Have == 0 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "formula leaves "+strconv.Itoa(err.Have)+" values instead of one")
	}
	return errpos(err.Col, "operator "+strconv.Quote(err.Operator)+" needs "+strconv.Itoa(err.Want)+" operands, have "+strconv.Itoa(err.Have))
}

func (err *ArityError) Pos() int {
	return err.Col
}

// NameError is an error from a lookup for a variable that is missing from
// the interpreter, from its named contexts, and from the global variables.
type NameError struct {
	// Name is the name that was missing, as written in the formula.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// DomainError is an error returned when an operator is evaluated with
// arguments it cannot accept.
type DomainError struct {
	// X is the out-of-domain argument.
	X float64
	// Arg is the 1-based index of the argument.
	Arg int
	// Operator is the operator symbol.
	Operator string
}

func (err *DomainError) Error() string {
	r := strconv.FormatFloat(err.X, 'g', -1, 64) + " outside domain"
	if err.Operator != "" {
		r += " of " + err.Operator
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error resulting
// from malformed formula text implements InputError.
type InputError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*ArityError)(nil)
)
