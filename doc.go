// Package formula evaluates small arithmetic, boolean, and dice formulas
// written in infix notation, like "sqrt4+3*4", "1d6+2", or
// "$player.Health / $player.MaxHealth".
//
// Formulas need no whitespace between tokens. A word operator is split from
// adjacent digits, so "sin1+2" is sin(1)+2 and "2d6" rolls two six-sided
// dice. Function arguments may be written call-style or space-style:
// "min(1,2)" and "min 1 2" are the same formula. Unary negation is written
// with ±, as in "5 * ±1"; - is always binary.
//
// Operators of equal precedence group left to right, including ^, so
// "2^3^2" is 64. Comparisons and logical operators produce True (1) or
// False (0); equality and truthiness are tested within an epsilon.
//
// Variables are resolved first from the interpreter's own variables, then,
// for references like $ctx.field, from the VariableProvider bound to ctx,
// and finally from the global variables of the Runtime. Every interpreter
// created from a Runtime shares its cache of compiled formulas. The cache
// has a fixed capacity and evicts the formula that was compiled first.
package formula
