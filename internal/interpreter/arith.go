package interpreter

import (
	"math"

	"robson/internal/value"
)

// binOp computes a typed arithmetic result from two already-matched-tag
// operands.
type binOp func(a, b value.Value) (value.Value, error)

// arithTable is the 5 ops (add/sub/mul/div/mod) x 3 types (Unsigned/
// Signed/Floating) dispatch table of spec.md 4.3 and 9.
var arithTable = [5][3]binOp{
	0: {addUnsigned, addSigned, addFloat},
	1: {subUnsigned, subSigned, subFloat},
	2: {mulUnsigned, mulSigned, mulFloat},
	3: {divUnsigned, divSigned, divFloat},
	4: {modUnsigned, modSigned, modFloat},
}

func addUnsigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsUnsigned()
	y, _ := b.AsUnsigned()
	return value.FromUnsigned(x + y), nil
}

func addSigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsSigned()
	y, _ := b.AsSigned()
	return value.FromSigned(x + y), nil
}

func addFloat(a, b value.Value) (value.Value, error) {
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return value.FromFloat(x + y), nil
}

func subUnsigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsUnsigned()
	y, _ := b.AsUnsigned()
	return value.FromUnsigned(x - y), nil
}

func subSigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsSigned()
	y, _ := b.AsSigned()
	return value.FromSigned(x - y), nil
}

func subFloat(a, b value.Value) (value.Value, error) {
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return value.FromFloat(x - y), nil
}

func mulUnsigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsUnsigned()
	y, _ := b.AsUnsigned()
	return value.FromUnsigned(x * y), nil
}

func mulSigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsSigned()
	y, _ := b.AsSigned()
	return value.FromSigned(x * y), nil
}

func mulFloat(a, b value.Value) (value.Value, error) {
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return value.FromFloat(x * y), nil
}

// divUnsigned and divSigned raise ErrDivisionByZero rather than letting
// Go's runtime panic on integer division by zero propagate uncaught
// (spec.md 9's open question on overflow/division is resolved this way:
// native wraparound for overflow, a typed error for division/mod by
// zero). Floating division follows native IEEE-754 (Inf/NaN, no error).
func divUnsigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsUnsigned()
	y, _ := b.AsUnsigned()
	if y == 0 {
		return value.Value{}, ErrDivisionByZero
	}
	return value.FromUnsigned(x / y), nil
}

func divSigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsSigned()
	y, _ := b.AsSigned()
	if y == 0 {
		return value.Value{}, ErrDivisionByZero
	}
	return value.FromSigned(x / y), nil
}

func divFloat(a, b value.Value) (value.Value, error) {
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return value.FromFloat(x / y), nil
}

func modUnsigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsUnsigned()
	y, _ := b.AsUnsigned()
	if y == 0 {
		return value.Value{}, ErrDivisionByZero
	}
	return value.FromUnsigned(x % y), nil
}

func modSigned(a, b value.Value) (value.Value, error) {
	x, _ := a.AsSigned()
	y, _ := b.AsSigned()
	if y == 0 {
		return value.Value{}, ErrDivisionByZero
	}
	return value.FromSigned(x % y), nil
}

func modFloat(a, b value.Value) (value.Value, error) {
	x, _ := a.AsFloat()
	y, _ := b.AsFloat()
	return value.FromFloat(float32(math.Mod(float64(x), float64(y)))), nil
}
