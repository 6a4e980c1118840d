package check

import (
	"fmt"
	"strings"

	"github.com/eaburns/dtt/core"
	"github.com/eaburns/dtt/loc"
)

// Cause classifies a checking failure.
type Cause int

const (
	TypeMismatch Cause = iota
	Unbound
	AlreadyBound
	MalformedLevelProof
	NonExhaustive
	TooManyPatterns
	TooFewPatterns
	FieldCoverage
	SortMismatch
	UniverseKind
	SortOverflow
	ImpossibleElimination
	DataTypeNotEmpty
	MissingBody
	ExpectedConstructor
	CannotInferSort
	UnknownError
)

func (c Cause) String() string {
	switch c {
	case TypeMismatch:
		return "type mismatch"
	case Unbound:
		return "unbound variable"
	case AlreadyBound:
		return "variable already bound"
	case MalformedLevelProof:
		return "malformed level proof"
	case NonExhaustive:
		return "non-exhaustive patterns"
	case TooManyPatterns:
		return "too many patterns"
	case TooFewPatterns:
		return "too few patterns"
	case FieldCoverage:
		return "fields not implemented"
	case SortMismatch:
		return "sort mismatch"
	case UniverseKind:
		return "universe kind mismatch"
	case SortOverflow:
		return "sort overflow"
	case ImpossibleElimination:
		return "impossible elimination"
	case DataTypeNotEmpty:
		return "data type is not empty"
	case MissingBody:
		return "missing body"
	case ExpectedConstructor:
		return "expected a constructor"
	case CannotInferSort:
		return "cannot infer sort"
	case UnknownError:
		return "unknown error"
	default:
		return fmt.Sprintf("Cause(%d)", int(c))
	}
}

// Error is a checking failure.
type Error struct {
	Cause Cause
	// Term is the offending term, if any.
	Term core.Term
	// Expected and Actual are set for mismatches.
	// Expected may be a description rather than a term.
	Expected string
	Actual   core.Term
	// Field is the offending class field, if any.
	Field *core.ClassField
	Notes []string
	L     loc.Loc
}

func (e *Error) Loc() loc.Loc { return e.L }

func (e *Error) Error() string {
	var s strings.Builder
	s.WriteString(e.Cause.String())
	if e.Field != nil {
		s.WriteString(": ")
		s.WriteString(e.Field.Name())
	}
	if e.Expected != "" {
		s.WriteString(": expected ")
		s.WriteString(e.Expected)
		if e.Actual != nil {
			s.WriteString(", got ")
			s.WriteString(e.Actual.String())
		}
	}
	if e.Term != nil {
		s.WriteString("\n\tin ")
		s.WriteString(e.Term.String())
	}
	for _, n := range e.Notes {
		s.WriteString("\n\t")
		s.WriteString(n)
	}
	return s.String()
}

func (e *Error) note(f string, vs ...interface{}) *Error {
	e.Notes = append(e.Notes, fmt.Sprintf(f, vs...))
	return e
}

// fail aborts the check with an error about t.
func (c *Checker) fail(cause Cause, t core.Term) *Error {
	return &Error{Cause: cause, Term: t, L: c.l}
}

func (c *Checker) mismatch(t core.Term, expected string, actual core.Term) *Error {
	return &Error{Cause: TypeMismatch, Term: t, Expected: expected, Actual: actual, L: c.l}
}
