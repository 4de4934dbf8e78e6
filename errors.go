package turing

import "errors"

var (
	// ErrNegativeHead is returned when Run/RunContext is given a negative
	// starting head.
	ErrNegativeHead = errors.New("head must be non-negative")

	// ErrTapeCountMismatch is returned when a MultiMachine is run with, or
	// built from rules for, the wrong number of tapes.
	ErrTapeCountMismatch = errors.New("wrong number of tapes")

	// ErrHeadCountMismatch is returned when Run/RunContext on a
	// MultiMachine is given the wrong number of starting heads.
	ErrHeadCountMismatch = errors.New("wrong number of heads")

	// ErrRuleArityMismatch is returned at rule-construction time when a
	// multi-tape rule's read, write, or delta tuple does not have exactly
	// tapesCount entries.
	ErrRuleArityMismatch = errors.New("rule tuple has wrong arity")
)
