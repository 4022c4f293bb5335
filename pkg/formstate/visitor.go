package formstate

// Visitor handles every State variant. Adding a variant adds a method here,
// so implementations stop compiling until they cover it.
type Visitor interface {
	VisitDefault(Default)
	VisitSuccess(Success)
	VisitFail(Fail)
}

// Match dispatches state to the matching Visitor method. A nil state is an
// invariant violation and panics; call Validate first when the state comes
// from an untrusted source.
func Match(state State, v Visitor) {
	if state == nil {
		panic(&InvariantError{Reason: "state is nil"})
	}
	state.accept(v)
}

// Cases adapts three functions into a Visitor. Every function must be set;
// NewCases enforces that at construction.
type Cases struct {
	onDefault func(Default)
	onSuccess func(Success)
	onFail    func(Fail)
}

// NewCases builds a Visitor from one function per variant. It panics when any
// of them is nil since a missing branch is a programming error.
func NewCases(onDefault func(Default), onSuccess func(Success), onFail func(Fail)) Cases {
	if onDefault == nil || onSuccess == nil || onFail == nil {
		panic(&InvariantError{Reason: "every state variant needs a handler"})
	}
	return Cases{onDefault: onDefault, onSuccess: onSuccess, onFail: onFail}
}

func (c Cases) VisitDefault(s Default) { c.onDefault(s) }
func (c Cases) VisitSuccess(s Success) { c.onSuccess(s) }
func (c Cases) VisitFail(s Fail)       { c.onFail(s) }
