package codegen

import (
	"github.com/skx/cc/types"
)

// localVar is one declared variable: its type and its [rbp-offset]
// storage location.
type localVar struct {
	dataType   types.DataType
	baseOffset int
}

// scope is one lexical block's variable table. Grounded on the
// original implementation's Scope (local_variable_table +
// enclosing), realized here as a slice of scope frames pushed/popped
// on a stack rather than a linked list, matching how this codebase
// expresses every other LIFO structure.
type scope struct {
	vars map[string]localVar
}

func newScopeFrame() scope {
	return scope{vars: make(map[string]localVar)}
}

// scopes is the chain of currently-open lexical blocks, innermost on
// top.
type scopes struct {
	frames *stack[scope]
}

func newScopes() *scopes {
	return &scopes{frames: newStack[scope]()}
}

func (s *scopes) push() {
	s.frames.Push(newScopeFrame())
}

func (s *scopes) pop() {
	_, _ = s.frames.Pop()
}

// declare records name as a local variable in the innermost open
// scope. Returns false if name is already declared in that exact
// scope (shadowing an outer scope's variable is fine).
func (s *scopes) declare(name string, dt types.DataType, offset int) bool {
	top, ok := s.frames.Top()
	if !ok {
		return false
	}
	if _, exists := top.vars[name]; exists {
		return false
	}
	top.vars[name] = localVar{dataType: dt, baseOffset: offset}
	return true
}

// lookup searches from the innermost scope outward for name.
func (s *scopes) lookup(name string) (localVar, bool) {
	for i := len(s.frames.items) - 1; i >= 0; i-- {
		if v, ok := s.frames.items[i].vars[name]; ok {
			return v, true
		}
	}
	return localVar{}, false
}

// loop is one enclosing loop's break/continue targets.
type loop struct {
	startLabel string
	endLabel   string
}

type loops struct {
	frames *stack[loop]
}

func newLoops() *loops {
	return &loops{frames: newStack[loop]()}
}

func (l *loops) push(lp loop) {
	l.frames.Push(lp)
}

func (l *loops) pop() {
	_, _ = l.frames.Pop()
}

func (l *loops) current() (loop, bool) {
	return l.frames.Top()
}
