package arith

import "slices"

// Env holds the variables an expression reads and assigns: integer scalars
// and indexed integer arrays. Unset scalars read as 0.
//
// An Env is not safe for concurrent use.
type Env struct {
	vars   map[string]int
	arrays map[string][]int
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{vars: map[string]int{}, arrays: map[string][]int{}}
}

// Get returns the value of a scalar variable.
func (e *Env) Get(name string) int {
	return e.vars[name]
}

// Set assigns a scalar variable.
func (e *Env) Set(name string, v int) {
	e.vars[name] = v
}

// Array returns a copy of an array variable.
func (e *Env) Array(name string) ([]int, bool) {
	a, ok := e.arrays[name]
	return slices.Clone(a), ok
}

func (e *Env) array(name string) ([]int, bool) {
	a, ok := e.arrays[name]
	return a, ok
}

// SetArray assigns an array variable. The slice is copied.
func (e *Env) SetArray(name string, values []int) {
	e.arrays[name] = slices.Clone(values)
}

// Vars returns the names of the scalar variables, sorted.
func (e *Env) Vars() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Arrays returns the names of the array variables, sorted.
func (e *Env) Arrays() []string {
	names := make([]string, 0, len(e.arrays))
	for name := range e.arrays {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// setElement assigns a[i], growing the array with zeros when i is past its
// end. Negative indexes count from the end. The array never grows beyond
// maxLen elements.
func (e *Env) setElement(name string, i, v, maxLen int) bool {
	a := e.arrays[name]
	if i < 0 {
		i += len(a)
		if i < 0 {
			return false
		}
	}
	if i >= maxLen && i >= len(a) {
		return false
	}
	if i >= len(a) {
		a = append(a, make([]int, i-len(a)+1)...)
	}
	a[i] = v
	e.arrays[name] = a
	return true
}
