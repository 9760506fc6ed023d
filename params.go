package testgen

import (
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Param is one named parameter with its ordered candidate values.
type Param struct {
	Name   string
	Values []any
}

// Params is an ordered set of parameters. Declaration order is significant:
// the cartesian product below iterates parameters in this order, and that
// ordering feeds directly into slug resolution and seed derivation. A Go map
// would not preserve it, hence the slice.
type Params []Param

// P is a convenience constructor for a single parameter.
func P(name string, values ...any) Param {
	return Param{Name: name, Values: values}
}

// Pair is one resolved name/value pair of an Assignment.
type Pair struct {
	Name  string
	Value any
}

// Assignment is one element of the cartesian product of a generator's
// params: a concrete value for every declared parameter name, in
// declaration order. It is produced by Expand and consumed immediately by
// the generation driver.
type Assignment []Pair

// Expand computes the ordered cartesian product of the parameter set.
//
// The product is lexicographic over the declaration order of the parameter
// names and the order of each value sequence: the last declared parameter
// varies fastest. An empty Params yields exactly one empty Assignment, so
// parameterless generators still run once.
func (p Params) Expand() []Assignment {
	total := 1
	for _, param := range p {
		total *= len(param.Values)
	}
	if total == 0 {
		return nil
	}

	out := make([]Assignment, 0, total)
	indices := make([]int, len(p))
	for {
		a := make(Assignment, len(p))
		for i, param := range p {
			a[i] = Pair{Name: param.Name, Value: param.Values[indices[i]]}
		}
		out = append(out, a)

		// Advance the odometer, last parameter fastest.
		pos := len(p) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(p[pos].Values) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}

	return out
}

// Get returns the raw value for the given parameter name.
func (a Assignment) Get(name string) (any, bool) {
	for _, pair := range a {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return nil, false
}

// Int returns the parameter value converted to int. Missing names and
// unconvertible values yield the zero value; generators declare their own
// params, so a missing name is a script bug the zero value will surface.
func (a Assignment) Int(name string) int {
	v, _ := a.Get(name)
	return cast.ToInt(v)
}

// Int64 returns the parameter value converted to int64
func (a Assignment) Int64(name string) int64 {
	v, _ := a.Get(name)
	return cast.ToInt64(v)
}

// String returns the parameter value converted to string
func (a Assignment) String(name string) string {
	v, _ := a.Get(name)
	return cast.ToString(v)
}

// Float64 returns the parameter value converted to float64
func (a Assignment) Float64(name string) float64 {
	v, _ := a.Get(name)
	return cast.ToFloat64(v)
}

// Bool returns the parameter value converted to bool
func (a Assignment) Bool(name string) bool {
	v, _ := a.Get(name)
	return cast.ToBool(v)
}

// sortedByName returns a copy of the assignment with pairs ordered by
// parameter name. Slug encoding and seed derivation both use this canonical
// order so they stay independent of declaration order.
func (a Assignment) sortedByName() Assignment {
	sorted := make(Assignment, len(a))
	copy(sorted, a)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// Describe renders the assignment as "name=value, name=value" for logs and
// error messages, in declaration order.
func (a Assignment) Describe() string {
	if len(a) == 0 {
		return ""
	}
	parts := make([]string, len(a))
	for i, pair := range a {
		parts[i] = pair.Name + "=" + cast.ToString(pair.Value)
	}
	return strings.Join(parts, ", ")
}
