/*
Copyright © 2022 the amdotext authors.
This file is part of amdotext.

amdotext is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

amdotext is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with amdotext.  If not, see <http://www.gnu.org/licenses/>.
*/

package amdotext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
)

// A Predicate is a condition evaluated independently at each timestamp
// of a single-depth selection.
type Predicate interface {
	// Variables returns the names of the variables the predicate reads.
	Variables() []string

	// Match reports whether the predicate holds for the given values,
	// which are keyed by variable name.
	Match(values map[string]float64) (bool, error)
}

// Equal is a predicate that holds where Variable == Value.
// Missing values never match.
type Equal struct {
	Variable string
	Value    float64
}

// Variables implements Predicate.
func (e Equal) Variables() []string { return []string{e.Variable} }

// Match implements Predicate.
func (e Equal) Match(values map[string]float64) (bool, error) {
	return values[e.Variable] == e.Value, nil
}

func (e Equal) String() string {
	return fmt.Sprintf("%s==%g", e.Variable, e.Value)
}

// Expression is a predicate defined by a boolean expression over
// variable names, for example
// "MHW_EVENT_CAT >= 2 && TEMP_EXTREME_INDEX == 12".
type Expression struct {
	src  string
	expr *govaluate.EvaluableExpression
	vars []string
}

// NewExpression parses a boolean expression.
func NewExpression(src string) (*Expression, error) {
	expr, err := govaluate.NewEvaluableExpression(src)
	if err != nil {
		return nil, fmt.Errorf("amdotext: parsing expression %q: %v", src, err)
	}
	return &Expression{src: src, expr: expr, vars: removeDuplicates(expr.Vars())}, nil
}

// Variables implements Predicate.
func (e *Expression) Variables() []string { return e.vars }

// Match implements Predicate.
func (e *Expression) Match(values map[string]float64) (bool, error) {
	params := make(map[string]interface{}, len(e.vars))
	for _, v := range e.vars {
		params[v] = values[v]
	}
	r, err := e.expr.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("amdotext: evaluating %q: %v", e.src, err)
	}
	b, ok := r.(bool)
	if !ok {
		return false, fmt.Errorf("amdotext: expression %q returned %T, not bool", e.src, r)
	}
	return b, nil
}

func (e *Expression) String() string { return e.src }

var equalRegexp = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*==\s*([-+0-9.eE]+)\s*$`)

// ParsePredicate parses a predicate. Simple comparisons of the form
// "NAME==NUMBER" become an Equal predicate; anything else is parsed
// as an Expression.
func ParsePredicate(s string) (Predicate, error) {
	if m := equalRegexp.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			return Equal{Variable: m[1], Value: v}, nil
		}
	}
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("amdotext: empty predicate")
	}
	return NewExpression(s)
}

// removeDuplicates removes all duplicated strings from a slice, returning a
// slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}
