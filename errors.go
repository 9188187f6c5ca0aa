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

import "fmt"

// UnknownVariableError is returned when a variable or dimension name
// does not exist in a dataset.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("amdotext: unknown variable %q", e.Name)
}

// EmptySelectionError is returned when a filter or range selection
// matches no timestamps. The selection that accompanies it is still
// a valid, zero-length dataset.
type EmptySelectionError struct {
	Reason string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("amdotext: empty selection: %s", e.Reason)
}

// NoValidDataError is returned when an aggregate is requested over a
// variable whose values are all missing within the current selection.
type NoValidDataError struct {
	Variable string
}

func (e *NoValidDataError) Error() string {
	return fmt.Sprintf("amdotext: variable %q has no valid data in selection", e.Variable)
}
