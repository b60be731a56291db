/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package condition holds the observed-condition and condition-predicate
// types the matcher engine evaluates node conditions against.
package condition

import "regexp"

// Condition is a (type, status) pair as observed on a node. Both fields are
// opaque strings from the controller's point of view.
type Condition struct {
	Type   string
	Status string
}

// Predicate is a (type, status pattern) pair. Type is matched by exact
// string equality; StatusRegexp is matched as a full-string anchored
// regular expression.
type Predicate struct {
	Type         string
	StatusRegexp *regexp.Regexp
}

// Matches reports whether a single observed condition satisfies p.
func (p Predicate) Matches(c Condition) bool {
	return p.Type == c.Type && p.StatusRegexp.MatchString(c.Status)
}

// AnySatisfies reports whether at least one observed condition satisfies p.
func (p Predicate) AnySatisfies(observed []Condition) bool {
	for _, c := range observed {
		if p.Matches(c) {
			return true
		}
	}
	return false
}

// CompilePredicate anchors pattern as a full-string match before compiling:
// "Kaput|Ruined" matches "Kaput" and "Ruined" in full but not "kaput-ish"
// or "Kaput2".
func CompilePredicate(conditionType, statusPattern string) (Predicate, error) {
	re, err := regexp.Compile("^(?:" + statusPattern + ")$")
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{Type: conditionType, StatusRegexp: re}, nil
}
