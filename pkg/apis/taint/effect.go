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

package taint

import "fmt"

// Effect is a closed variant over the three taint effects the Kubernetes
// API recognizes. Unlike corev1.TaintEffect, zero-value Effect is not a
// valid member of the set: callers must go through ParseEffect.
type Effect string

const (
	NoSchedule       Effect = "NoSchedule"
	PreferNoSchedule Effect = "PreferNoSchedule"
	NoExecute        Effect = "NoExecute"
)

// ParseEffect rejects any value outside the three enumerated constructors.
// Configuration loading (through UnmarshalText) is the only production
// caller; effects of taints read back from the cluster are converted
// directly in pkg/controllers/node without passing through here.
func ParseEffect(s string) (Effect, error) {
	switch Effect(s) {
	case NoSchedule, PreferNoSchedule, NoExecute:
		return Effect(s), nil
	default:
		return "", fmt.Errorf("unknown taint effect %q, must be one of NoSchedule, PreferNoSchedule, NoExecute", s)
	}
}

// UnmarshalText lets Effect be decoded directly out of TOML via go-toml/v2,
// rejecting unknown values at decode time rather than at a separate
// validation pass.
func (e *Effect) UnmarshalText(text []byte) error {
	parsed, err := ParseEffect(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e Effect) String() string {
	return string(e)
}
