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

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/awslabs/node-condition-tainter/pkg/apis/condition"
	"github.com/awslabs/node-condition-tainter/pkg/apis/taint"
	"github.com/awslabs/node-condition-tainter/pkg/matcher"
)

// Load reads the TOML file at path and returns a fully validated Settings,
// or a joined error describing every problem found (not just the first),
// collecting independent per-item failures with multierr instead of
// stopping at the first one.
//
// The read itself is retried a few times: a ConfigMap-projected file is
// swapped into place via an atomic symlink rename, so a read landing on
// the old target can transiently see a missing file.
func Load(path string) (Settings, error) {
	var data []byte
	err := retry.Do(
		func() (err error) {
			data, err = os.ReadFile(path)
			return err
		},
		retry.Delay(200*time.Millisecond),
		retry.Attempts(3),
	)
	if err != nil {
		return Settings{}, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var raw rawSettings
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	return validate(raw)
}

func validate(raw rawSettings) (Settings, error) {
	var errs error

	level, err := parseLogLevel(raw.Log.MaxLevel)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log.max_level: %w", err))
	}

	if raw.Server.Host == "" {
		errs = multierr.Append(errs, fmt.Errorf("server.host: must not be empty"))
	}
	if raw.Server.Port == "" {
		errs = multierr.Append(errs, fmt.Errorf("server.port: must not be empty"))
	}

	if len(raw.Reconciler.Matchers) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("reconciler.matchers: must declare at least one matcher"))
	}

	rules := make([]matcher.Rule, 0, len(raw.Reconciler.Matchers))
	for i, m := range raw.Reconciler.Matchers {
		rule, ruleErrs := validateMatcher(i, m)
		if ruleErrs != nil {
			errs = multierr.Append(errs, ruleErrs)
			continue
		}
		rules = append(rules, rule)
	}

	if errs != nil {
		return Settings{}, errs
	}

	return Settings{
		Server: Server{Host: raw.Server.Host, Port: raw.Server.Port},
		Log:    Log{MaxLevel: level},
		Rules:  rules,
	}, nil
}

func validateMatcher(index int, m rawMatcher) (matcher.Rule, error) {
	var errs error

	if m.Taint.Key == "" {
		errs = multierr.Append(errs, fmt.Errorf("reconciler.matchers[%d].taint.key: must not be empty", index))
	}
	// taint.value is optional: the canonical out-of-service taint this
	// controller exists to apply (node.kubernetes.io/out-of-service) is
	// valueless, matching the original's value: Option<String>.
	// m.Taint.Effect was already validated (or rejected) during TOML
	// decoding by taint.Effect.UnmarshalText; an empty value here means
	// decoding never ran, which only happens if the field was omitted.
	if m.Taint.Effect == "" {
		errs = multierr.Append(errs, fmt.Errorf("reconciler.matchers[%d].taint.effect: must not be empty", index))
	}

	if len(m.Conditions) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("reconciler.matchers[%d].conditions: must declare at least one condition", index))
	}

	predicates := make([]condition.Predicate, 0, len(m.Conditions))
	for j, c := range m.Conditions {
		predicate, err := condition.CompilePredicate(c.Type, c.Status)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reconciler.matchers[%d].conditions[%d].status: %w", index, j, err))
			continue
		}
		predicates = append(predicates, predicate)
	}

	if errs != nil {
		return matcher.Rule{}, errs
	}

	return matcher.Rule{
		Taint:      taintFromRaw(m.Taint),
		Predicates: predicates,
	}, nil
}

func taintFromRaw(t rawTaint) taint.Taint {
	return taint.Taint{Key: t.Key, Value: t.Value, Effect: t.Effect}
}

func parseLogLevel(s string) (zapcore.Level, error) {
	switch s {
	case "trace":
		// zap has no native trace level; map it to the most verbose debug
		// level it supports (see DESIGN.md).
		return zapcore.DebugLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("%q is not one of trace, debug, info, warn, error", s)
	}
}
