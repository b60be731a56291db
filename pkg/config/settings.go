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

// Package config loads and validates the controller's TOML configuration
// file into an immutable Settings value.
package config

import (
	"go.uber.org/zap/zapcore"

	"github.com/awslabs/node-condition-tainter/pkg/apis/taint"
	"github.com/awslabs/node-condition-tainter/pkg/matcher"
)

// rawSettings mirrors the TOML document shape exactly, before validation
// and regexp compilation turn it into Settings.
type rawSettings struct {
	Server     rawServer     `toml:"server"`
	Log        rawLog        `toml:"log"`
	Reconciler rawReconciler `toml:"reconciler"`
}

type rawServer struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

type rawLog struct {
	MaxLevel string `toml:"max_level"`
}

type rawReconciler struct {
	Matchers []rawMatcher `toml:"matchers"`
}

type rawMatcher struct {
	Taint      rawTaint       `toml:"taint"`
	Conditions []rawCondition `toml:"conditions"`
}

type rawTaint struct {
	Effect taint.Effect `toml:"effect"`
	Key    string       `toml:"key"`
	Value  string       `toml:"value"`
}

type rawCondition struct {
	Type   string `toml:"type"`
	Status string `toml:"status"`
}

// Settings is the fully validated, immutable configuration the rest of the
// controller consumes. It is built once at startup and never mutated
// It never changes after startup.
type Settings struct {
	Server Server
	Log    Log
	Rules  []matcher.Rule
}

type Server struct {
	Host string
	Port string
}

type Log struct {
	MaxLevel zapcore.Level
}
