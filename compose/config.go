/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package compose

import (
	"github.com/cloudwego/lcel/callbacks"
	"github.com/cloudwego/lcel/internal/generic"
)

// Config is the per-call configuration of a runnable.
// Every hop works on its own copy, composite runnables hand their children a patched copy.
type Config struct {
	// Callbacks is either the handlers supplied by the caller
	// or the manager derived from the parent run.
	Callbacks callbacks.Callbacks
	// Tags are reported by the run and inherited by its children.
	Tags []string
	// Metadata is reported by the run and inherited by its children.
	Metadata map[string]any
	// RunName overrides the reported name of the run. It is not inherited.
	RunName string
	// MaxConcurrency bounds the children a Map runs at once, <= 0 means unbounded.
	// Batch falls back to it when no batch concurrency is set.
	MaxConcurrency int
}

// Option is a functional option for calling a runnable.
type Option func(c *Config)

// WithCallbacks appends handlers to the callbacks of the call.
// It replaces callbacks that were set as a derived manager.
func WithCallbacks(handlers ...callbacks.Handler) Option {
	return func(c *Config) {
		hs, _ := c.Callbacks.(callbacks.Handlers)
		c.Callbacks = append(append(callbacks.Handlers{}, hs...), handlers...)
	}
}

// WithCallbackManager makes the call report to m, usually a manager derived with RunManager.Child.
// Runnables implemented outside this package use it to nest the runs they start.
func WithCallbackManager(m *callbacks.Manager) Option {
	return func(c *Config) {
		if m == nil {
			c.Callbacks = nil
			return
		}
		c.Callbacks = m
	}
}

// WithTags appends tags to the call.
func WithTags(tags ...string) Option {
	return func(c *Config) {
		c.Tags = generic.AppendUnique(c.Tags, tags...)
	}
}

// WithMetadata merges md into the metadata of the call.
func WithMetadata(md map[string]any) Option {
	return func(c *Config) {
		c.Metadata = generic.MergeMaps(c.Metadata, md)
	}
}

// WithRunName sets the name reported for the run of the call.
func WithRunName(name string) Option {
	return func(c *Config) {
		c.RunName = name
	}
}

// WithMaxConcurrency bounds the concurrent work of the call, <= 0 means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(c *Config) {
		c.MaxConcurrency = n
	}
}

// WithConfig replaces the whole config of the call with a copy of cfg.
// Options following it still apply on top.
func WithConfig(cfg *Config) Option {
	return func(c *Config) {
		*c = *cfg.copy()
	}
}

// NewConfig builds the config described by opts.
// Runnables implemented outside this package call it on the options they receive.
func NewConfig(opts ...Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallbackManager configures the manager the run of this call reports to.
// It is nil when no handler, global handler included, observes the call.
func (c *Config) CallbackManager() *callbacks.Manager {
	if c == nil {
		return callbacks.Configure(nil)
	}
	return callbacks.Configure(c.Callbacks,
		callbacks.WithInheritableTags(c.Tags...),
		callbacks.WithInheritableMetadata(c.Metadata))
}

func (c *Config) copy() *Config {
	if c == nil {
		return &Config{}
	}
	cp := *c
	if c.Tags != nil {
		cp.Tags = append([]string{}, c.Tags...)
	}
	if c.Metadata != nil {
		cp.Metadata = generic.CopyMap(c.Metadata)
	}
	return &cp
}

// patchConfig returns the config of a child call: callbacks are replaced by the
// manager derived for the child and the run name is dropped.
func patchConfig(c *Config, child *callbacks.Manager) *Config {
	cp := c.copy()
	cp.Callbacks = nil
	if child != nil {
		cp.Callbacks = child
	}
	cp.RunName = ""
	return cp
}

// mergeConfigs lays call over base: tags are appended, metadata merged,
// and callbacks, run name and concurrency are taken from call when it sets them.
func mergeConfigs(base, call *Config) *Config {
	ret := base.copy()
	if call == nil {
		return ret
	}
	ret.Tags = generic.AppendUnique(ret.Tags, call.Tags...)
	if len(call.Metadata) > 0 {
		ret.Metadata = generic.MergeMaps(ret.Metadata, call.Metadata)
	}
	if call.Callbacks != nil {
		ret.Callbacks = call.Callbacks
	}
	if call.RunName != "" {
		ret.RunName = call.RunName
	}
	if call.MaxConcurrency > 0 {
		ret.MaxConcurrency = call.MaxConcurrency
	}
	return ret
}
