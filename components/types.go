/*
 * Copyright 2024 CloudWeGo Authors
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

// Package components holds the contracts shared by the runs observed through callbacks.
package components

// Typer gets the type name of one runnable's implementation.
// If Typer exists, the serialized id of the runnable ends with {Typer} instead of the Go type name.
// Recommend using Camel Case Naming Style for Typer.
type Typer interface {
	GetType() string
}

// GetType returns the type name for a value that implements Typer.
func GetType(component any) (string, bool) {
	if typer, ok := component.(Typer); ok {
		return typer.GetType(), true
	}

	return "", false
}
