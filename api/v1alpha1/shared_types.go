/*
Copyright 2025.

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

package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
)

// ValueOrSecret is a named server configuration option whose value is either
// given literally or referenced from a Secret key. Exactly one of Value and
// Secret must be set when the option is resolved.
type ValueOrSecret struct {
	// Name of the server option, e.g. "http-relative-path".
	// +kubebuilder:validation:MinLength=1
	Name string `json:"name"`

	// Value is the literal option value.
	// +optional
	Value string `json:"value,omitempty"`

	// Secret references the Secret key holding the option value.
	// +optional
	Secret *corev1.SecretKeySelector `json:"secret,omitempty"`
}
