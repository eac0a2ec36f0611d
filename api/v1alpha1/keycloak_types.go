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
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ConditionType identifies a specific aspect of Keycloak health or lifecycle.
// This type is kept as a strong string alias to avoid stringly-typed code.
type ConditionType string

const (
	// ConditionReady indicates whether all requested Keycloak instances are ready.
	ConditionReady ConditionType = "Ready"
	// ConditionHasErrors indicates the operator has observed failing Keycloak pods.
	ConditionHasErrors ConditionType = "HasErrors"
	// ConditionRollingUpdate indicates a rolling update of the workload is in progress.
	ConditionRollingUpdate ConditionType = "RollingUpdate"
)

// StatusMessageCategory classifies a status message produced during reconciliation.
// +kubebuilder:validation:Enum=NotReady;RollingUpdate;Warning;Error
type StatusMessageCategory string

const (
	// CategoryNotReady marks messages explaining why the deployment is not ready yet.
	CategoryNotReady StatusMessageCategory = "NotReady"
	// CategoryRollingUpdate marks messages reporting an in-flight rolling update.
	CategoryRollingUpdate StatusMessageCategory = "RollingUpdate"
	// CategoryWarning marks non-fatal validation warnings (e.g. rejected overlay fields).
	CategoryWarning StatusMessageCategory = "Warning"
	// CategoryError marks observed failures such as crash-looping pods.
	CategoryError StatusMessageCategory = "Error"
)

// StatusMessage is a single categorized, human-readable reconciliation message.
type StatusMessage struct {
	// +kubebuilder:validation:Required
	Category StatusMessageCategory `json:"category"`
	// +kubebuilder:validation:Required
	Message string `json:"message"`
}

// HTTPSpec configures the HTTP(S) endpoint of the Keycloak server.
type HTTPSpec struct {
	// TLSSecret is the name of a kubernetes.io/tls Secret in the same namespace
	// holding the server certificate and key. When set, the server listens on
	// HTTPS and probes use the HTTPS scheme.
	// +optional
	TLSSecret string `json:"tlsSecret,omitempty"`
}

// DatabaseSpec points Keycloak at its backing database. Credentials are always
// referenced through Secrets, never inlined.
type DatabaseSpec struct {
	// Vendor is the database vendor, e.g. "postgres" or "mariadb".
	// +optional
	Vendor string `json:"vendor,omitempty"`
	// Host of the database server.
	// +optional
	Host string `json:"host,omitempty"`
	// Port of the database server.
	// +optional
	Port int32 `json:"port,omitempty"`
	// Database is the database name.
	// +optional
	Database string `json:"database,omitempty"`
	// UsernameSecret selects the Secret key holding the database username.
	// +optional
	UsernameSecret *corev1.SecretKeySelector `json:"usernameSecret,omitempty"`
	// PasswordSecret selects the Secret key holding the database password.
	// +optional
	PasswordSecret *corev1.SecretKeySelector `json:"passwordSecret,omitempty"`
}

// UnsupportedSpec carries low-level overrides that are merged onto the
// generated workload without any schema guarantees. Use at your own risk.
type UnsupportedSpec struct {
	// PodTemplate is a partial pod template merged onto the generated one
	// according to a fixed per-field policy. Identity fields (template
	// name/namespace, primary container name and image) cannot be overridden.
	// +optional
	PodTemplate *corev1.PodTemplateSpec `json:"podTemplate,omitempty"`
}

// KeycloakSpec defines the desired state of a Keycloak deployment.
type KeycloakSpec struct {
	// Instances is the number of Keycloak server instances to run.
	// +kubebuilder:default=1
	// +kubebuilder:validation:Minimum=0
	// +optional
	Instances int32 `json:"instances,omitempty"`

	// Image overrides the operator-wide default Keycloak image. A custom image
	// is assumed to be pre-optimized; the operator starts it with --optimized.
	// +optional
	Image string `json:"image,omitempty"`

	// ImagePullSecrets are propagated to the generated pod template.
	// +optional
	ImagePullSecrets []corev1.LocalObjectReference `json:"imagePullSecrets,omitempty"`

	// AdditionalOptions are extra server configuration options. An option with
	// the same name as a built-in default replaces that default entirely.
	// +optional
	AdditionalOptions []ValueOrSecret `json:"additionalOptions,omitempty"`

	// +optional
	HTTP *HTTPSpec `json:"http,omitempty"`

	// Hostname is the externally reachable hostname of this Keycloak instance.
	// +optional
	Hostname string `json:"hostname,omitempty"`

	// +optional
	Database *DatabaseSpec `json:"database,omitempty"`

	// +optional
	Unsupported *UnsupportedSpec `json:"unsupported,omitempty"`
}

// KeycloakStatus defines the observed state of a Keycloak deployment.
type KeycloakStatus struct {
	// Selector is the label selector string matching all pods of this instance,
	// in the canonical sorted form used by the scale subresource.
	// +optional
	Selector string `json:"selector,omitempty"`

	// ReadyInstances is the number of instances observed ready.
	// +optional
	ReadyInstances int32 `json:"readyInstances,omitempty"`

	// Messages are the ordered, categorized reconciliation messages of the
	// last cycle. The ordering is deterministic for unchanged cluster state.
	// +optional
	Messages []StatusMessage `json:"messages,omitempty"`

	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:subresource:scale:specpath=.spec.instances,statuspath=.status.readyInstances,selectorpath=.status.selector
// +kubebuilder:printcolumn:name="Instances",type=integer,JSONPath=`.spec.instances`
// +kubebuilder:printcolumn:name="Ready",type=integer,JSONPath=`.status.readyInstances`
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// Keycloak is the Schema for the keycloaks API.
type Keycloak struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   KeycloakSpec   `json:"spec,omitempty"`
	Status KeycloakStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// KeycloakList contains a list of Keycloak.
type KeycloakList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Keycloak `json:"items"`
}

func init() {
	SchemeBuilder.Register(&Keycloak{}, &KeycloakList{})
}
