// Package health derives the observed status of a Keycloak instance from the
// live StatefulSet and its pods.
package health

import (
	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
)

// Report collects the per-cycle observations that feed the Keycloak status:
// categorized messages, the ready instance count and the canonical pod
// selector. Message order is deterministic so repeated cycles over the same
// cluster state produce byte-identical status updates.
type Report struct {
	Selector       string
	ReadyInstances int32
	Messages       []keycloakv1alpha1.StatusMessage
}

func (r *Report) add(category keycloakv1alpha1.StatusMessageCategory, message string) {
	r.Messages = append(r.Messages, keycloakv1alpha1.StatusMessage{
		Category: category,
		Message:  message,
	})
}

func (r *Report) AddNotReady(message string) {
	r.add(keycloakv1alpha1.CategoryNotReady, message)
}

func (r *Report) AddRollingUpdate(message string) {
	r.add(keycloakv1alpha1.CategoryRollingUpdate, message)
}

func (r *Report) AddWarning(message string) {
	r.add(keycloakv1alpha1.CategoryWarning, message)
}

func (r *Report) AddError(message string) {
	r.add(keycloakv1alpha1.CategoryError, message)
}

// HasCategory reports whether at least one message of the given category was
// recorded this cycle.
func (r *Report) HasCategory(category keycloakv1alpha1.StatusMessageCategory) bool {
	for _, message := range r.Messages {
		if message.Category == category {
			return true
		}
	}
	return false
}

// MessagesOf returns the texts of all messages in the given category, in
// recording order.
func (r *Report) MessagesOf(category keycloakv1alpha1.StatusMessageCategory) []string {
	var texts []string
	for _, message := range r.Messages {
		if message.Category == category {
			texts = append(texts, message.Message)
		}
	}
	return texts
}
