// Package status wraps the apimachinery condition helpers for the Keycloak
// status subresource.
package status

import (
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
)

// Set adds or updates a condition. LastTransitionTime is only bumped by
// meta.SetStatusCondition when the status actually flips, so repeated cycles
// over unchanged state do not churn the subresource.
func Set(conditions *[]metav1.Condition, generation int64, conditionType keycloakv1alpha1.ConditionType, status metav1.ConditionStatus, reason, message string) {
	meta.SetStatusCondition(conditions, metav1.Condition{
		Type:               string(conditionType),
		Status:             status,
		Reason:             reason,
		Message:            message,
		ObservedGeneration: generation,
		LastTransitionTime: metav1.Now(),
	})
}

// SetBool maps an observed boolean onto a True/False condition.
func SetBool(conditions *[]metav1.Condition, generation int64, conditionType keycloakv1alpha1.ConditionType, value bool, reason, message string) {
	status := metav1.ConditionFalse
	if value {
		status = metav1.ConditionTrue
	}
	Set(conditions, generation, conditionType, status, reason, message)
}

// Unknown marks a condition as Unknown, used when a cycle aborts before the
// observation that feeds the condition.
func Unknown(conditions *[]metav1.Condition, generation int64, conditionType keycloakv1alpha1.ConditionType, reason, message string) {
	Set(conditions, generation, conditionType, metav1.ConditionUnknown, reason, message)
}

// Get returns the condition with the given type, or nil if not present.
func Get(conditions []metav1.Condition, conditionType keycloakv1alpha1.ConditionType) *metav1.Condition {
	return meta.FindStatusCondition(conditions, string(conditionType))
}

// IsTrue reports whether the condition with the given type has Status=True.
func IsTrue(conditions []metav1.Condition, conditionType keycloakv1alpha1.ConditionType) bool {
	return meta.IsStatusConditionTrue(conditions, string(conditionType))
}
