// Package workload computes the desired stateful workload for a Keycloak
// instance: the baseline StatefulSet, the user overlay merge and the
// migration safety check.
package workload

import (
	"maps"
	"sort"
	"strings"

	appsv1 "k8s.io/api/apps/v1"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/constants"
)

// InstanceLabels returns the canonical label set identifying every object
// belonging to one Keycloak instance. The key set is fixed; the selector built
// from it must be byte-identical across cycles because selectors are immutable
// on StatefulSets.
func InstanceLabels(keycloak *keycloakv1alpha1.Keycloak) map[string]string {
	return map[string]string{
		constants.LabelAppName:      constants.LabelValueAppNameKeycloak,
		constants.LabelAppInstance:  keycloak.Name,
		constants.LabelAppManagedBy: constants.LabelValueManagedByKeycloak,
	}
}

// SelectorString renders labels as a selector string with keys in sorted
// order, so repeated cycles produce the same bytes.
func SelectorString(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+labels[key])
	}
	return strings.Join(parts, ",")
}

// HasExpectedMatchLabels reports whether the live StatefulSet's selector
// matches the canonical instance labels. A mismatched selector cannot be
// patched in place; the caller must delete the object so it is recreated.
func HasExpectedMatchLabels(statefulSet *appsv1.StatefulSet, labels map[string]string) bool {
	if statefulSet == nil {
		return true
	}
	if statefulSet.Spec.Selector == nil {
		return false
	}
	return maps.Equal(statefulSet.Spec.Selector.MatchLabels, labels)
}
