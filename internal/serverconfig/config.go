// Package serverconfig maps Keycloak CR fields and server options onto the
// container configuration surface: KC_* environment variables, the service
// port and the TLS certificate mounts.
package serverconfig

import (
	"strings"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/constants"
)

// OptionEnvVarName maps a server option name to the environment variable the
// Keycloak distribution reads it from, e.g. "http-relative-path" becomes
// "KC_HTTP_RELATIVE_PATH".
func OptionEnvVarName(name string) string {
	return "KC_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// IsTLSConfigured reports whether the instance serves TLS.
func IsTLSConfigured(keycloak *keycloakv1alpha1.Keycloak) bool {
	return keycloak.Spec.HTTP != nil && keycloak.Spec.HTTP.TLSSecret != ""
}

// ServicePort returns the port the Keycloak service and the container probes
// target: 8443 when TLS is configured, 8080 otherwise.
func ServicePort(keycloak *keycloakv1alpha1.Keycloak) int32 {
	if IsTLSConfigured(keycloak) {
		return constants.PortHTTPS
	}
	return constants.PortHTTP
}

// DefaultServerOptions returns the static default option set every instance
// starts from. A CR option with the same name replaces the whole entry, not
// individual fields of it.
func DefaultServerOptions() []keycloakv1alpha1.ValueOrSecret {
	return []keycloakv1alpha1.ValueOrSecret{
		{Name: "cache", Value: "ispn"},
		{Name: "cache-stack", Value: "kubernetes"},
		{Name: "health-enabled", Value: "true"},
		{Name: "proxy", Value: "passthrough"},
	}
}
