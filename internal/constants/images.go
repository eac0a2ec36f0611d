package constants

import "os"

// defaultKeycloakImage is the operator-wide default server image used when the
// Keycloak CR does not override spec.image.
const defaultKeycloakImage = "quay.io/keycloak/keycloak:26.0"

// DefaultKeycloakImage returns the operator-wide default Keycloak image.
// OPERATOR_KEYCLOAK_IMAGE overrides the built-in default, which lets air-gapped
// deployments point at a mirrored registry without rebuilding the operator.
func DefaultKeycloakImage() string {
	if img := os.Getenv(EnvOperatorKeycloakImage); img != "" {
		return img
	}
	return defaultKeycloakImage
}
