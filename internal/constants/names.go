package constants

// Resource name suffixes used by the operator when referencing per-instance resources.
const (
	// SuffixInitialAdminSecret names the Secret carrying the bootstrap admin
	// credentials under the keys "username" and "password".
	SuffixInitialAdminSecret = "-initial-admin"

	// SuffixDiscoveryService names the headless service used by JGroups DNS
	// discovery for cluster formation.
	SuffixDiscoveryService = "-discovery"
)

// Well-known container names.
const (
	ContainerNameKeycloak = "keycloak"
)

// Secret keys of the initial admin Secret.
const (
	SecretKeyAdminUsername = "username"
	SecretKeyAdminPassword = "password"
)

// FieldOwner is the manager name used for Server-Side Apply patches.
const FieldOwner = "keycloak-operator"
