package constants

// Environment variables injected into the Keycloak container.
const (
	// EnvAdminUsername and EnvAdminPassword carry the bootstrap admin
	// credentials. Both are sourced from the initial admin Secret and are
	// non-optional: a missing Secret fails the container at runtime, not the
	// reconciliation.
	EnvAdminUsername = "KEYCLOAK_ADMIN"
	EnvAdminPassword = "KEYCLOAK_ADMIN_PASSWORD" // #nosec G101 -- This is an environment variable name constant, not a credential

	// EnvJGroupsDNSQuery is the DNS name JGroups queries to discover cluster
	// members. The value is derived from the instance name and namespace.
	EnvJGroupsDNSQuery = "jgroups.dns.query"
)

// Environment variables read by the operator process itself.
const (
	EnvOperatorKeycloakImage = "OPERATOR_KEYCLOAK_IMAGE"
)
