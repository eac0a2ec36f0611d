package constants

// Common Kubernetes label keys used by the operator.
const (
	LabelAppName      = "app.kubernetes.io/name"
	LabelAppInstance  = "app.kubernetes.io/instance"
	LabelAppManagedBy = "app.kubernetes.io/managed-by"

	// LabelControllerRevisionHash is set by the StatefulSet controller on pods
	// and correlates them with a specific template revision.
	LabelControllerRevisionHash = "controller-revision-hash"
)

// Common label values used by the operator.
const (
	LabelValueAppNameKeycloak   = "keycloak"
	LabelValueManagedByKeycloak = "keycloak-operator"
)
