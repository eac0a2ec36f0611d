package constants

// Well-known server option names the core reads back out of the CR.
const (
	// OptionHTTPRelativePath is the option controlling the path Keycloak is
	// served under. It defaults to "/" and always participates in the probe
	// endpoint paths.
	OptionHTTPRelativePath = "http-relative-path"
)

// Container ports exposed by the Keycloak container.
const (
	PortHTTP  = 8080
	PortHTTPS = 8443
)

// Probe timing. Keycloak startup can be slow (first boot builds the server);
// readiness tolerates ~8 minutes, liveness ~5 minutes before failing.
const (
	ProbeInitialDelaySeconds = 20
	ProbePeriodSeconds       = 2

	ReadinessFailureThreshold = 250
	LivenessFailureThreshold  = 150
)

// Fixed pod-level defaults of the generated template.
const (
	TerminationGracePeriodSeconds = int64(30)
)
