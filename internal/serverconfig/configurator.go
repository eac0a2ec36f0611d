package serverconfig

import (
	"fmt"
	"sort"
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
)

const (
	certificatesVolumeName = "keycloak-tls-certificates"
	certificatesMountPath  = "/mnt/certificates"
)

// firstClassOptions are server options controlled by dedicated CR fields.
// Declaring them via spec.additionalOptions is rejected with a warning.
var firstClassOptions = map[string]string{
	"hostname":                   "spec.hostname",
	"https-certificate-file":     "spec.http.tlsSecret",
	"https-certificate-key-file": "spec.http.tlsSecret",
	"db":                         "spec.database",
	"db-url-host":                "spec.database",
	"db-url-port":                "spec.database",
	"db-url-database":            "spec.database",
	"db-username":                "spec.database",
	"db-password":                "spec.database",
}

// Configurator applies distribution-specific low-level server configuration
// derived from first-class CR fields onto the generated workload. It reports
// the Secrets it depends on and validation warnings for the status report.
type Configurator struct {
	keycloak *keycloakv1alpha1.Keycloak
}

// NewConfigurator returns a Configurator for the given Keycloak CR.
func NewConfigurator(keycloak *keycloakv1alpha1.Keycloak) *Configurator {
	return &Configurator{keycloak: keycloak}
}

// ApplyOptions mutates the StatefulSet's primary container with the env vars
// and mounts derived from first-class CR fields. It must run against the base
// template, before the user overlay is merged.
func (c *Configurator) ApplyOptions(statefulSet *appsv1.StatefulSet) {
	podSpec := &statefulSet.Spec.Template.Spec
	container := &podSpec.Containers[0]

	container.Env = append(container.Env, c.envVars()...)

	if IsTLSConfigured(c.keycloak) {
		podSpec.Volumes = append(podSpec.Volumes, corev1.Volume{
			Name: certificatesVolumeName,
			VolumeSource: corev1.VolumeSource{
				Secret: &corev1.SecretVolumeSource{
					SecretName: c.keycloak.Spec.HTTP.TLSSecret,
				},
			},
		})
		container.VolumeMounts = append(container.VolumeMounts, corev1.VolumeMount{
			Name:      certificatesVolumeName,
			MountPath: certificatesMountPath,
			ReadOnly:  true,
		})
	}
}

func (c *Configurator) envVars() []corev1.EnvVar {
	var env []corev1.EnvVar

	if c.keycloak.Spec.Hostname != "" {
		env = append(env, corev1.EnvVar{
			Name:  OptionEnvVarName("hostname"),
			Value: c.keycloak.Spec.Hostname,
		})
	}

	if IsTLSConfigured(c.keycloak) {
		env = append(env,
			corev1.EnvVar{
				Name:  OptionEnvVarName("https-certificate-file"),
				Value: certificatesMountPath + "/tls.crt",
			},
			corev1.EnvVar{
				Name:  OptionEnvVarName("https-certificate-key-file"),
				Value: certificatesMountPath + "/tls.key",
			},
		)
	}

	if db := c.keycloak.Spec.Database; db != nil {
		if db.Vendor != "" {
			env = append(env, corev1.EnvVar{Name: OptionEnvVarName("db"), Value: db.Vendor})
		}
		if db.Host != "" {
			env = append(env, corev1.EnvVar{Name: OptionEnvVarName("db-url-host"), Value: db.Host})
		}
		if db.Port != 0 {
			env = append(env, corev1.EnvVar{Name: OptionEnvVarName("db-url-port"), Value: strconv.Itoa(int(db.Port))})
		}
		if db.Database != "" {
			env = append(env, corev1.EnvVar{Name: OptionEnvVarName("db-url-database"), Value: db.Database})
		}
		if db.UsernameSecret != nil {
			env = append(env, corev1.EnvVar{
				Name:      OptionEnvVarName("db-username"),
				ValueFrom: &corev1.EnvVarSource{SecretKeyRef: db.UsernameSecret},
			})
		}
		if db.PasswordSecret != nil {
			env = append(env, corev1.EnvVar{
				Name:      OptionEnvVarName("db-password"),
				ValueFrom: &corev1.EnvVarSource{SecretKeyRef: db.PasswordSecret},
			})
		}
	}

	return env
}

// SecretNames returns the names of Secrets this configurator wires into the
// workload, sorted for stable output.
func (c *Configurator) SecretNames() []string {
	set := map[string]struct{}{}

	if IsTLSConfigured(c.keycloak) {
		set[c.keycloak.Spec.HTTP.TLSSecret] = struct{}{}
	}
	if db := c.keycloak.Spec.Database; db != nil {
		if db.UsernameSecret != nil {
			set[db.UsernameSecret.Name] = struct{}{}
		}
		if db.PasswordSecret != nil {
			set[db.PasswordSecret.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate returns warnings for additionalOptions that collide with
// first-class CR fields. The offending option is not applied; the build
// proceeds.
func (c *Configurator) Validate() []string {
	var warnings []string
	for _, option := range c.keycloak.Spec.AdditionalOptions {
		if field, ok := firstClassOptions[option.Name]; ok {
			warnings = append(warnings, fmt.Sprintf("The option %q is controlled by %s and cannot be set via additionalOptions", option.Name, field))
		}
	}
	return warnings
}

// FilterFirstClass drops options controlled by first-class fields from the
// given list, preserving order. The companion Validate call reports them.
func FilterFirstClass(options []keycloakv1alpha1.ValueOrSecret) []keycloakv1alpha1.ValueOrSecret {
	filtered := make([]keycloakv1alpha1.ValueOrSecret, 0, len(options))
	for _, option := range options {
		if _, ok := firstClassOptions[option.Name]; ok {
			continue
		}
		filtered = append(filtered, option)
	}
	return filtered
}
