package serverconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/constants"
)

func TestOptionEnvVarName(t *testing.T) {
	tests := map[string]string{
		"http-relative-path": "KC_HTTP_RELATIVE_PATH",
		"db":                 "KC_DB",
		"hostname":           "KC_HOSTNAME",
		"cache-stack":        "KC_CACHE_STACK",
	}

	for option, want := range tests {
		assert.Equal(t, want, OptionEnvVarName(option))
	}
}

func TestServicePort(t *testing.T) {
	plain := &keycloakv1alpha1.Keycloak{}
	assert.Equal(t, int32(constants.PortHTTP), ServicePort(plain))
	assert.False(t, IsTLSConfigured(plain))

	tls := &keycloakv1alpha1.Keycloak{
		Spec: keycloakv1alpha1.KeycloakSpec{
			HTTP: &keycloakv1alpha1.HTTPSpec{TLSSecret: "example-tls"},
		},
	}
	assert.Equal(t, int32(constants.PortHTTPS), ServicePort(tls))
	assert.True(t, IsTLSConfigured(tls))
}

func TestConfiguratorValidateFirstClassCollisions(t *testing.T) {
	kc := &keycloakv1alpha1.Keycloak{
		ObjectMeta: metav1.ObjectMeta{Name: "example", Namespace: "default"},
		Spec: keycloakv1alpha1.KeycloakSpec{
			AdditionalOptions: []keycloakv1alpha1.ValueOrSecret{
				{Name: "db", Value: "postgres"},
				{Name: "log-level", Value: "debug"},
				{Name: "hostname", Value: "kc.example.com"},
			},
		},
	}

	warnings := NewConfigurator(kc).Validate()
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `"db"`)
	assert.Contains(t, warnings[1], `"hostname"`)

	filtered := FilterFirstClass(kc.Spec.AdditionalOptions)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "log-level", filtered[0].Name)
}

func TestConfiguratorSecretNames(t *testing.T) {
	kc := &keycloakv1alpha1.Keycloak{
		Spec: keycloakv1alpha1.KeycloakSpec{
			HTTP: &keycloakv1alpha1.HTTPSpec{TLSSecret: "example-tls"},
			Database: &keycloakv1alpha1.DatabaseSpec{
				UsernameSecret: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "db-credentials"},
					Key:                  "username",
				},
				PasswordSecret: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "db-credentials"},
					Key:                  "password",
				},
			},
		},
	}

	// Duplicate secret names collapse; output is sorted.
	assert.Equal(t, []string{"db-credentials", "example-tls"}, NewConfigurator(kc).SecretNames())
}
