// Package options resolves named server configuration options declared on a
// Keycloak CR to literal values, indirecting through Secrets when necessary.
package options

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	operatorerrors "github.com/dc-tec/keycloak-operator/internal/errors"
)

// Resolver looks up option values for one Keycloak instance. Nothing is cached
// across calls: every resolution re-reads the referenced Secret so the result
// reflects the current cluster state.
type Resolver struct {
	reader   client.Reader
	keycloak *keycloakv1alpha1.Keycloak
}

// NewResolver returns a Resolver over the given Keycloak CR.
func NewResolver(reader client.Reader, keycloak *keycloakv1alpha1.Keycloak) *Resolver {
	return &Resolver{reader: reader, keycloak: keycloak}
}

// Resolve returns the value of the named option. An undeclared option yields
// found=false and no error; callers apply their own defaults. A declared
// option that cannot be resolved (missing Secret, missing key, neither value
// nor secret reference) is an error that aborts the current cycle.
func (r *Resolver) Resolve(ctx context.Context, name string) (value string, found bool, err error) {
	var option *keycloakv1alpha1.ValueOrSecret
	for i := range r.keycloak.Spec.AdditionalOptions {
		if r.keycloak.Spec.AdditionalOptions[i].Name == name {
			option = &r.keycloak.Spec.AdditionalOptions[i]
			break
		}
	}
	if option == nil {
		return "", false, nil
	}

	if option.Value != "" {
		return option.Value, true, nil
	}

	if option.Secret == nil {
		return "", false, fmt.Errorf("%w: option %q declares neither a value nor a secret reference", operatorerrors.ErrOptionInvalid, name)
	}

	secret := &corev1.Secret{}
	key := types.NamespacedName{
		Namespace: r.keycloak.Namespace,
		Name:      option.Secret.Name,
	}
	if err := r.reader.Get(ctx, key, secret); err != nil {
		if apierrors.IsNotFound(err) {
			return "", false, operatorerrors.WrapSecretNotFound(key.Namespace, key.Name, err)
		}
		return "", false, fmt.Errorf("failed to get Secret %s/%s for option %q: %w", key.Namespace, key.Name, name, err)
	}

	data, ok := secret.Data[option.Secret.Key]
	if !ok {
		return "", false, fmt.Errorf("%w: Secret %s/%s has no key %q (option %q)",
			operatorerrors.ErrSecretKeyNotFound, key.Namespace, key.Name, option.Secret.Key, name)
	}

	return string(data), true, nil
}
