// Package kube provides Kubernetes-specific utilities and helpers.
package kube

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/dc-tec/keycloak-operator/internal/constants"
	operatorerrors "github.com/dc-tec/keycloak-operator/internal/errors"
)

// GVKResolver resolves the GroupVersionKind of an object. client.Client
// implements it; tests can supply something lighter.
type GVKResolver interface {
	GroupVersionKindFor(obj runtime.Object) (schema.GroupVersionKind, error)
}

// ApplyOwned applies obj via Server-Side Apply with owner as its controller
// reference, so the garbage collector removes it when the owner goes away.
// The operator force-takes ownership of every field it manages; fields it
// does not set are left to other field managers.
//
// API failures are wrapped as transient so the caller retries on a short
// schedule instead of surfacing a config error.
func ApplyOwned(ctx context.Context, c client.Client, scheme *runtime.Scheme, owner, obj client.Object) error {
	if scheme == nil {
		return fmt.Errorf("scheme is required")
	}

	if err := controllerutil.SetControllerReference(owner, obj, scheme); err != nil {
		return fmt.Errorf("failed to set owner reference: %w", err)
	}

	applyConfig, err := ToApplyConfiguration(obj, c)
	if err != nil {
		return fmt.Errorf("failed to convert object to ApplyConfiguration: %w", err)
	}

	applyOpts := []client.ApplyOption{
		client.ForceOwnership,
		client.FieldOwner(constants.FieldOwner),
	}

	if err := c.Apply(ctx, applyConfig, applyOpts...); err != nil {
		return operatorerrors.WrapTransientKubernetesAPI(
			fmt.Errorf("failed to apply resource %s/%s: %w", obj.GetNamespace(), obj.GetName(), err))
	}

	return nil
}

// ToApplyConfiguration converts a client.Object to a runtime.ApplyConfiguration
// for use with client.Client.Apply() or client.Client.Status().Apply().
//
// Server-Side Apply requires the full object in unstructured form with its
// GroupVersionKind populated. The resolver is consulted only when the object's
// TypeMeta is empty.
func ToApplyConfiguration(obj client.Object, resolver GVKResolver) (runtime.ApplyConfiguration, error) {
	if obj == nil {
		return nil, fmt.Errorf("object cannot be nil")
	}

	u, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert object to unstructured: %w", err)
	}

	unstructuredObj := &unstructured.Unstructured{Object: u}
	gvk := obj.GetObjectKind().GroupVersionKind()
	if gvk.Empty() {
		if resolver == nil {
			return nil, fmt.Errorf("resolver is required when object GVK is empty")
		}
		gvk, err = resolver.GroupVersionKindFor(obj)
		if err != nil {
			return nil, fmt.Errorf("failed to get GVK for object: %w", err)
		}
	}
	unstructuredObj.SetGroupVersionKind(gvk)

	return client.ApplyConfigurationFromUnstructured(unstructuredObj), nil
}
