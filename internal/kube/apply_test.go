package kube

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

type staticResolver struct {
	gvk schema.GroupVersionKind
	err error
}

func (r staticResolver) GroupVersionKindFor(runtime.Object) (schema.GroupVersionKind, error) {
	return r.gvk, r.err
}

func TestToApplyConfigurationWithTypeMeta(t *testing.T) {
	statefulSet := &appsv1.StatefulSet{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "apps/v1",
			Kind:       "StatefulSet",
		},
		ObjectMeta: metav1.ObjectMeta{Name: "example", Namespace: "default"},
	}

	applyConfig, err := ToApplyConfiguration(statefulSet, nil)

	require.NoError(t, err)
	assert.NotNil(t, applyConfig)
}

func TestToApplyConfigurationResolvesEmptyGVK(t *testing.T) {
	statefulSet := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "example", Namespace: "default"},
	}
	resolver := staticResolver{gvk: appsv1.SchemeGroupVersion.WithKind("StatefulSet")}

	applyConfig, err := ToApplyConfiguration(statefulSet, resolver)

	require.NoError(t, err)
	assert.NotNil(t, applyConfig)
}

func TestToApplyConfigurationNilObject(t *testing.T) {
	_, err := ToApplyConfiguration(nil, nil)
	assert.Error(t, err)
}

func TestToApplyConfigurationMissingResolver(t *testing.T) {
	statefulSet := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "example", Namespace: "default"},
	}

	_, err := ToApplyConfiguration(statefulSet, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver is required")
}

func TestToApplyConfigurationResolverError(t *testing.T) {
	statefulSet := &appsv1.StatefulSet{
		ObjectMeta: metav1.ObjectMeta{Name: "example", Namespace: "default"},
	}
	resolver := staticResolver{err: fmt.Errorf("no kind registered")}

	_, err := ToApplyConfiguration(statefulSet, resolver)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get GVK")
}
