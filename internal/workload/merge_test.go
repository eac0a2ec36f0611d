package workload

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

func newBaseTemplate() corev1.PodTemplateSpec {
	return corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{
			Labels: map[string]string{"app.kubernetes.io/name": "keycloak"},
		},
		Spec: corev1.PodSpec{
			RestartPolicy:                 corev1.RestartPolicyAlways,
			TerminationGracePeriodSeconds: ptr.To(int64(30)),
			DNSPolicy:                     corev1.DNSClusterFirst,
			Containers: []corev1.Container{
				{
					Name:  "keycloak",
					Image: "quay.io/keycloak/keycloak:26.0",
					Args:  []string{"start"},
					Env: []corev1.EnvVar{
						{Name: "KC_CACHE", Value: "ispn"},
					},
				},
			},
			Volumes: []corev1.Volume{{Name: "base-volume"}},
		},
	}
}

func TestMergePodTemplateNilOverlay(t *testing.T) {
	base := newBaseTemplate()

	merged := MergePodTemplate(base, nil)

	assert.Empty(t, cmp.Diff(base, merged))
}

func TestMergePodTemplateDoesNotMutateBase(t *testing.T) {
	base := newBaseTemplate()
	snapshot := base.DeepCopy()
	overlay := &corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{Labels: map[string]string{"extra": "label"}},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{Env: []corev1.EnvVar{{Name: "EXTRA", Value: "1"}}},
			},
		},
	}

	MergePodTemplate(base, overlay)

	assert.Empty(t, cmp.Diff(*snapshot, base))
}

func TestMergePodTemplateMapsUnion(t *testing.T) {
	base := newBaseTemplate()
	base.Annotations = map[string]string{"keep": "base", "shared": "base"}
	overlay := &corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{
			Labels:      map[string]string{"overlay": "label"},
			Annotations: map[string]string{"shared": "overlay", "added": "overlay"},
		},
	}

	merged := MergePodTemplate(base, overlay)

	assert.Equal(t, map[string]string{
		"app.kubernetes.io/name": "keycloak",
		"overlay":                "label",
	}, merged.Labels)
	assert.Equal(t, map[string]string{
		"keep":   "base",
		"shared": "overlay",
		"added":  "overlay",
	}, merged.Annotations)
}

func TestMergePodTemplateNodeSelectorUnion(t *testing.T) {
	base := newBaseTemplate()
	base.Spec.NodeSelector = map[string]string{"zone": "a", "disk": "ssd"}
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			NodeSelector: map[string]string{"zone": "b", "arch": "amd64"},
		},
	}

	merged := MergePodTemplate(base, overlay)

	assert.Equal(t, map[string]string{
		"zone": "b",
		"disk": "ssd",
		"arch": "amd64",
	}, merged.Spec.NodeSelector)
}

func TestMergePodTemplateListsConcatenate(t *testing.T) {
	base := newBaseTemplate()
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			Volumes: []corev1.Volume{{Name: "overlay-volume"}},
			Containers: []corev1.Container{
				{
					Env:          []corev1.EnvVar{{Name: "KC_LOG_LEVEL", Value: "debug"}},
					VolumeMounts: []corev1.VolumeMount{{Name: "overlay-volume", MountPath: "/data"}},
				},
			},
			Tolerations: []corev1.Toleration{{Key: "dedicated", Value: "keycloak"}},
		},
	}

	merged := MergePodTemplate(base, overlay)

	require.Len(t, merged.Spec.Volumes, 2)
	assert.Equal(t, "base-volume", merged.Spec.Volumes[0].Name)
	assert.Equal(t, "overlay-volume", merged.Spec.Volumes[1].Name)
	assert.Len(t, merged.Spec.Tolerations, 1)

	container := merged.Spec.Containers[0]
	require.Len(t, container.Env, 2)
	assert.Equal(t, "KC_CACHE", container.Env[0].Name)
	assert.Equal(t, "KC_LOG_LEVEL", container.Env[1].Name)
	assert.Len(t, container.VolumeMounts, 1)
}

func TestMergePodTemplateDoubleApplyDoublesListEntries(t *testing.T) {
	base := newBaseTemplate()
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{Env: []corev1.EnvVar{{Name: "EXTRA", Value: "1"}}},
			},
		},
	}

	once := MergePodTemplate(base, overlay)
	twice := MergePodTemplate(once, overlay)

	assert.Len(t, once.Spec.Containers[0].Env, 2)
	assert.Len(t, twice.Spec.Containers[0].Env, 3)
}

func TestMergePodTemplateScalarsReplaceWhenPresent(t *testing.T) {
	base := newBaseTemplate()
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			PriorityClassName:             "high",
			TerminationGracePeriodSeconds: ptr.To(int64(120)),
			Containers: []corev1.Container{
				{
					Command:         []string{"/custom-entrypoint"},
					ImagePullPolicy: corev1.PullAlways,
				},
			},
		},
	}

	merged := MergePodTemplate(base, overlay)

	assert.Equal(t, "high", merged.Spec.PriorityClassName)
	assert.Equal(t, int64(120), *merged.Spec.TerminationGracePeriodSeconds)

	container := merged.Spec.Containers[0]
	assert.Equal(t, []string{"/custom-entrypoint"}, container.Command)
	assert.Equal(t, corev1.PullAlways, container.ImagePullPolicy)
	// absent scalars keep the base values
	assert.Equal(t, []string{"start"}, container.Args)
	assert.Equal(t, corev1.RestartPolicyAlways, merged.Spec.RestartPolicy)
}

func TestMergePodTemplateEmptyListScalarKeepsBase(t *testing.T) {
	base := newBaseTemplate()
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Command: nil, Args: nil}},
		},
	}

	merged := MergePodTemplate(base, overlay)

	assert.Equal(t, []string{"start"}, merged.Spec.Containers[0].Args)
}

func TestMergePodTemplatePrimaryIdentityPreserved(t *testing.T) {
	base := newBaseTemplate()
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{Name: "renamed", Image: "attacker/image:latest"},
			},
		},
	}

	merged := MergePodTemplate(base, overlay)

	container := merged.Spec.Containers[0]
	assert.Equal(t, "keycloak", container.Name)
	assert.Equal(t, "quay.io/keycloak/keycloak:26.0", container.Image)
}

func TestMergePodTemplateSidecarsAppended(t *testing.T) {
	base := newBaseTemplate()
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{},
				{Name: "proxy", Image: "envoy:latest"},
				{Name: "agent", Image: "agent:latest"},
			},
		},
	}

	merged := MergePodTemplate(base, overlay)

	require.Len(t, merged.Spec.Containers, 3)
	assert.Equal(t, "keycloak", merged.Spec.Containers[0].Name)
	assert.Equal(t, "proxy", merged.Spec.Containers[1].Name)
	assert.Equal(t, "agent", merged.Spec.Containers[2].Name)
}

func TestMergePodTemplateEmptyOverlayContainers(t *testing.T) {
	base := newBaseTemplate()
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{Hostname: "custom"},
	}

	merged := MergePodTemplate(base, overlay)

	require.Len(t, merged.Spec.Containers, 1)
	assert.Equal(t, "custom", merged.Spec.Hostname)
	assert.Empty(t, cmp.Diff(base.Spec.Containers[0], merged.Spec.Containers[0]))
}

func TestMergePodTemplateImagePullSecretsConcatenated(t *testing.T) {
	base := newBaseTemplate()
	base.Spec.ImagePullSecrets = []corev1.LocalObjectReference{{Name: "base-pull"}}
	overlay := &corev1.PodTemplateSpec{
		Spec: corev1.PodSpec{
			ImagePullSecrets: []corev1.LocalObjectReference{{Name: "overlay-pull"}},
		},
	}

	merged := MergePodTemplate(base, overlay)

	require.Len(t, merged.Spec.ImagePullSecrets, 2)
	assert.Equal(t, "base-pull", merged.Spec.ImagePullSecrets[0].Name)
	assert.Equal(t, "overlay-pull", merged.Spec.ImagePullSecrets[1].Name)
}

func TestValidateOverlay(t *testing.T) {
	tests := []struct {
		name    string
		overlay *corev1.PodTemplateSpec
		want    []string
	}{
		{
			name:    "nil overlay",
			overlay: nil,
			want:    nil,
		},
		{
			name:    "clean overlay",
			overlay: &corev1.PodTemplateSpec{Spec: corev1.PodSpec{Containers: []corev1.Container{{}}}},
			want:    nil,
		},
		{
			name: "template identity",
			overlay: &corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Name: "custom", Namespace: "other"},
			},
			want: []string{
				"The name of the podTemplate cannot be modified",
				"The namespace of the podTemplate cannot be modified",
			},
		},
		{
			name: "container identity and pull secrets",
			overlay: &corev1.PodTemplateSpec{
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{Name: "renamed", Image: "custom:latest"},
					},
					ImagePullSecrets: []corev1.LocalObjectReference{{Name: "pull"}},
				},
			},
			want: []string{
				"The name of the keycloak container cannot be modified",
				"The image of the keycloak container cannot be modified using podTemplate",
				"The imagePullSecrets of the keycloak container cannot be modified using podTemplate",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, ValidateOverlay(test.overlay))
		})
	}
}
