package workload

import (
	"sort"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/constants"
	"github.com/dc-tec/keycloak-operator/internal/serverconfig"
)

// Builder assembles the baseline StatefulSet for a Keycloak instance. The
// baseline is deterministic: the same Keycloak object always yields the same
// StatefulSet, so Server-Side Apply converges without spurious rollouts.
type Builder struct {
	// DefaultImage is used when the Keycloak object does not pin one.
	DefaultImage string
	// PodLabels are merged into every pod template on top of the instance
	// labels. Instance labels win on collision.
	PodLabels map[string]string
}

func NewBuilder() *Builder {
	return &Builder{DefaultImage: constants.DefaultKeycloakImage()}
}

// BuildBaseStatefulSet returns the baseline StatefulSet and the names of the
// Secrets referenced by the server option env vars. relativePath must already
// be normalized to a trailing slash; probe paths are derived from it.
func (b *Builder) BuildBaseStatefulSet(keycloak *keycloakv1alpha1.Keycloak, relativePath string) (*appsv1.StatefulSet, []string) {
	labels := InstanceLabels(keycloak)

	image := keycloak.Spec.Image
	customImage := image != ""
	if !customImage {
		image = b.DefaultImage
	}

	args := []string{"start"}
	if customImage {
		// A custom image is expected to carry a pre-built configuration, so
		// the server can skip its build phase on boot.
		args = append(args, "--optimized")
	}

	env, secretNames := b.buildEnvVars(keycloak)

	statefulSet := &appsv1.StatefulSet{
		TypeMeta: metav1.TypeMeta{
			APIVersion: appsv1.SchemeGroupVersion.String(),
			Kind:       "StatefulSet",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      keycloak.Name,
			Namespace: keycloak.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.StatefulSetSpec{
			Replicas:    ptr.To(keycloak.Spec.Instances),
			Selector:    &metav1.LabelSelector{MatchLabels: labels},
			ServiceName: keycloak.Name + constants.SuffixDiscoveryService,
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: b.podLabels(labels),
				},
				Spec: corev1.PodSpec{
					RestartPolicy:                 corev1.RestartPolicyAlways,
					TerminationGracePeriodSeconds: ptr.To(constants.TerminationGracePeriodSeconds),
					DNSPolicy:                     corev1.DNSClusterFirst,
					ImagePullSecrets:              keycloak.Spec.ImagePullSecrets,
					Containers: []corev1.Container{
						b.buildKeycloakContainer(keycloak, image, args, env, relativePath),
					},
				},
			},
		},
	}

	return statefulSet, secretNames
}

func (b *Builder) buildKeycloakContainer(keycloak *keycloakv1alpha1.Keycloak, image string, args []string, env []corev1.EnvVar, relativePath string) corev1.Container {
	scheme := corev1.URISchemeHTTP
	if serverconfig.IsTLSConfigured(keycloak) {
		scheme = corev1.URISchemeHTTPS
	}
	port := intstr.FromInt32(serverconfig.ServicePort(keycloak))

	return corev1.Container{
		Name:  constants.ContainerNameKeycloak,
		Image: image,
		Args:  args,
		Env:   env,
		Ports: []corev1.ContainerPort{
			{ContainerPort: constants.PortHTTPS, Protocol: corev1.ProtocolTCP},
			{ContainerPort: constants.PortHTTP, Protocol: corev1.ProtocolTCP},
		},
		ReadinessProbe: &corev1.Probe{
			InitialDelaySeconds: constants.ProbeInitialDelaySeconds,
			PeriodSeconds:       constants.ProbePeriodSeconds,
			FailureThreshold:    constants.ReadinessFailureThreshold,
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Scheme: scheme,
					Port:   port,
					Path:   relativePath + "health/ready",
				},
			},
		},
		LivenessProbe: &corev1.Probe{
			InitialDelaySeconds: constants.ProbeInitialDelaySeconds,
			PeriodSeconds:       constants.ProbePeriodSeconds,
			FailureThreshold:    constants.LivenessFailureThreshold,
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Scheme: scheme,
					Port:   port,
					Path:   relativePath + "health/live",
				},
			},
		},
	}
}

// buildEnvVars maps the server options to KC_* env vars. Options declared on
// the Keycloak object replace the default entry of the same name wholesale, a
// default is never partially overridden. The admin bootstrap credentials and
// the JGroups discovery query are always appended last.
func (b *Builder) buildEnvVars(keycloak *keycloakv1alpha1.Keycloak) ([]corev1.EnvVar, []string) {
	declared := make(map[string]struct{}, len(keycloak.Spec.AdditionalOptions))
	for _, option := range keycloak.Spec.AdditionalOptions {
		declared[option.Name] = struct{}{}
	}

	options := make([]keycloakv1alpha1.ValueOrSecret, 0, len(keycloak.Spec.AdditionalOptions)+4)
	for _, option := range serverconfig.DefaultServerOptions() {
		if _, replaced := declared[option.Name]; replaced {
			continue
		}
		options = append(options, option)
	}
	options = append(options, serverconfig.FilterFirstClass(keycloak.Spec.AdditionalOptions)...)

	env := make([]corev1.EnvVar, 0, len(options)+3)
	secretNames := make(map[string]struct{})
	for _, option := range options {
		envVar := corev1.EnvVar{Name: serverconfig.OptionEnvVarName(option.Name)}
		if option.Secret != nil {
			envVar.ValueFrom = &corev1.EnvVarSource{SecretKeyRef: option.Secret}
			secretNames[option.Secret.Name] = struct{}{}
		} else {
			envVar.Value = option.Value
		}
		env = append(env, envVar)
	}

	adminSecretName := keycloak.Name + constants.SuffixInitialAdminSecret
	env = append(env,
		corev1.EnvVar{
			Name: constants.EnvAdminUsername,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: adminSecretName},
					Key:                  constants.SecretKeyAdminUsername,
					Optional:             ptr.To(false),
				},
			},
		},
		corev1.EnvVar{
			Name: constants.EnvAdminPassword,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: adminSecretName},
					Key:                  constants.SecretKeyAdminPassword,
					Optional:             ptr.To(false),
				},
			},
		},
		corev1.EnvVar{
			Name:  constants.EnvJGroupsDNSQuery,
			Value: keycloak.Name + constants.SuffixDiscoveryService + "." + keycloak.Namespace,
		},
	)

	names := make([]string, 0, len(secretNames))
	for name := range secretNames {
		names = append(names, name)
	}
	sort.Strings(names)

	return env, names
}

func (b *Builder) podLabels(instanceLabels map[string]string) map[string]string {
	labels := make(map[string]string, len(instanceLabels)+len(b.PodLabels))
	for key, value := range b.PodLabels {
		labels[key] = value
	}
	for key, value := range instanceLabels {
		labels[key] = value
	}
	return labels
}

// NormalizeRelativePath guarantees a trailing slash so probe paths can be
// appended directly. An unset option falls back to the server root.
func NormalizeRelativePath(path string) string {
	if path == "" {
		return "/"
	}
	if path[len(path)-1] != '/' {
		return path + "/"
	}
	return path
}
