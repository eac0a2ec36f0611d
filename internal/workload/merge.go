package workload

import (
	corev1 "k8s.io/api/core/v1"
)

// Overlay merging follows a fixed per-field policy:
//
//   - maps: union, overlay wins on key collision
//   - lists: base entries followed by overlay entries, no deduplication (so
//     applying the same overlay twice doubles the appended entries)
//   - scalars and structured singletons: replaced wholesale when the overlay
//     value is present; list-typed scalars such as command and args replace
//     only when non-empty
//
// Identity fields are never merged: template name and namespace, the primary
// container name and image. ValidateOverlay reports attempts to change them.

func mergeMaps[K comparable, V any](base, overlay map[K]V) map[K]V {
	if base == nil && overlay == nil {
		return nil
	}
	merged := make(map[K]V, len(base)+len(overlay))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overlay {
		merged[key] = value
	}
	return merged
}

func mergeLists[T any](base, overlay []T) []T {
	if len(overlay) == 0 {
		return base
	}
	merged := make([]T, 0, len(base)+len(overlay))
	merged = append(merged, base...)
	merged = append(merged, overlay...)
	return merged
}

func mergePtr[T any](dst **T, overlay *T) {
	if overlay != nil {
		*dst = overlay
	}
}

func mergeString[T ~string](dst *T, overlay T) {
	if overlay != "" {
		*dst = overlay
	}
}

// mergeBool handles the plain (non-pointer) booleans of the pod spec. Only an
// explicit true is distinguishable from an absent value, so false never
// overrides the base.
func mergeBool(dst *bool, overlay bool) {
	if overlay {
		*dst = overlay
	}
}

// mergeSlice applies the scalar replacement policy to list-typed fields such
// as command and args: the overlay replaces the base only when non-empty.
func mergeSlice[T any](dst *[]T, overlay []T) {
	if len(overlay) > 0 {
		*dst = overlay
	}
}

// MergePodTemplate overlays the user-supplied pod template onto the baseline
// template. The base is not mutated; a nil overlay returns the base untouched.
func MergePodTemplate(base corev1.PodTemplateSpec, overlay *corev1.PodTemplateSpec) corev1.PodTemplateSpec {
	if overlay == nil {
		return base
	}

	// Work on copies so neither the baseline nor the Keycloak object is
	// aliased by the result.
	merged := *base.DeepCopy()
	overlay = overlay.DeepCopy()

	merged.Labels = mergeMaps(merged.Labels, overlay.Labels)
	merged.Annotations = mergeMaps(merged.Annotations, overlay.Annotations)

	mergeContainers(&merged.Spec, &overlay.Spec)
	mergePodSpec(&merged.Spec, &overlay.Spec)

	return merged
}

// mergeContainers merges the overlay's first container into the primary
// Keycloak container and appends any further overlay containers as sidecars.
// An empty overlay container list leaves the base containers untouched.
func mergeContainers(merged, overlay *corev1.PodSpec) {
	if len(overlay.Containers) == 0 || len(merged.Containers) == 0 {
		return
	}

	primary := &merged.Containers[0]
	source := overlay.Containers[0]

	mergeSlice(&primary.Command, source.Command)
	mergeSlice(&primary.Args, source.Args)
	mergeString(&primary.WorkingDir, source.WorkingDir)
	mergeString(&primary.ImagePullPolicy, source.ImagePullPolicy)
	mergePtr(&primary.ReadinessProbe, source.ReadinessProbe)
	mergePtr(&primary.LivenessProbe, source.LivenessProbe)
	mergePtr(&primary.StartupProbe, source.StartupProbe)
	mergePtr(&primary.Lifecycle, source.Lifecycle)
	mergePtr(&primary.SecurityContext, source.SecurityContext)
	primary.Resources.Requests = mergeMaps(primary.Resources.Requests, source.Resources.Requests)
	primary.Resources.Limits = mergeMaps(primary.Resources.Limits, source.Resources.Limits)
	primary.Ports = mergeLists(primary.Ports, source.Ports)
	primary.Env = mergeLists(primary.Env, source.Env)
	primary.EnvFrom = mergeLists(primary.EnvFrom, source.EnvFrom)
	primary.VolumeMounts = mergeLists(primary.VolumeMounts, source.VolumeMounts)
	primary.VolumeDevices = mergeLists(primary.VolumeDevices, source.VolumeDevices)

	merged.Containers = append(merged.Containers, overlay.Containers[1:]...)
}

func mergePodSpec(merged, overlay *corev1.PodSpec) {
	mergePtr(&merged.ActiveDeadlineSeconds, overlay.ActiveDeadlineSeconds)
	mergePtr(&merged.Affinity, overlay.Affinity)
	mergePtr(&merged.AutomountServiceAccountToken, overlay.AutomountServiceAccountToken)
	mergePtr(&merged.DNSConfig, overlay.DNSConfig)
	mergeString(&merged.DNSPolicy, overlay.DNSPolicy)
	mergePtr(&merged.EnableServiceLinks, overlay.EnableServiceLinks)
	mergeBool(&merged.HostIPC, overlay.HostIPC)
	mergeBool(&merged.HostNetwork, overlay.HostNetwork)
	mergeBool(&merged.HostPID, overlay.HostPID)
	mergeString(&merged.Hostname, overlay.Hostname)
	mergeString(&merged.NodeName, overlay.NodeName)
	merged.NodeSelector = mergeMaps(merged.NodeSelector, overlay.NodeSelector)
	merged.Overhead = mergeMaps(merged.Overhead, overlay.Overhead)
	mergePtr(&merged.PreemptionPolicy, overlay.PreemptionPolicy)
	mergePtr(&merged.Priority, overlay.Priority)
	mergeString(&merged.PriorityClassName, overlay.PriorityClassName)
	mergeString(&merged.RestartPolicy, overlay.RestartPolicy)
	mergePtr(&merged.RuntimeClassName, overlay.RuntimeClassName)
	mergeString(&merged.SchedulerName, overlay.SchedulerName)
	mergePtr(&merged.SecurityContext, overlay.SecurityContext)
	mergeString(&merged.DeprecatedServiceAccount, overlay.DeprecatedServiceAccount)
	mergeString(&merged.ServiceAccountName, overlay.ServiceAccountName)
	mergePtr(&merged.SetHostnameAsFQDN, overlay.SetHostnameAsFQDN)
	mergePtr(&merged.ShareProcessNamespace, overlay.ShareProcessNamespace)
	mergeString(&merged.Subdomain, overlay.Subdomain)
	mergePtr(&merged.TerminationGracePeriodSeconds, overlay.TerminationGracePeriodSeconds)

	merged.HostAliases = mergeLists(merged.HostAliases, overlay.HostAliases)
	// imagePullSecrets is flagged by ValidateOverlay and still concatenated.
	// Existing deployments rely on the append, the warning steers new ones to
	// spec.imagePullSecrets instead.
	merged.ImagePullSecrets = mergeLists(merged.ImagePullSecrets, overlay.ImagePullSecrets)
	merged.InitContainers = mergeLists(merged.InitContainers, overlay.InitContainers)
	merged.EphemeralContainers = mergeLists(merged.EphemeralContainers, overlay.EphemeralContainers)
	merged.ReadinessGates = mergeLists(merged.ReadinessGates, overlay.ReadinessGates)
	merged.Tolerations = mergeLists(merged.Tolerations, overlay.Tolerations)
	merged.TopologySpreadConstraints = mergeLists(merged.TopologySpreadConstraints, overlay.TopologySpreadConstraints)
	merged.Volumes = mergeLists(merged.Volumes, overlay.Volumes)
}

// ValidateOverlay returns one warning per identity field the overlay attempts
// to set. Warnings do not block the merge.
func ValidateOverlay(overlay *corev1.PodTemplateSpec) []string {
	if overlay == nil {
		return nil
	}

	var warnings []string
	if overlay.Name != "" {
		warnings = append(warnings, "The name of the podTemplate cannot be modified")
	}
	if overlay.Namespace != "" {
		warnings = append(warnings, "The namespace of the podTemplate cannot be modified")
	}
	if len(overlay.Spec.Containers) > 0 {
		if overlay.Spec.Containers[0].Name != "" {
			warnings = append(warnings, "The name of the keycloak container cannot be modified")
		}
		if overlay.Spec.Containers[0].Image != "" {
			warnings = append(warnings, "The image of the keycloak container cannot be modified using podTemplate")
		}
	}
	if len(overlay.Spec.ImagePullSecrets) > 0 {
		warnings = append(warnings, "The imagePullSecrets of the keycloak container cannot be modified using podTemplate")
	}
	return warnings
}
