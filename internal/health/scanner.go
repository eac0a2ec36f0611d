package health

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/constants"
	operatorerrors "github.com/dc-tec/keycloak-operator/internal/errors"
	"github.com/dc-tec/keycloak-operator/internal/workload"
)

// scanPods looks for failing containers on the not-ready pods of the current
// template revision and records one Error message per failing container.
// Pods of the previous revision are excluded so a rolling update does not
// report errors for pods that are about to be replaced anyway.
func (a *Aggregator) scanPods(ctx context.Context, logger logr.Logger, keycloak *keycloakv1alpha1.Keycloak, previous *appsv1.StatefulSet, report *Report) error {
	selector := workload.InstanceLabels(keycloak)
	labels := make(map[string]string, len(selector)+1)
	for key, value := range selector {
		labels[key] = value
	}
	labels[constants.LabelControllerRevisionHash] = previous.Status.UpdateRevision

	var pods corev1.PodList
	if err := a.reader.List(ctx, &pods, client.InNamespace(previous.Namespace), client.MatchingLabels(labels)); err != nil {
		return operatorerrors.WrapTransientKubernetesAPI(
			fmt.Errorf("failed to list pods for Keycloak %s/%s: %w", keycloak.Namespace, keycloak.Name, err))
	}

	candidates := make([]*corev1.Pod, 0, len(pods.Items))
	for i := range pods.Items {
		pod := &pods.Items[i]
		if isPodReady(pod) || len(pod.Status.ContainerStatuses) == 0 {
			continue
		}
		candidates = append(candidates, pod)
	}
	// list order is not guaranteed; sort for deterministic messages
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})

	for _, pod := range candidates {
		for _, containerStatus := range notReadyContainerStatuses(pod) {
			waiting := containerStatus.State.Waiting
			if waiting == nil || !isFailureReason(waiting.Reason) {
				continue
			}
			logger.Info("Found unhealthy container on pod",
				"pod_namespace", pod.Namespace,
				"pod_name", pod.Name,
				"container", containerStatus.Name,
				"reason", waiting.Reason,
			)
			report.AddError(fmt.Sprintf("Waiting for %s/%s due to %s: %s",
				pod.Namespace, pod.Name, waiting.Reason, waiting.Message))
		}
	}

	return nil
}

func isPodReady(pod *corev1.Pod) bool {
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady {
			return condition.Status == corev1.ConditionTrue
		}
	}
	return false
}

func notReadyContainerStatuses(pod *corev1.Pod) []corev1.ContainerStatus {
	statuses := make([]corev1.ContainerStatus, 0, len(pod.Status.ContainerStatuses))
	for _, containerStatus := range pod.Status.ContainerStatuses {
		if containerStatus.Ready {
			continue
		}
		statuses = append(statuses, containerStatus)
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

// isFailureReason matches the waiting reasons kubelet uses for terminal-ish
// container failures, such as ErrImagePull, ImagePullBackOff, CreateContainerError
// and CrashLoopBackOff. Benign reasons like ContainerCreating do not match.
func isFailureReason(reason string) bool {
	lowered := strings.ToLower(reason)
	return strings.Contains(lowered, "err") || lowered == "crashloopbackoff"
}
