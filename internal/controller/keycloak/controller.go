/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package keycloak

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/constants"
	controllermetrics "github.com/dc-tec/keycloak-operator/internal/controller"
	operatorerrors "github.com/dc-tec/keycloak-operator/internal/errors"
	"github.com/dc-tec/keycloak-operator/internal/health"
	"github.com/dc-tec/keycloak-operator/internal/kube"
	"github.com/dc-tec/keycloak-operator/internal/options"
	"github.com/dc-tec/keycloak-operator/internal/serverconfig"
	"github.com/dc-tec/keycloak-operator/internal/status"
	"github.com/dc-tec/keycloak-operator/internal/workload"
)

const controllerName = "keycloak"

// KeycloakReconciler reconciles a Keycloak object.
type KeycloakReconciler struct {
	client.Client
	Scheme *runtime.Scheme
}

// +kubebuilder:rbac:groups=keycloak.org,resources=keycloaks,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=keycloak.org,resources=keycloaks/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=apps,resources=statefulsets,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=core,resources=secrets,verbs=get;list;watch
// +kubebuilder:rbac:groups=core,resources=pods,verbs=get;list;watch

// Reconcile drives one convergence cycle for a Keycloak instance: it resolves
// the server configuration, builds and applies the desired StatefulSet and
// derives the status from what was observed before the apply.
func (r *KeycloakReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	reconcileMetrics := controllermetrics.NewReconcileMetrics(req.Namespace, req.Name, controllerName)
	startTime := time.Now()
	var reconcileErr error
	defer func() {
		reconcileMetrics.ObserveDuration(time.Since(startTime).Seconds())
		if reconcileErr != nil {
			// Low-cardinality reason; classification can be refined later
			// without changing the metric shape.
			reconcileMetrics.IncrementError("Error")
		}
	}()

	logger := log.FromContext(ctx).WithValues(
		"keycloak_namespace", req.Namespace,
		"keycloak_name", req.Name,
		"controller", controllerName,
	)

	logger.Info("Reconciling Keycloak")

	keycloak := &keycloakv1alpha1.Keycloak{}
	if err := r.Get(ctx, req.NamespacedName, keycloak); err != nil {
		if apierrors.IsNotFound(err) {
			logger.Info("Keycloak resource not found; assuming it was deleted")
			controllermetrics.NewInstanceMetrics(req.Namespace, req.Name).Clear()
			return ctrl.Result{}, nil
		}

		reconcileErr = fmt.Errorf("failed to get Keycloak %s/%s: %w", req.Namespace, req.Name, err)
		return ctrl.Result{}, reconcileErr
	}

	if !keycloak.DeletionTimestamp.IsZero() {
		logger.Info("Keycloak is marked for deletion")
		// Owned objects are garbage collected; only the metric series need cleanup.
		controllermetrics.NewInstanceMetrics(req.Namespace, req.Name).Clear()
		return ctrl.Result{}, nil
	}

	previous, err := r.previousStatefulSet(ctx, keycloak)
	if err != nil {
		reconcileErr = err
		return r.resultForError(logger, err)
	}

	// StatefulSet selectors are immutable. When the expected label set changed
	// the live object has to go; the apply below recreates it.
	if previous != nil && !workload.HasExpectedMatchLabels(previous, workload.InstanceLabels(keycloak)) {
		logger.Info("Existing StatefulSet selector is outdated; deleting so it can be recreated")
		if err := r.Delete(ctx, previous, client.Preconditions{ResourceVersion: &previous.ResourceVersion}); err != nil && !apierrors.IsNotFound(err) {
			reconcileErr = operatorerrors.WrapTransientKubernetesAPI(
				fmt.Errorf("failed to delete StatefulSet %s/%s with outdated selector: %w", previous.Namespace, previous.Name, err))
			return r.resultForError(logger, reconcileErr)
		}
		previous = nil
	}

	desired, migration, warnings, err := r.buildDesiredState(ctx, logger, keycloak, previous)
	if err != nil {
		reconcileErr = err
		return r.resultForError(logger, err)
	}

	if err := kube.ApplyOwned(ctx, r.Client, r.Scheme, keycloak, desired); err != nil {
		reconcileErr = err
		return r.resultForError(logger, err)
	}

	report, err := health.NewAggregator(r.Client).Aggregate(ctx, logger, keycloak, previous, migration, warnings)
	if err != nil {
		reconcileErr = err
		return r.resultForError(logger, err)
	}

	if err := r.updateStatus(ctx, keycloak, report, migration); err != nil {
		reconcileErr = err
		return r.resultForError(logger, err)
	}

	if !status.IsTrue(keycloak.Status.Conditions, keycloakv1alpha1.ConditionReady) {
		// StatefulSet and pod events drive the fast path; this is a floor for
		// conditions the watches cannot observe, such as a Secret created
		// after the cycle that failed on it.
		return ctrl.Result{RequeueAfter: constants.RequeueShort}, nil
	}

	// Safety net: periodically requeue to detect drift the event stream may
	// have missed. Jitter spreads the load across instances.
	jitterNanos := time.Now().UnixNano() % int64(constants.RequeueSafetyNetJitter)
	requeueAfter := constants.RequeueSafetyNetBase + time.Duration(jitterNanos)

	logger.V(1).Info("Reconciliation complete; scheduling safety net requeue", "requeue_after", requeueAfter)

	return ctrl.Result{RequeueAfter: requeueAfter}, nil
}

// previousStatefulSet fetches the live StatefulSet as observed before this
// cycle's apply. It returns nil when none exists.
func (r *KeycloakReconciler) previousStatefulSet(ctx context.Context, keycloak *keycloakv1alpha1.Keycloak) (*appsv1.StatefulSet, error) {
	statefulSet := &appsv1.StatefulSet{}
	key := types.NamespacedName{Namespace: keycloak.Namespace, Name: keycloak.Name}
	if err := r.Get(ctx, key, statefulSet); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, operatorerrors.WrapTransientKubernetesAPI(
			fmt.Errorf("failed to get StatefulSet %s/%s: %w", key.Namespace, key.Name, err))
	}
	return statefulSet, nil
}

// buildDesiredState runs the desired-state pipeline: option resolution,
// baseline build, first-class option wiring, overlay merge and the migration
// check. The previous object only feeds the migration check; the desired
// object never depends on live defaulted fields.
func (r *KeycloakReconciler) buildDesiredState(ctx context.Context, logger logr.Logger, keycloak *keycloakv1alpha1.Keycloak, previous *appsv1.StatefulSet) (*appsv1.StatefulSet, workload.MigrationState, []string, error) {
	resolver := options.NewResolver(r.Client, keycloak)
	relativePath, _, err := resolver.Resolve(ctx, constants.OptionHTTPRelativePath)
	if err != nil {
		return nil, workload.MigrationState{}, nil, err
	}

	desired, configSecrets := workload.NewBuilder().BuildBaseStatefulSet(keycloak, workload.NormalizeRelativePath(relativePath))

	configurator := serverconfig.NewConfigurator(keycloak)
	configurator.ApplyOptions(desired)

	if secretNames := mergeSecretNames(configSecrets, configurator.SecretNames()); len(secretNames) > 0 {
		logger.V(1).Info("Found config secrets names", "secrets", secretNames)
	}

	warnings := configurator.Validate()

	var overlay *corev1.PodTemplateSpec
	if keycloak.Spec.Unsupported != nil {
		overlay = keycloak.Spec.Unsupported.PodTemplate
	}
	warnings = append(warnings, workload.ValidateOverlay(overlay)...)
	desired.Spec.Template = workload.MergePodTemplate(desired.Spec.Template, overlay)

	migration := workload.CoordinateMigration(logger, previous, desired)

	return desired, migration, warnings, nil
}

func (r *KeycloakReconciler) updateStatus(ctx context.Context, keycloak *keycloakv1alpha1.Keycloak, report *health.Report, migration workload.MigrationState) error {
	keycloak.Status.Selector = report.Selector
	keycloak.Status.ReadyInstances = report.ReadyInstances
	keycloak.Status.Messages = report.Messages

	ready := !report.HasCategory(keycloakv1alpha1.CategoryNotReady)
	hasErrors := report.HasCategory(keycloakv1alpha1.CategoryError)
	rollingUpdate := report.HasCategory(keycloakv1alpha1.CategoryRollingUpdate)

	status.SetBool(&keycloak.Status.Conditions, keycloak.Generation, keycloakv1alpha1.ConditionReady, ready,
		reasonFor(ready, "Ready", "NotReady"),
		messageFor(report, keycloakv1alpha1.CategoryNotReady, "All Keycloak instances are ready"))
	status.SetBool(&keycloak.Status.Conditions, keycloak.Generation, keycloakv1alpha1.ConditionHasErrors, hasErrors,
		reasonFor(hasErrors, "Error", "NoErrors"),
		messageFor(report, keycloakv1alpha1.CategoryError, "No errors observed"))
	status.SetBool(&keycloak.Status.Conditions, keycloak.Generation, keycloakv1alpha1.ConditionRollingUpdate, rollingUpdate,
		reasonFor(rollingUpdate, "RollingUpdate", "Stable"),
		messageFor(report, keycloakv1alpha1.CategoryRollingUpdate, "No rolling update in progress"))

	instanceMetrics := controllermetrics.NewInstanceMetrics(keycloak.Namespace, keycloak.Name)
	instanceMetrics.SetReadyInstances(report.ReadyInstances)
	instanceMetrics.SetMigrationInProgress(migration.InProgress)

	if err := r.Status().Update(ctx, keycloak); err != nil {
		return operatorerrors.WrapTransientKubernetesAPI(
			fmt.Errorf("failed to update status for Keycloak %s/%s: %w", keycloak.Namespace, keycloak.Name, err))
	}
	return nil
}

// resultForError translates classified errors into requeue decisions. Unknown
// errors fall through to controller-runtime's exponential backoff.
func (r *KeycloakReconciler) resultForError(logger logr.Logger, err error) (ctrl.Result, error) {
	if requeue, after := operatorerrors.ShouldRequeue(err); requeue && after > 0 {
		logger.Error(err, "Reconciliation failed; scheduling retry", "requeue_after", after)
		return ctrl.Result{RequeueAfter: after}, nil
	}
	return ctrl.Result{}, err
}

func reasonFor(value bool, whenTrue, whenFalse string) string {
	if value {
		return whenTrue
	}
	return whenFalse
}

func messageFor(report *health.Report, category keycloakv1alpha1.StatusMessageCategory, fallback string) string {
	if texts := report.MessagesOf(category); len(texts) > 0 {
		return strings.Join(texts, "; ")
	}
	return fallback
}

func mergeSecretNames(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, group := range groups {
		for _, name := range group {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
