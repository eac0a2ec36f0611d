package health

import (
	"context"

	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/workload"
)

// Aggregator builds the status Report for one reconciliation cycle.
type Aggregator struct {
	reader client.Reader
}

func NewAggregator(reader client.Reader) *Aggregator {
	return &Aggregator{reader: reader}
}

// Aggregate inspects the previous live StatefulSet, the migration verdict and
// any validation warnings and produces the cycle's Report. previous is the
// object observed before this cycle's apply; nil means no StatefulSet existed.
//
// The checks run in a fixed order so message ordering is stable: readiness
// first, then pod failures, then migration or rolling update, then warnings.
func (a *Aggregator) Aggregate(ctx context.Context, logger logr.Logger, keycloak *keycloakv1alpha1.Keycloak, previous *appsv1.StatefulSet, migration workload.MigrationState, warnings []string) (*Report, error) {
	report := &Report{
		Selector: workload.SelectorString(workload.InstanceLabels(keycloak)),
	}

	if previous == nil {
		report.AddNotReady("No existing StatefulSet found, waiting for creating a new one")
	} else if !hasObservedStatus(previous) {
		report.AddNotReady("Waiting for deployment status")
	} else {
		report.ReadyInstances = previous.Status.ReadyReplicas
		if previous.Status.ReadyReplicas < keycloak.Spec.Instances {
			if err := a.scanPods(ctx, logger, keycloak, previous, report); err != nil {
				return nil, err
			}
			report.AddNotReady("Waiting for more replicas")
		}
	}

	if previous != nil {
		if migration.InProgress {
			report.AddNotReady("Performing Keycloak upgrade, scaling down the deployment")
		} else if isRollingUpdate(previous) {
			report.AddRollingUpdate("Rolling out deployment update")
		}
	}

	for _, warning := range warnings {
		report.AddWarning(warning)
	}

	return report, nil
}

// hasObservedStatus reports whether the StatefulSet controller has picked the
// object up at least once. A freshly created object has no status yet.
func hasObservedStatus(statefulSet *appsv1.StatefulSet) bool {
	return statefulSet.Status.ObservedGeneration > 0
}

func isRollingUpdate(statefulSet *appsv1.StatefulSet) bool {
	return statefulSet.Status.CurrentRevision != "" &&
		statefulSet.Status.UpdateRevision != "" &&
		statefulSet.Status.CurrentRevision != statefulSet.Status.UpdateRevision
}
