package workload

import (
	"github.com/go-logr/logr"
	appsv1 "k8s.io/api/apps/v1"
	"k8s.io/utils/ptr"
)

// MigrationState is the per-cycle migration verdict. It is recomputed on every
// cycle from the live and desired objects, never persisted.
type MigrationState struct {
	InProgress bool
}

// CoordinateMigration guards image changes. Keycloak runs its database schema
// migration on startup, and concurrent migrations from multiple servers can
// corrupt the schema. When the image changed while more than one replica was
// last observed, the desired object is rewritten in place to keep the previous
// image and scale to a single instance. Once the scale-down is observed a
// later cycle rolls out the new image against one replica.
//
// A missing previous object, or one without a readable container image,
// disables the check for this cycle.
func CoordinateMigration(logger logr.Logger, previous, desired *appsv1.StatefulSet) MigrationState {
	if previous == nil || len(previous.Spec.Template.Spec.Containers) == 0 {
		return MigrationState{}
	}
	previousImage := previous.Spec.Template.Spec.Containers[0].Image
	if previousImage == "" {
		return MigrationState{}
	}

	desiredContainer := &desired.Spec.Template.Spec.Containers[0]
	if previousImage == desiredContainer.Image || previous.Status.Replicas <= 1 {
		return MigrationState{}
	}

	logger.Info("Detected Keycloak image change, scaling down for database migration",
		"previous_image", previousImage,
		"desired_image", desiredContainer.Image,
	)
	desiredContainer.Image = previousImage
	desired.Spec.Replicas = ptr.To(int32(1))
	return MigrationState{InProgress: true}
}
