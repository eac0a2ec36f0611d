//go:build integration
// +build integration

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
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	keycloakv1alpha1 "github.com/dc-tec/keycloak-operator/api/v1alpha1"
	"github.com/dc-tec/keycloak-operator/internal/status"
)

func TestKeycloakLifecycle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Keycloak Controller Lifecycle Suite")
}

var _ = Describe("Keycloak lifecycle", func() {
	var (
		ctx        context.Context
		scheme     *runtime.Scheme
		k8sClient  client.Client
		reconciler *KeycloakReconciler
		keycloak   *keycloakv1alpha1.Keycloak
		key        types.NamespacedName
	)

	reconcileOnce := func() {
		_, err := reconciler.Reconcile(ctx, ctrl.Request{NamespacedName: key})
		Expect(err).NotTo(HaveOccurred())
	}

	getStatefulSet := func() *appsv1.StatefulSet {
		statefulSet := &appsv1.StatefulSet{}
		Expect(k8sClient.Get(ctx, key, statefulSet)).To(Succeed())
		return statefulSet
	}

	getKeycloak := func() *keycloakv1alpha1.Keycloak {
		fetched := &keycloakv1alpha1.Keycloak{}
		Expect(k8sClient.Get(ctx, key, fetched)).To(Succeed())
		return fetched
	}

	// Simulate the StatefulSet controller converging the workload.
	markConverged := func(ready int32) {
		statefulSet := getStatefulSet()
		statefulSet.Status = appsv1.StatefulSetStatus{
			ObservedGeneration: statefulSet.Generation,
			Replicas:           *statefulSet.Spec.Replicas,
			ReadyReplicas:      ready,
			CurrentRevision:    "example-rev1",
			UpdateRevision:     "example-rev1",
		}
		Expect(k8sClient.Status().Update(ctx, statefulSet)).To(Succeed())
	}

	BeforeEach(func() {
		ctx = context.Background()
		scheme = runtime.NewScheme()
		Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
		Expect(keycloakv1alpha1.AddToScheme(scheme)).To(Succeed())

		keycloak = &keycloakv1alpha1.Keycloak{
			ObjectMeta: metav1.ObjectMeta{Name: "example", Namespace: "default"},
			Spec:       keycloakv1alpha1.KeycloakSpec{Instances: 2},
		}
		key = types.NamespacedName{Namespace: "default", Name: "example"}

		k8sClient = fake.NewClientBuilder().
			WithScheme(scheme).
			WithStatusSubresource(&keycloakv1alpha1.Keycloak{}, &appsv1.StatefulSet{}).
			WithObjects(keycloak).
			Build()
		reconciler = &KeycloakReconciler{Client: k8sClient, Scheme: scheme}
	})

	It("walks a Keycloak from creation to ready", func() {
		By("creating the StatefulSet on the first cycle")
		reconcileOnce()
		statefulSet := getStatefulSet()
		Expect(*statefulSet.Spec.Replicas).To(Equal(int32(2)))
		Expect(statefulSet.Spec.Template.Spec.Containers[0].Name).To(Equal("keycloak"))

		fetched := getKeycloak()
		Expect(status.IsTrue(fetched.Status.Conditions, keycloakv1alpha1.ConditionReady)).To(BeFalse())
		Expect(fetched.Status.Messages).To(HaveLen(1))
		Expect(fetched.Status.Messages[0].Message).To(Equal("No existing StatefulSet found, waiting for creating a new one"))

		By("waiting for the StatefulSet controller to report status")
		reconcileOnce()
		fetched = getKeycloak()
		Expect(fetched.Status.Messages[0].Message).To(Equal("Waiting for deployment status"))

		By("reporting partial readiness while replicas come up")
		markConverged(1)
		reconcileOnce()
		fetched = getKeycloak()
		Expect(fetched.Status.ReadyInstances).To(Equal(int32(1)))
		Expect(fetched.Status.Messages[0].Message).To(Equal("Waiting for more replicas"))

		By("becoming ready once all replicas are up")
		markConverged(2)
		reconcileOnce()
		fetched = getKeycloak()
		Expect(status.IsTrue(fetched.Status.Conditions, keycloakv1alpha1.ConditionReady)).To(BeTrue())
		Expect(fetched.Status.ReadyInstances).To(Equal(int32(2)))
		Expect(fetched.Status.Messages).To(BeEmpty())
	})

	It("scales down before rolling out a changed image", func() {
		reconcileOnce()
		markConverged(2)
		originalImage := getStatefulSet().Spec.Template.Spec.Containers[0].Image

		fetched := getKeycloak()
		fetched.Spec.Image = "registry.example.com/keycloak:next"
		Expect(k8sClient.Update(ctx, fetched)).To(Succeed())

		reconcileOnce()

		statefulSet := getStatefulSet()
		Expect(statefulSet.Spec.Template.Spec.Containers[0].Image).To(Equal(originalImage))
		Expect(*statefulSet.Spec.Replicas).To(Equal(int32(1)))

		fetched = getKeycloak()
		messages := make([]string, 0, len(fetched.Status.Messages))
		for _, message := range fetched.Status.Messages {
			messages = append(messages, message.Message)
		}
		Expect(messages).To(ContainElement("Performing Keycloak upgrade, scaling down the deployment"))
	})
})
