// Copyright (c) 2016-2019 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cluster

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
)

// k8sClient implements Client against a live Kubernetes API server using
// controller-runtime's generic client.
type k8sClient struct {
	config Config
	client client.Client
}

// NewK8sClient builds a Client from the in-cluster or kubeconfig-resolved
// REST config.
func NewK8sClient(config Config) (Client, error) {
	config.applyDefaults()

	restConfig, err := ctrlconfig.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("resolve kubeconfig: %s", err)
	}
	c, err := client.New(restConfig, client.Options{})
	if err != nil {
		return nil, fmt.Errorf("build client: %s", err)
	}
	return &k8sClient{config: config, client: c}, nil
}

func (k *k8sClient) Get(ctx context.Context, kind, name string) (Object, error) {
	switch kind {
	case KindPod:
		var pod corev1.Pod
		key := client.ObjectKey{Namespace: k.config.Namespace, Name: name}
		if err := k.client.Get(ctx, key, &pod); err != nil {
			return Object{}, fmt.Errorf("get pod %s: %s", name, err)
		}
		return objectFromPod(&pod), nil
	default:
		return Object{}, fmt.Errorf("unsupported kind %q", kind)
	}
}

func (k *k8sClient) Create(ctx context.Context, spec Spec) (Object, error) {
	if spec.Kind() != KindPod {
		return Object{}, fmt.Errorf("unsupported kind %q", spec.Kind())
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Namespace:    k.config.Namespace,
			Name:         spec.Name,
			GenerateName: spec.GenerateName,
			Labels:       spec.Labels,
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:  "sandbox",
					Image: k.config.Image,
					Env:   envVars(spec.Env),
					Ports: []corev1.ContainerPort{
						{ContainerPort: 8000},
					},
					ReadinessProbe: &corev1.Probe{
						ProbeHandler: corev1.ProbeHandler{
							HTTPGet: &corev1.HTTPGetAction{
								Path: "/healthz",
								Port: intstr.FromInt(8000),
							},
						},
					},
				},
			},
		},
	}
	if spec.Image != "" {
		pod.Spec.Containers[0].Image = spec.Image
	}
	if spec.Owner != nil {
		pod.OwnerReferences = []metav1.OwnerReference{
			{
				APIVersion: "v1",
				Kind:       spec.Owner.Kind,
				Name:       spec.Owner.Name,
				UID:        types.UID(spec.Owner.UID),
			},
		}
	}

	if err := k.client.Create(ctx, pod, client.FieldOwner(k.config.FieldManager)); err != nil {
		return Object{}, fmt.Errorf("create pod: %s", err)
	}
	return objectFromPod(pod), nil
}

func (k *k8sClient) Wait(ctx context.Context, kind, name, condition string, timeout time.Duration) (Object, error) {
	if kind != KindPod {
		return Object{}, fmt.Errorf("unsupported kind %q", kind)
	}

	var last Object
	err := wait.PollImmediate(k.config.PollInterval, timeout, func() (bool, error) {
		obj, err := k.Get(ctx, kind, name)
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		last = obj
		if obj.terminalFailure() {
			return false, fmt.Errorf("pod %s entered a terminal failed state", name)
		}
		return obj.satisfies(condition), nil
	})
	if err != nil {
		return last, fmt.Errorf("wait for %s/%s %s: %s", kind, name, condition, err)
	}
	return last, nil
}

func (k *k8sClient) Delete(ctx context.Context, kind, name string) error {
	if kind != KindPod {
		return fmt.Errorf("unsupported kind %q", kind)
	}
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Namespace: k.config.Namespace,
			Name:      name,
		},
	}
	if err := k.client.Delete(ctx, pod); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete pod %s: %s", name, err)
	}
	return nil
}

func objectFromPod(pod *corev1.Pod) Object {
	ready := false
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady && cond.Status == corev1.ConditionTrue {
			ready = true
		}
	}
	return Object{
		Kind:      KindPod,
		Name:      pod.Name,
		Namespace: pod.Namespace,
		UID:       string(pod.UID),
		IP:        pod.Status.PodIP,
		Ready:     ready && pod.Status.Phase == corev1.PodRunning,
		Failed:    pod.Status.Phase == corev1.PodFailed || pod.Status.Phase == corev1.PodSucceeded,
	}
}

func (o Object) satisfies(condition string) bool {
	switch condition {
	case ConditionReady:
		return o.Ready
	default:
		return false
	}
}

// terminalFailure reports that waiting any longer is pointless: a pod that
// already exited, successfully or not, will never become Ready.
func (o Object) terminalFailure() bool {
	return o.Failed
}

// Kind returns the object kind a Spec describes. Sandbox containers are
// always pods in the current design.
func (s Spec) Kind() string {
	return KindPod
}

func envVars(env map[string]string) []corev1.EnvVar {
	if len(env) == 0 {
		return nil
	}
	out := make([]corev1.EnvVar, 0, len(env))
	for k, v := range env {
		out = append(out, corev1.EnvVar{Name: k, Value: v})
	}
	return out
}
