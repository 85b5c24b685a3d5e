package controller

import (
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
)

// initService creates the network object in front of the workload.
//
// The declared ports come first, followed by one port per enabled feature.
// Only the web terminal of the remote shell is exposed, the SSH server is
// reached over the pod loopback.
func initService(ide *amdevv1.IdeConfig, id naming.Identity) *corev1.Service {
	spec := &ide.Spec

	service := &corev1.Service{}
	service.Name = id.ServiceName()
	service.Namespace = ide.Namespace
	service.Annotations = id.Annotations()

	// Labels
	labels := id.Labels()

	service.Labels = labels
	service.Spec.Selector = labels

	ports := make([]corev1.ServicePort, 0, len(spec.PortList)+3)
	for _, port := range spec.PortList {
		protocol := corev1.Protocol(port.Protocol)
		if protocol == "" {
			protocol = corev1.ProtocolTCP
		}

		targetPort := port.TargetPort
		if targetPort == 0 {
			targetPort = port.Port
		}

		ports = append(ports, corev1.ServicePort{
			Name:       port.Name,
			Protocol:   protocol,
			Port:       port.Port,
			TargetPort: intstr.FromInt32(targetPort),
		})
	}

	if spec.HasFeature(amdevv1.FeatureEditor) {
		ports = append(ports, featurePort(editorContainerName, EditorPort))
	}

	if spec.HasFeature(amdevv1.FeatureRemoteShell) {
		ports = append(ports, featurePort(terminalBridgeContainerName, TerminalBridgePort))
	}

	if spec.HasFeature(amdevv1.FeatureNotebook) {
		ports = append(ports, featurePort(notebookContainerName, NotebookPort))
	}

	service.Spec.Ports = ports

	// Default type for internal usage.
	service.Spec.Type = corev1.ServiceTypeClusterIP

	return service
}

func featurePort(name string, port int32) corev1.ServicePort {
	return corev1.ServicePort{
		Name:       name,
		Protocol:   corev1.ProtocolTCP,
		Port:       port,
		TargetPort: intstr.FromInt32(port),
	}
}
