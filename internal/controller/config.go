package controller

import (
	"errors"
	"fmt"
	"os"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/yaml"
)

// Proxy domain types.
const (
	// ProxyDomainTypePath routes apps as https://{domain}/{identity}/{port}.
	ProxyDomainTypePath = "path"
	// ProxyDomainTypeSubdomain routes apps as https://{identity}p{port}.{domain}.
	ProxyDomainTypeSubdomain = "subdomain"
)

// Config holds the global configuration that was given to the controller.
type Config struct {
	// EditorImage is the image (with version) of the web code editor.
	EditorImage string `json:"editorImage"`
	// ShellServerImage is the image of the SSH server of the remote shell.
	ShellServerImage string `json:"shellServerImage"`
	// TerminalBridgeImage is the image of the web terminal proxying to the SSH server.
	TerminalBridgeImage string `json:"terminalBridgeImage"`
	// NotebookImage is the image of the notebook server.
	NotebookImage string `json:"notebookImage"`
	// ImagePullPolicy applies to every container.
	ImagePullPolicy corev1.PullPolicy `json:"imagePullPolicy,omitempty"`
	// SharedClaimName is the existing claim mounted read-only by every workspace.
	// It's never created nor modified by the controller.
	SharedClaimName string `json:"sharedClaimName,omitempty"`
	// UserStorageClassName is the storage class of the per-user volume claim.
	// Empty means the cluster default.
	UserStorageClassName string `json:"userStorageClassName,omitempty"`
	// ProxyDomain is the domain the apps are exposed under.
	ProxyDomain string `json:"proxyDomain,omitempty"`
	// ProxyDomainType is either "path" or "subdomain".
	ProxyDomainType string `json:"proxyDomainType,omitempty"`
	// ElevatedClusterRole is bound to administrators, architects and developers.
	ElevatedClusterRole string `json:"elevatedClusterRole,omitempty"`
	// RestrictedClusterRole is bound to coders and unknown roles.
	RestrictedClusterRole string `json:"restrictedClusterRole,omitempty"`
	// DefaultServiceAccountName runs workspaces without a remote shell.
	DefaultServiceAccountName string `json:"defaultServiceAccountName,omitempty"`
}

// DefaultConfig returns the configuration used when nothing else is given.
// Images have no default.
func DefaultConfig() Config {
	return Config{
		ImagePullPolicy:           corev1.PullAlways,
		SharedClaimName:           "com-dev-pvc",
		ProxyDomainType:           ProxyDomainTypePath,
		ElevatedClusterRole:       "cluster-admin",
		RestrictedClusterRole:     "view",
		DefaultServiceAccountName: "default",
	}
}

// LoadConfig overlays the YAML file at path on top of cfg.
// Keys absent from the file keep their current value.
func LoadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %q: %w", path, err)
	}

	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parsing config %q: %w", path, err)
	}

	return nil
}

// Validate reports every missing or unsupported setting at once.
func (c Config) Validate() error {
	var errs []error

	images := []struct {
		name  string
		value string
	}{
		{"editorImage", c.EditorImage},
		{"shellServerImage", c.ShellServerImage},
		{"terminalBridgeImage", c.TerminalBridgeImage},
		{"notebookImage", c.NotebookImage},
	}
	for _, image := range images {
		if image.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", image.name))
		}
	}

	switch c.ProxyDomainType {
	case ProxyDomainTypePath, ProxyDomainTypeSubdomain:
	default:
		errs = append(errs, fmt.Errorf("proxyDomainType %q is not one of %q, %q", c.ProxyDomainType, ProxyDomainTypePath, ProxyDomainTypeSubdomain))
	}

	switch c.ImagePullPolicy {
	case corev1.PullAlways, corev1.PullIfNotPresent, corev1.PullNever:
	default:
		errs = append(errs, fmt.Errorf("imagePullPolicy %q is not supported", c.ImagePullPolicy))
	}

	if c.SharedClaimName == "" {
		errs = append(errs, errors.New("sharedClaimName is required"))
	}

	if c.ElevatedClusterRole == "" || c.RestrictedClusterRole == "" {
		errs = append(errs, errors.New("elevatedClusterRole and restrictedClusterRole are required"))
	}

	if c.DefaultServiceAccountName == "" {
		errs = append(errs, errors.New("defaultServiceAccountName is required"))
	}

	return errors.Join(errs...)
}
