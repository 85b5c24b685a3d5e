package controller

import (
	"errors"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	amdevv1 "github.com/CHORUS-TRE/ide-operator/api/v1"
	"github.com/CHORUS-TRE/ide-operator/internal/naming"
)

// initSecret creates the git credential object read by the editor.
//
// It returns nil when the editor is disabled or has no git credentials.
// A missing token or branch is stored as an empty value.
func initSecret(ide *amdevv1.IdeConfig, id naming.Identity) (*corev1.Secret, error) {
	if !ide.Spec.HasGit() {
		return nil, nil
	}

	git := ide.Spec.GitCredential()
	if git.ID == "" || git.Repository == "" {
		return nil, errors.New("git id and repository are required")
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:        id.SecretName(),
			Namespace:   ide.Namespace,
			Labels:      id.Labels(),
			Annotations: id.Annotations(),
		},
		Type: corev1.SecretTypeOpaque,
		Data: map[string][]byte{
			gitIDKey:         []byte(git.ID),
			gitRepositoryKey: []byte(git.Repository),
			gitTokenKey:      []byte(git.Token),
			gitBranchKey:     []byte(git.Branch),
		},
	}

	return secret, nil
}
