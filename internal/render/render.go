// Package render defines the contracts for the external rendering and
// publishing collaborators, and the runner that drives jobs through the
// registry while a collaborator executes them.
package render

import (
	"context"
	"time"

	"meridian/internal/rotation"
)

// ProgressFunc reports render progress back into the job registry.
type ProgressFunc func(percent int, message string)

// Renderer executes one generation job and returns an artifact reference.
type Renderer interface {
	Execute(ctx context.Context, sel rotation.Selection, report ProgressFunc) (string, error)
}

// Metadata accompanies an artifact to the publish collaborator.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Privacy     string   `json:"privacy"`
	PublishAt   *time.Time `json:"publish_at,omitempty"`
}

// RemoteRecord identifies the published copy of an artifact.
type RemoteRecord struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}

// Publisher pushes artifacts to the remote platform.
type Publisher interface {
	Publish(ctx context.Context, artifact string, meta Metadata) (RemoteRecord, error)
	// CredentialStatus returns nil while the externally issued credential is
	// usable, or an error describing why it is not.
	CredentialStatus(ctx context.Context) error
}
