package artifacts

import (
	"context"

	"github.com/dmitrijs2005/brandforge/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, rec *models.ArtifactRecord) error
	Get(ctx context.Context, id string) (*models.ArtifactRecord, error)
	// Chain returns the artifact and its ancestors, newest first, at most
	// limit records.
	Chain(ctx context.Context, id string, limit int) ([]models.ArtifactRecord, error)
	Children(ctx context.Context, parentID string) ([]models.ArtifactRecord, error)
}
