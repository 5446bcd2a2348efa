package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/pkg/pagination"
)

// Store persists prompts and versions. Implementations report absent rows
// with ErrPromptNotFound or ErrVersionNotFound, a slug collision with
// ErrSlugTaken, and a lost version-number race with ErrVersionTaken.
type Store interface {
	// InsertPrompt stores p and its first version in one transaction.
	InsertPrompt(ctx context.Context, p Prompt, first Version) (*Prompt, error)
	ListPrompts(ctx context.Context, owner string, page pagination.PageRequest) (*pagination.PageResult[Prompt], error)
	FindPrompt(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// AppendVersion assigns v the next version number for its prompt and stores it.
	AppendVersion(ctx context.Context, v Version) (*Version, error)
	ListVersions(ctx context.Context, promptID uuid.UUID) ([]Version, error)
	LatestVersion(ctx context.Context, promptID uuid.UUID) (*Version, error)
	FindVersion(ctx context.Context, promptID, versionID uuid.UUID) (*Version, error)
}
