package prompts

import (
	"context"

	"github.com/google/uuid"
)

// RestoreVersion appends a new version carrying the content of versionID.
// History is never rewritten; restoring the latest version still appends.
func (e *engine) RestoreVersion(ctx context.Context, owner string, promptID, versionID uuid.UUID) (*Version, error) {
	target, err := e.FindVersion(ctx, owner, promptID, versionID)
	if err != nil {
		return nil, err
	}

	v, err := e.CreateVersion(ctx, owner, promptID, VersionCommand{Content: target.Content})
	if err != nil {
		return nil, err
	}

	e.logger.Info("version restored",
		"prompt_id", promptID,
		"from", target.VersionNum,
		"version_num", v.VersionNum,
	)
	return v, nil
}
