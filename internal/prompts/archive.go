package prompts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ArchiveKey returns the blob key for a prompt's history at version n.
func ArchiveKey(slug string, n int) string {
	return fmt.Sprintf("prompts/%s/v%d.json", slug, n)
}

// Archive writes the prompt's history up to its latest version to blob
// storage. A snapshot that already exists is left untouched.
func (e *engine) Archive(ctx context.Context, owner string, promptID uuid.UUID) (*Archive, error) {
	if e.archive == nil {
		return nil, ErrArchiveDisabled
	}

	detail, err := e.Detail(ctx, owner, promptID)
	if err != nil {
		return nil, err
	}

	history, err := e.store.ListVersions(ctx, promptID)
	if err != nil {
		return nil, err
	}

	latest := detail.LatestVersion.VersionNum
	snap := snapshot{
		Prompt:   detail.Prompt,
		Versions: make([]Version, 0, len(history)),
	}
	for _, v := range history {
		if v.VersionNum <= latest {
			snap.Versions = append(snap.Versions, v)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	result := &Archive{
		Key:        ArchiveKey(detail.Slug, latest),
		PromptID:   promptID,
		VersionNum: latest,
		SizeBytes:  len(data),
	}

	exists, err := e.archive.Exists(ctx, result.Key)
	if err != nil {
		return nil, fmt.Errorf("check archive: %w", err)
	}
	if exists {
		return result, nil
	}

	if err := e.archive.Upload(ctx, result.Key, bytes.NewReader(data), "application/json"); err != nil {
		return nil, fmt.Errorf("upload archive: %w", err)
	}

	result.Created = true
	e.logger.Info("prompt archived", "prompt_id", promptID, "key", result.Key, "size", result.SizeBytes)
	return result, nil
}
