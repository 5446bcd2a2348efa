// Package prompts implements the versioned prompt registry: a catalog of
// named prompt documents, each with an append-only ledger of content versions.
package prompts

import (
	"time"

	"github.com/google/uuid"
)

// Prompt is a named document owned by a single identity.
// Prompts are immutable after creation; their content lives in Versions.
type Prompt struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Slug        string    `json:"slug" yaml:"slug"`
	Description *string   `json:"description" yaml:"description,omitempty"`
	OwnerID     string    `json:"owner_id" yaml:"owner_id"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Version is one immutable revision of a prompt's content.
// VersionNum values for a prompt form the contiguous sequence 1..N.
type Version struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	PromptID   uuid.UUID `json:"prompt_id" yaml:"prompt_id"`
	VersionNum int       `json:"version_num" yaml:"version_num"`
	Content    string    `json:"content" yaml:"content"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	CreatedBy  string    `json:"created_by" yaml:"created_by"`
}

// Detail is a prompt together with its latest version.
type Detail struct {
	Prompt        `yaml:",inline"`
	LatestVersion Version `json:"latest_version" yaml:"latest_version"`
}

// Archive describes a history snapshot written to blob storage.
// Created is false when the snapshot already existed.
type Archive struct {
	Key        string    `json:"key" yaml:"key"`
	PromptID   uuid.UUID `json:"prompt_id" yaml:"prompt_id"`
	VersionNum int       `json:"version_num" yaml:"version_num"`
	SizeBytes  int       `json:"size_bytes" yaml:"size_bytes"`
	Created    bool      `json:"created" yaml:"created"`
}

// CreateCommand carries the data needed to create a prompt and its first version.
type CreateCommand struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Content     string  `json:"content"`
}

// VersionCommand carries the content of a new version.
type VersionCommand struct {
	Content string `json:"content"`
}

type snapshot struct {
	Prompt   Prompt    `json:"prompt"`
	Versions []Version `json:"versions"`
}
