package prompts

import (
	"github.com/JaimeStill/promptops/pkg/query"
	"github.com/JaimeStill/promptops/pkg/repository"
)

var promptProjection = query.
	NewProjectionMap("", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("slug", "Slug").
	Project("description", "Description").
	Project("owner_id", "OwnerID").
	Project("created_at", "CreatedAt")

var versionProjection = query.
	NewProjectionMap("", "versions", "v").
	Project("id", "ID").
	Project("prompt_id", "PromptID").
	Project("version_num", "VersionNum").
	Project("content", "Content").
	Project("created_at", "CreatedAt").
	Project("created_by", "CreatedBy")

var (
	newestPrompt  = query.SortField{Field: "CreatedAt", Descending: true}
	promptTie     = query.SortField{Field: "ID", Descending: true}
	newestVersion = query.SortField{Field: "VersionNum", Descending: true}
)

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.OwnerID,
		repository.Time(&p.CreatedAt),
	)
	return p, err
}

func scanVersion(s repository.Scanner) (Version, error) {
	var v Version
	err := s.Scan(
		&v.ID,
		&v.PromptID,
		&v.VersionNum,
		&v.Content,
		repository.Time(&v.CreatedAt),
		&v.CreatedBy,
	)
	return v, err
}
