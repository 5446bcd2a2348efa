package prompts

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/pkg/pagination"
)

func (e *engine) CreatePrompt(ctx context.Context, owner string, cmd CreateCommand) (*Prompt, error) {
	if owner == "" {
		return nil, ErrEmptyOwner
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	slug, err := Slugify(name)
	if err != nil {
		return nil, err
	}

	created := e.now()
	p := Prompt{
		ID:          newID(),
		Name:        name,
		Slug:        slug,
		Description: trimOptional(cmd.Description),
		OwnerID:     owner,
		CreatedAt:   created,
	}
	first := Version{
		ID:         newID(),
		PromptID:   p.ID,
		VersionNum: 1,
		Content:    cmd.Content,
		CreatedAt:  created,
		CreatedBy:  owner,
	}

	result, err := e.store.InsertPrompt(ctx, p, first)
	if err != nil {
		return nil, err
	}

	e.logger.Info("prompt created", "id", result.ID, "slug", result.Slug, "owner", owner)
	return result, nil
}

func (e *engine) ListPrompts(
	ctx context.Context,
	owner string,
	page pagination.PageRequest,
) (*pagination.PageResult[Prompt], error) {
	page.Normalize(e.pagination)
	return e.store.ListPrompts(ctx, owner, page)
}

func (e *engine) FindPrompt(ctx context.Context, owner string, id uuid.UUID) (*Prompt, error) {
	p, err := e.store.FindPrompt(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != owner {
		return nil, ErrPromptNotFound
	}
	return p, nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
