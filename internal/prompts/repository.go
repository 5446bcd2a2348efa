package prompts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/promptops/pkg/pagination"
	"github.com/JaimeStill/promptops/pkg/query"
	"github.com/JaimeStill/promptops/pkg/repository"
)

const (
	insertPromptSQL = `
		INSERT INTO prompts (id, name, slug, description, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertVersionSQL = `
		INSERT INTO versions (id, prompt_id, version_num, content, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`

	promptExistsSQL = `SELECT id FROM prompts WHERE id = $1`

	maxVersionSQL = `SELECT COALESCE(MAX(version_num), 0) FROM versions WHERE prompt_id = $1`
)

type repo struct {
	db      *sql.DB
	dialect query.Dialect
}

// NewRepository returns a SQL Store for db. Queries are rendered for dialect.
func NewRepository(db *sql.DB, dialect query.Dialect) Store {
	return &repo{db: db, dialect: dialect}
}

func (r *repo) builder(p *query.ProjectionMap, sort ...query.SortField) *query.Builder {
	return query.NewBuilder(p, sort...).WithDialect(r.dialect)
}

func (r *repo) exec(ctx context.Context, tx *sql.Tx, q string, args ...any) error {
	q, args = r.dialect.Rebind(q, args)
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

func (r *repo) InsertPrompt(ctx context.Context, p Prompt, first Version) (*Prompt, error) {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		err := r.exec(ctx, tx, insertPromptSQL,
			p.ID, p.Name, p.Slug, p.Description, p.OwnerID, r.dialect.TimeValue(p.CreatedAt),
		)
		if err != nil {
			return struct{}{}, repository.MapError(err, ErrPromptNotFound, ErrSlugTaken)
		}

		err = r.exec(ctx, tx, insertVersionSQL,
			first.ID, p.ID, 1, first.Content, r.dialect.TimeValue(first.CreatedAt), first.CreatedBy,
		)
		if err != nil {
			return struct{}{}, fmt.Errorf("insert first version: %w", err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) ListPrompts(
	ctx context.Context,
	owner string,
	page pagination.PageRequest,
) (*pagination.PageResult[Prompt], error) {
	qb := r.builder(promptProjection, newestPrompt).
		WhereEquals("OwnerID", owner).
		WhereSearch(page.Search, "Name", "Description").
		OrderByFields(page.Sort).
		ThenBy(promptTie)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	prompts, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	result := pagination.NewPageResult(prompts, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) FindPrompt(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := r.builder(promptProjection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrPromptNotFound, ErrSlugTaken)
	}
	return &p, nil
}

func (r *repo) AppendVersion(ctx context.Context, v Version) (*Version, error) {
	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Version, error) {
		q, args := r.dialect.Rebind(promptExistsSQL, []any{v.PromptID})
		var id uuid.UUID
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
			return Version{}, err
		}

		q, args = r.dialect.Rebind(maxVersionSQL, []any{v.PromptID})
		var current int
		if err := tx.QueryRowContext(ctx, q, args...).Scan(&current); err != nil {
			return Version{}, fmt.Errorf("read current version: %w", err)
		}

		v.VersionNum = current + 1
		err := r.exec(ctx, tx, insertVersionSQL,
			v.ID, v.PromptID, v.VersionNum, v.Content, r.dialect.TimeValue(v.CreatedAt), v.CreatedBy,
		)
		return v, err
	})
	if err != nil {
		return nil, repository.MapError(err, ErrPromptNotFound, ErrVersionTaken)
	}
	return &created, nil
}

func (r *repo) ListVersions(ctx context.Context, promptID uuid.UUID) ([]Version, error) {
	q, args := r.builder(versionProjection, newestVersion).
		WhereEquals("PromptID", promptID).
		Build()

	versions, err := repository.QueryMany(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	return versions, nil
}

func (r *repo) LatestVersion(ctx context.Context, promptID uuid.UUID) (*Version, error) {
	q, args := r.builder(versionProjection, newestVersion).
		WhereEquals("PromptID", promptID).
		BuildFirst()

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, repository.MapError(err, ErrPromptNotFound, ErrVersionTaken)
	}
	return &v, nil
}

func (r *repo) FindVersion(ctx context.Context, promptID, versionID uuid.UUID) (*Version, error) {
	q, args := r.builder(versionProjection).
		WhereEquals("ID", versionID).
		WhereEquals("PromptID", promptID).
		BuildFirst()

	v, err := repository.QueryOne(ctx, r.db, q, args, scanVersion)
	if err != nil {
		return nil, repository.MapError(err, ErrVersionNotFound, ErrVersionTaken)
	}
	return &v, nil
}
