package prompts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Detail reads the prompt and its latest version concurrently.
// A not-found from either read takes precedence over other failures.
func (e *engine) Detail(ctx context.Context, owner string, promptID uuid.UUID) (*Detail, error) {
	var (
		g          errgroup.Group
		p          *Prompt
		v          *Version
		pErr, vErr error
	)

	g.Go(func() error {
		p, pErr = e.FindPrompt(ctx, owner, promptID)
		return pErr
	})
	g.Go(func() error {
		v, vErr = e.store.LatestVersion(ctx, promptID)
		return vErr
	})
	_ = g.Wait()

	switch {
	case errors.Is(pErr, ErrNotFound):
		return nil, pErr
	case errors.Is(vErr, ErrNotFound):
		return nil, vErr
	case pErr != nil:
		return nil, pErr
	case vErr != nil:
		return nil, vErr
	}

	return &Detail{Prompt: *p, LatestVersion: *v}, nil
}

func (e *engine) History(ctx context.Context, owner string, promptID uuid.UUID) ([]Version, error) {
	return e.ListVersions(ctx, owner, promptID)
}
