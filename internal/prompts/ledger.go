package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
)

func (e *engine) CreateVersion(
	ctx context.Context,
	owner string,
	promptID uuid.UUID,
	cmd VersionCommand,
) (*Version, error) {
	if strings.TrimSpace(cmd.Content) == "" {
		return nil, ErrEmptyContent
	}

	if _, err := e.FindPrompt(ctx, owner, promptID); err != nil {
		return nil, err
	}

	v, err := e.appendVersion(ctx, owner, promptID, cmd.Content)
	if err != nil {
		return nil, err
	}

	e.logger.Info("version created", "prompt_id", promptID, "version_num", v.VersionNum, "owner", owner)
	return v, nil
}

// appendVersion retries the read-max-then-insert transaction while another
// writer keeps winning the race for the next number.
func (e *engine) appendVersion(ctx context.Context, owner string, promptID uuid.UUID, content string) (*Version, error) {
	v, err := retry.DoWithData(
		func() (*Version, error) {
			return e.store.AppendVersion(ctx, Version{
				ID:        newID(),
				PromptID:  promptID,
				Content:   content,
				CreatedAt: e.now(),
				CreatedBy: owner,
			})
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.ledger.MaxAttempts)),
		retry.Delay(e.ledger.RetryDelayDuration()),
		retry.MaxJitter(e.ledger.MaxJitterDuration()),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrVersionTaken)
		}),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn("version number taken, retrying", "prompt_id", promptID, "attempt", n+1)
		}),
		retry.LastErrorOnly(true),
	)

	if errors.Is(err, ErrVersionTaken) {
		return nil, fmt.Errorf("%w: prompt %s after %d attempts", ErrConcurrency, promptID, e.ledger.MaxAttempts)
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (e *engine) ListVersions(ctx context.Context, owner string, promptID uuid.UUID) ([]Version, error) {
	if _, err := e.FindPrompt(ctx, owner, promptID); err != nil {
		return nil, err
	}
	return e.store.ListVersions(ctx, promptID)
}

func (e *engine) LatestVersion(ctx context.Context, owner string, promptID uuid.UUID) (*Version, error) {
	if _, err := e.FindPrompt(ctx, owner, promptID); err != nil {
		return nil, err
	}
	return e.store.LatestVersion(ctx, promptID)
}

func (e *engine) FindVersion(ctx context.Context, owner string, promptID, versionID uuid.UUID) (*Version, error) {
	if _, err := e.FindPrompt(ctx, owner, promptID); err != nil {
		return nil, err
	}
	return e.store.FindVersion(ctx, promptID, versionID)
}
