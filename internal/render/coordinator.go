package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"pagebind/internal/logging"
)

// ErrSuccessRate marks a run where too few groups rendered to justify a
// merge.
var ErrSuccessRate = errors.New("insufficient group success rate")

// RenderAll dispatches the groups to a bounded worker pool and collects the
// artifacts as workers finish. Completion order is irrelevant: artifacts are
// re-sorted by group index before they are returned. When fewer than
// ceil(total × MinSuccessRatio) groups succeed the whole run fails with
// ErrSuccessRate and no artifacts are returned.
func (r *Renderer) RenderAll(ctx context.Context, groups []Group, opts Options) ([]Artifact, error) {
	if len(groups) == 0 {
		return nil, errors.New("no groups to render")
	}

	workers := opts.workers()
	if workers > len(groups) {
		workers = len(groups)
	}

	jobs := make(chan Group)
	results := make(chan Artifact, len(groups))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for group := range jobs {
				// Cancellation is honored between groups only; an
				// in-flight render always runs to completion.
				if ctx.Err() != nil {
					continue
				}
				artifact, err := r.RenderGroup(ctx, group, opts)
				if err != nil {
					r.logger.Warn("group render failed",
						logging.Int("group", group.Index),
						logging.Error(err))
					continue
				}
				results <- artifact
			}
		}()
	}

	for _, group := range groups {
		jobs <- group
	}
	close(jobs)
	wg.Wait()
	close(results)

	artifacts := make([]Artifact, 0, len(groups))
	for artifact := range results {
		artifacts = append(artifacts, artifact)
	}

	if err := ctx.Err(); err != nil {
		discard(artifacts)
		return nil, err
	}

	required := requiredSuccesses(len(groups), opts.successRatio())
	r.logger.Info("render pass complete",
		logging.Int("groups", len(groups)),
		logging.Int("succeeded", len(artifacts)),
		logging.Int("required", required))

	if len(artifacts) < required {
		discard(artifacts)
		return nil, fmt.Errorf("%w: %d/%d groups succeeded, need %d",
			ErrSuccessRate, len(artifacts), len(groups), required)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].GroupIndex < artifacts[j].GroupIndex
	})
	return artifacts, nil
}

// requiredSuccesses computes the gate threshold: at least one group, and at
// least the configured fraction of all groups rounded up.
func requiredSuccesses(total int, ratio float64) int {
	required := int(math.Ceil(float64(total) * ratio))
	if required < 1 {
		required = 1
	}
	return required
}

func discard(artifacts []Artifact) {
	for _, artifact := range artifacts {
		removeQuiet(artifact.Path)
	}
}
