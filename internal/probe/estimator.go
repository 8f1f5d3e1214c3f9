package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/juxtarchive/juxtarchive/internal/config"
	"github.com/juxtarchive/juxtarchive/internal/extract"
	"github.com/juxtarchive/juxtarchive/internal/model"
)

// Pager fetches community listings for probing. *extract.Client satisfies
// it; tests substitute a fake.
type Pager interface {
	// FetchCommunities returns the platform's community directory.
	FetchCommunities(ctx context.Context) ([]model.Community, error)

	// FetchPage returns one listing page, or extract.ErrEndOfData past
	// the last one.
	FetchPage(ctx context.Context, communityID string, offset int) ([]model.Post, error)
}

// Estimator measures how many items a community lists without walking the
// whole listing.
//
// The listing endpoint answers every in-range offset with content and
// every out-of-range offset with end of data, so the boundary between the
// two is exactly the item count. A binary search over the offset finds it
// in a few dozen requests where a full walk would take thousands.
type Estimator struct {
	// pager issues the probe requests.
	pager Pager

	// baseURL labels the report; the pager already knows where to go.
	baseURL string

	// maxOffset is the search ceiling. A community listing more items
	// than this reports maxOffset.
	maxOffset int

	// logger records per-community progress.
	logger *slog.Logger
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithMaxOffset overrides the search ceiling.
func WithMaxOffset(n int) EstimatorOption {
	return func(e *Estimator) {
		e.maxOffset = n
	}
}

// WithLogger sets the probe logger.
func WithLogger(logger *slog.Logger) EstimatorOption {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// NewEstimator creates an Estimator probing through pager.
func NewEstimator(pager Pager, baseURL string, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		pager:     pager,
		baseURL:   baseURL,
		maxOffset: config.DefaultProbeMaxOffset,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns the estimated item count of one community and the
// number of page requests spent finding it.
//
// The search keeps the invariant that low always has content and high
// never does, and narrows until the two round to adjacent offsets. The
// midpoint stays fractional between probes so the loop terminates on the
// sub-offset epsilon rather than oscillating between integers.
func (e *Estimator) Estimate(ctx context.Context, communityID string) (int, int, error) {
	low, high := 0.0, float64(e.maxOffset)
	var probes int

	for high-low > config.ProbeEpsilon {
		if err := ctx.Err(); err != nil {
			return 0, probes, err
		}

		mid := (low + high) / 2
		probes++

		_, err := e.pager.FetchPage(ctx, communityID, int(math.Round(mid)))
		switch {
		case errors.Is(err, extract.ErrEndOfData):
			high = mid
		case err != nil:
			return 0, probes, fmt.Errorf("probe at offset %d failed: %w", int(math.Round(mid)), err)
		default:
			low = mid
		}
	}

	return int(math.Round(high)), probes, nil
}

// EstimateAll probes every community in the platform directory and
// returns the collected report. A community whose probe fails is logged
// and omitted; the rest of the run still completes.
func (e *Estimator) EstimateAll(ctx context.Context) (*model.ProbeReport, error) {
	communities, err := e.pager.FetchCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community directory: %w", err)
	}

	report := &model.ProbeReport{BaseURL: e.baseURL}
	for _, c := range communities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, probes, err := e.Estimate(ctx, c.ID)
		if err != nil {
			e.logger.Warn("community probe failed", "community", c.ID, "error", err)
			continue
		}

		e.logger.Info("community probed", "community", c.ID, "name", c.Name, "items", items, "probes", probes)
		report.Estimates = append(report.Estimates, model.Estimate{
			CommunityID: c.ID,
			Name:        c.Name,
			Items:       items,
			Probes:      probes,
		})
	}

	report.DateProbed = time.Now()
	return report, nil
}
