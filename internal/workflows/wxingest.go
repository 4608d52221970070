// Package workflows holds the Temporal workflows driving scheduled
// ingestion. The weather workflow runs on a cron schedule: fetch the METAR
// feed, decode it, and batch-write the reports into the spatial store.
package workflows

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/hegaldi/internal/core/domain"
	"github.com/samirrijal/hegaldi/internal/core/ports"
	"github.com/samirrijal/hegaldi/internal/ingest"
	"github.com/samirrijal/hegaldi/internal/pkg/metrics"
)

// WxIngestInput parameterizes one ingestion run.
type WxIngestInput struct {
	FeedURL string
}

// WxIngestResult reports what one run did.
type WxIngestResult struct {
	Decoded      int
	Dropped      int
	FailedGroups int
}

// WxIngestWorkflow fetches, decodes, and stores one METAR feed snapshot.
func WxIngestWorkflow(ctx workflow.Context, input WxIngestInput) (*WxIngestResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("starting weather ingestion", "feed", input.FeedURL)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var raw []byte
	if err := workflow.ExecuteActivity(ctx, "FetchMETARFeed", input.FeedURL).Get(ctx, &raw); err != nil {
		return nil, err
	}

	var result WxIngestResult
	if err := workflow.ExecuteActivity(ctx, "DecodeAndStoreMETAR", raw).Get(ctx, &result); err != nil {
		return nil, err
	}

	logger.Info("weather ingestion complete",
		"decoded", result.Decoded, "dropped", result.Dropped, "failed_groups", result.FailedGroups)
	return &result, nil
}

// WxIngestActivities holds the activity implementations.
type WxIngestActivities struct {
	Spatial    ports.SpatialRepository
	Precisions domain.KeyPrecisions
	Client     *http.Client
}

// FetchMETARFeed downloads the raw XML feed.
func (a *WxIngestActivities) FetchMETARFeed(ctx context.Context, url string) ([]byte, error) {
	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DecodeAndStoreMETAR decodes the feed and batch-writes the reports.
// Invalid records were already dropped by the decoder; write-group
// failures are counted, not fatal.
func (a *WxIngestActivities) DecodeAndStoreMETAR(ctx context.Context, raw []byte) (*WxIngestResult, error) {
	points, stats, err := ingest.DecodeMETAR(bytes.NewReader(raw), time.Now(), a.Precisions)
	if err != nil {
		return nil, err
	}

	failed, err := a.Spatial.WriteBatch(ctx, points)
	if err != nil {
		return nil, fmt.Errorf("write weather reports: %w", err)
	}

	metrics.WeatherReportsIngested.Add(float64(stats.Decoded))
	metrics.WeatherReportsDropped.Add(float64(stats.Dropped))
	if stats.Dropped > 0 {
		slog.Warn("weather records dropped during decode", "count", stats.Dropped)
	}

	return &WxIngestResult{
		Decoded:      stats.Decoded,
		Dropped:      stats.Dropped,
		FailedGroups: failed,
	}, nil
}
