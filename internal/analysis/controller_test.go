package analysis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netopscore/internal/analysis"
	"netopscore/internal/apperrors"
	"netopscore/internal/blobstore"
	"netopscore/internal/database"
	"netopscore/internal/domain"
	"netopscore/internal/events"
	"netopscore/internal/topology"
)

func newTestController(t *testing.T, adapter analysis.Adapter) *analysis.Controller {
	t.Helper()
	ctx := context.Background()

	mgr, err := database.Open(ctx, "file::memory:?cache=shared&_test="+t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	blobs, err := blobstore.New(mgr.DB(), t.TempDir())
	require.NoError(t, err)

	bus := events.New()
	t.Cleanup(func() { bus.Close() })

	return analysis.New(mgr.DB(), blobs, bus, adapter, topology.New(mgr.DB()), zap.NewNop().Sugar(), analysis.DefaultConfig())
}

func waitForArtifact(t *testing.T, ctl *analysis.Controller, projectID string, kind domain.AnalysisKind) domain.AnalysisArtifact {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		artifact, err := ctl.Get(context.Background(), projectID, kind, "")
		if err == nil {
			return artifact
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s artifact", kind)
	return domain.AnalysisArtifact{}
}

func TestSubmit_SingleSlotRejectsSecondJob(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	adapter := analysis.AdapterFunc(func(ctx context.Context, in analysis.AdapterInput) (analysis.AdapterOutput, error) {
		started <- struct{}{}
		<-release
		return analysis.AdapterOutput{AIDraftJSON: `{"summary":"done"}`, AIDraftText: "done"}, nil
	})
	ctl := newTestController(t, adapter)
	ctx := context.Background()

	require.NoError(t, ctl.Submit(ctx, "p1", domain.KindProjectOverview, "", "alice"))
	<-started

	// The slot is per project, not per kind: a different kind is still
	// rejected while the first job runs.
	err := ctl.Submit(ctx, "p1", domain.KindProjectRecommendations, "", "alice")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryConflict, appErr.Category)

	// A different project is unaffected.
	require.NoError(t, ctl.Submit(ctx, "p2", domain.KindProjectOverview, "", "alice"))

	close(release)
	artifact := waitForArtifact(t, ctl, "p1", domain.KindProjectOverview)
	assert.Equal(t, domain.AnalysisPendingReview, artifact.Status)
	assert.Equal(t, `{"summary":"done"}`, artifact.AIDraftJSON)

	// Slot free again once the marker is released.
	deadline := time.Now().Add(2 * time.Second)
	for {
		err = ctl.Submit(ctx, "p1", domain.KindProjectRecommendations, "", "alice")
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
}

func TestSubmit_AdapterFailureClearsMarkerAndRecordsError(t *testing.T) {
	adapter := analysis.AdapterFunc(func(ctx context.Context, in analysis.AdapterInput) (analysis.AdapterOutput, error) {
		return analysis.AdapterOutput{}, context.DeadlineExceeded
	})
	ctl := newTestController(t, adapter)
	ctx := context.Background()

	require.NoError(t, ctl.Submit(ctx, "p1", domain.KindProjectOverview, "", "alice"))

	artifact := waitForArtifact(t, ctl, "p1", domain.KindProjectOverview)
	assert.NotEmpty(t, artifact.ErrorMessage)

	deadline := time.Now().Add(2 * time.Second)
	var busy bool
	for time.Now().Before(deadline) {
		b, err := ctl.IsBusy(ctx, "p1")
		require.NoError(t, err)
		if !b {
			busy = false
			break
		}
		busy = true
		time.Sleep(10 * time.Millisecond)
	}
	assert.False(t, busy, "marker should be released after adapter failure")
}

func TestSubmit_DeviceKindRequiresDeviceName(t *testing.T) {
	ctl := newTestController(t, analysis.AdapterFunc(func(ctx context.Context, in analysis.AdapterInput) (analysis.AdapterOutput, error) {
		return analysis.AdapterOutput{}, nil
	}))

	err := ctl.Submit(context.Background(), "p1", domain.KindDeviceOverview, "", "alice")
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CategoryValidation, appErr.Category)
}
