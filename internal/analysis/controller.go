// Package analysis implements the single-slot-per-project LLM analysis
// job controller, its durable in-flight marker, and the human
// verification diff.
package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"netopscore/internal/apperrors"
	"netopscore/internal/blobstore"
	"netopscore/internal/domain"
	"netopscore/internal/events"
	"netopscore/internal/store"
	"netopscore/internal/topology"
	"netopscore/pkg/idgen"
)

// Config tunes the controller's external-call protections.
type Config struct {
	AdapterTimeout     time.Duration
	BreakerMaxFailures uint32
	BreakerCooldown    time.Duration
}

// DefaultConfig returns a 5-minute adapter timeout with a 3-failures/
// 5-minute circuit breaker cooldown.
func DefaultConfig() Config {
	return Config{
		AdapterTimeout:     5 * time.Minute,
		BreakerMaxFailures: 3,
		BreakerCooldown:    5 * time.Minute,
	}
}

// Controller implements Submit/Get/Verify over a single project's
// analysis slot.
type Controller struct {
	db      *sql.DB
	blobs   *blobstore.Store
	bus     *events.Bus
	adapter Adapter
	topo    *topology.Service
	log     *zap.SugaredLogger
	cfg     Config

	breaker *gobreaker.CircuitBreaker[AdapterOutput]
	group   singleflight.Group
}

// New builds a Controller. adapter may be a production HTTP-backed
// client or a test stub; it is the opaque LLM boundary. topo receives
// the nudged layout whenever a project_topology job completes.
func New(db *sql.DB, blobs *blobstore.Store, bus *events.Bus, adapter Adapter, topo *topology.Service, log *zap.SugaredLogger, cfg Config) *Controller {
	breaker := gobreaker.NewCircuitBreaker[AdapterOutput](gobreaker.Settings{
		Name:        "llm-adapter",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
	})
	return &Controller{db: db, blobs: blobs, bus: bus, adapter: adapter, topo: topo, log: log, cfg: cfg, breaker: breaker}
}

// Submit claims the project's single slot or rejects BUSY, then runs
// the LLM call in the background and releases the slot when it
// finishes.
func (c *Controller) Submit(ctx context.Context, projectID string, kind domain.AnalysisKind, deviceName, requestedBy string) error {
	if kind.IsDeviceScoped() && deviceName == "" {
		return apperrors.Validation("DEVICE_REQUIRED", fmt.Sprintf("kind %q requires a device_name", kind))
	}

	jobID := idgen.NewString()
	marker := domain.InFlightMarker{ProjectID: projectID, JobID: jobID, Kind: kind, StartedAt: time.Now().UTC()}
	if err := store.ClaimInFlightMarker(ctx, c.db, marker); err != nil {
		if _, ok := apperrors.As(err); ok {
			return apperrors.Conflict("BUSY", "an analysis job is already in flight for this project")
		}
		return err
	}

	// The HTTP handler returns 202 immediately; the call itself runs
	// detached from the request's context so a client disconnect never
	// cancels the job. Clients rely on polling, not on keeping the
	// submission request open.
	go c.run(context.Background(), jobID, projectID, kind, deviceName, requestedBy)
	return nil
}

func (c *Controller) run(ctx context.Context, jobID, projectID string, kind domain.AnalysisKind, deviceName, requestedBy string) {
	defer func() {
		if err := store.ReleaseInFlightMarker(ctx, c.db, projectID); err != nil {
			c.log.Errorw("analysis: release in-flight marker failed", "project_id", projectID, "job_id", jobID, "err", err)
		}
	}()

	sfKey := projectID + "|" + string(kind) + "|" + deviceName
	result, err, shared := c.group.Do(sfKey, func() (any, error) {
		return c.invoke(ctx, projectID, kind, deviceName)
	})
	if shared {
		c.log.Infow("analysis: collapsed duplicate in-flight submission", "project_id", projectID, "kind", kind, "device_name", deviceName)
	}

	now := time.Now().UTC()
	if err != nil {
		c.log.Errorw("analysis: job failed", "project_id", projectID, "job_id", jobID, "kind", kind, "device_name", deviceName, "err", err)
		errArtifact := domain.AnalysisArtifact{
			ProjectID: projectID, ID: jobID, Kind: kind, DeviceName: deviceName,
			Status: domain.AnalysisPendingReview, ErrorMessage: err.Error(),
			RequestedBy: requestedBy, CreatedAt: now, UpdatedAt: now,
		}
		if werr := store.UpsertAnalysisArtifact(ctx, c.db, errArtifact); werr != nil {
			c.log.Errorw("analysis: failed to record error artifact", "project_id", projectID, "err", werr)
		}
		if perr := c.bus.PublishAnalysisCompleted(ctx, events.AnalysisCompleted{ProjectID: projectID, Kind: string(kind), DeviceName: deviceName, Succeeded: false}); perr != nil {
			c.log.Errorw("analysis: publish completion event failed", "project_id", projectID, "err", perr)
		}
		return
	}

	out := result.(AdapterOutput)
	artifact := domain.AnalysisArtifact{
		ProjectID: projectID, ID: jobID, Kind: kind, DeviceName: deviceName,
		Status: domain.AnalysisPendingReview, AIDraftJSON: out.AIDraftJSON, AIDraftText: out.AIDraftText,
		RequestedBy: requestedBy, CreatedAt: now, UpdatedAt: now,
		LLMMetrics: &out.LLMMetrics,
	}
	if werr := store.UpsertAnalysisArtifact(ctx, c.db, artifact); werr != nil {
		c.log.Errorw("analysis: failed to persist artifact", "project_id", projectID, "err", werr)
		return
	}
	if kind == domain.KindProjectTopology && c.topo != nil {
		if terr := c.topo.ApplyGeneratedLayout(ctx, projectID, out.AIDraftJSON); terr != nil {
			c.log.Errorw("analysis: failed to apply generated topology layout", "project_id", projectID, "err", terr)
		}
	}
	c.log.Infow("analysis: job completed", "project_id", projectID, "job_id", jobID, "kind", kind, "device_name", deviceName)
	if perr := c.bus.PublishAnalysisCompleted(ctx, events.AnalysisCompleted{ProjectID: projectID, Kind: string(kind), DeviceName: deviceName, Succeeded: true}); perr != nil {
		c.log.Errorw("analysis: publish completion event failed", "project_id", projectID, "err", perr)
	}
}

func (c *Controller) invoke(ctx context.Context, projectID string, kind domain.AnalysisKind, deviceName string) (AdapterOutput, error) {
	in, err := c.composeInput(ctx, projectID, kind, deviceName)
	if err != nil {
		return AdapterOutput{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.AdapterTimeout)
	defer cancel()

	return c.breaker.Execute(func() (AdapterOutput, error) {
		return c.adapter.Analyze(callCtx, in)
	})
}

func (c *Controller) composeInput(ctx context.Context, projectID string, kind domain.AnalysisKind, deviceName string) (AdapterInput, error) {
	in := AdapterInput{Kind: kind}
	switch kind {
	case domain.KindDeviceConfigDrift:
		devCtx, err := composeDriftContext(ctx, c.db, c.blobs, projectID, deviceName)
		if err != nil {
			return AdapterInput{}, err
		}
		in.DeviceContext = devCtx
	case domain.KindDeviceOverview, domain.KindDeviceRecommendations:
		devCtx, err := composeDeviceContext(ctx, c.db, projectID, deviceName)
		if err != nil {
			return AdapterInput{}, err
		}
		in.DeviceContext = devCtx
	default:
		projCtx, err := composeProjectContext(ctx, c.db, projectID)
		if err != nil {
			return AdapterInput{}, err
		}
		in.ProjectContext = projCtx
	}
	return in, nil
}

// Get returns the latest artifact for a (kind, device) slot, or
// apperrors.NotFound if none exists yet.
func (c *Controller) Get(ctx context.Context, projectID string, kind domain.AnalysisKind, deviceName string) (domain.AnalysisArtifact, error) {
	return store.GetAnalysisArtifact(ctx, c.db, projectID, kind, deviceName)
}

// ListAll returns every artifact in a project, for `GET
// /projects/{pid}/analysis/full`.
func (c *Controller) ListAll(ctx context.Context, projectID string) ([]domain.AnalysisArtifact, error) {
	return store.ListAnalysisArtifacts(ctx, c.db, projectID)
}

// IsBusy reports whether a project currently has an in-flight job.
func (c *Controller) IsBusy(ctx context.Context, projectID string) (bool, error) {
	_, err := store.GetInFlightMarker(ctx, c.db, projectID)
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Verify persists the human-edited fields and computes accuracy_metrics
// against the AI draft.
func (c *Controller) Verify(ctx context.Context, projectID string, kind domain.AnalysisKind, deviceName, verifiedJSON, comments, reviewer string, status domain.AnalysisStatus) (domain.AnalysisArtifact, error) {
	if status != domain.AnalysisVerified && status != domain.AnalysisRejected {
		return domain.AnalysisArtifact{}, apperrors.Validation("INVALID_STATUS", "verify status must be 'verified' or 'rejected'")
	}

	artifact, err := store.GetAnalysisArtifact(ctx, c.db, projectID, kind, deviceName)
	if err != nil {
		return domain.AnalysisArtifact{}, err
	}

	metrics, err := computeAccuracyMetrics(artifact.AIDraftJSON, verifiedJSON)
	if err != nil {
		return domain.AnalysisArtifact{}, apperrors.Validation("INVALID_VERIFIED_JSON", err.Error())
	}

	artifact.Status = status
	artifact.VerifiedJSON = verifiedJSON
	artifact.Comments = comments
	artifact.Reviewer = reviewer
	artifact.AccuracyMetrics = metrics
	artifact.UpdatedAt = time.Now().UTC()

	if err := store.UpsertAnalysisArtifact(ctx, c.db, artifact); err != nil {
		return domain.AnalysisArtifact{}, err
	}
	return artifact, nil
}
