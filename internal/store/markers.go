package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// ClaimInFlightMarker inserts the single-slot in-flight row for a
// project. It fails with a conflict if a marker already exists, which is
// how internal/analysis enforces one job per project at a time even
// across process restarts.
func ClaimInFlightMarker(ctx context.Context, db querier, m domain.InFlightMarker) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO in_flight_markers (project_id, job_id, kind, started_at)
		VALUES (?, ?, ?, ?)`,
		m.ProjectID, m.JobID, string(m.Kind), m.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.Conflict("JOB_IN_PROGRESS", fmt.Sprintf("project %q already has an analysis job running", m.ProjectID))
		}
		return fmt.Errorf("store: claim in-flight marker: %w", err)
	}
	return nil
}

// GetInFlightMarker fetches the current in-flight marker for a project,
// if any.
func GetInFlightMarker(ctx context.Context, db querier, projectID string) (domain.InFlightMarker, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, job_id, kind, started_at FROM in_flight_markers WHERE project_id = ?`, projectID)

	var m domain.InFlightMarker
	var kind, startedAt string
	if err := row.Scan(&m.ProjectID, &m.JobID, &kind, &startedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.InFlightMarker{}, apperrors.NotFound("in-flight marker", projectID)
		}
		return domain.InFlightMarker{}, fmt.Errorf("store: get in-flight marker: %w", err)
	}
	m.Kind = domain.AnalysisKind(kind)
	m.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	return m, nil
}

// ReleaseInFlightMarker clears a project's in-flight marker, whether the
// job succeeded or failed.
func ReleaseInFlightMarker(ctx context.Context, db querier, projectID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM in_flight_markers WHERE project_id = ?`, projectID)
	if err != nil {
		return fmt.Errorf("store: release in-flight marker: %w", err)
	}
	return nil
}
