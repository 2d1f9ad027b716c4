package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// UpsertAnalysisArtifact replaces the stored artifact for one (project,
// kind, device) slot, per DESIGN.md's Open Question resolution that
// artifacts are not version-chained.
func UpsertAnalysisArtifact(ctx context.Context, db querier, a domain.AnalysisArtifact) error {
	var llmJSON string
	if a.LLMMetrics != nil {
		b, err := json.Marshal(a.LLMMetrics)
		if err != nil {
			return fmt.Errorf("store: marshal llm metrics: %w", err)
		}
		llmJSON = string(b)
	}
	var accuracyJSON string
	if a.AccuracyMetrics != nil {
		b, err := json.Marshal(a.AccuracyMetrics)
		if err != nil {
			return fmt.Errorf("store: marshal accuracy metrics: %w", err)
		}
		accuracyJSON = string(b)
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO analysis_artifacts
			(project_id, id, kind, device_name, status, ai_draft_json, ai_draft_text, verified_json,
			 reviewer, comments, error_message, source_version, requested_by,
			 llm_metrics_json, accuracy_metrics_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (project_id, kind, device_name) DO UPDATE SET
			id = excluded.id, status = excluded.status,
			ai_draft_json = excluded.ai_draft_json, ai_draft_text = excluded.ai_draft_text,
			verified_json = excluded.verified_json, reviewer = excluded.reviewer, comments = excluded.comments,
			error_message = excluded.error_message, source_version = excluded.source_version,
			requested_by = excluded.requested_by, llm_metrics_json = excluded.llm_metrics_json,
			accuracy_metrics_json = excluded.accuracy_metrics_json, updated_at = excluded.updated_at`,
		a.ProjectID, a.ID, string(a.Kind), a.DeviceName, string(a.Status), a.AIDraftJSON, a.AIDraftText,
		a.VerifiedJSON, a.Reviewer, a.Comments, a.ErrorMessage, a.SourceVersion,
		a.RequestedBy, llmJSON, accuracyJSON,
		a.CreatedAt.UTC().Format(time.RFC3339Nano), a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: upsert analysis artifact: %w", err)
	}
	return nil
}

// GetAnalysisArtifact fetches the current artifact for a (kind, device)
// slot in a project.
func GetAnalysisArtifact(ctx context.Context, db querier, projectID string, kind domain.AnalysisKind, deviceName string) (domain.AnalysisArtifact, error) {
	row := db.QueryRowContext(ctx, analysisSelectColumns+`
		FROM analysis_artifacts WHERE project_id = ? AND kind = ? AND device_name = ?`,
		projectID, string(kind), deviceName,
	)
	return scanAnalysisArtifact(row, deviceName)
}

// ListAnalysisArtifacts returns every stored artifact in a project.
func ListAnalysisArtifacts(ctx context.Context, db querier, projectID string) ([]domain.AnalysisArtifact, error) {
	rows, err := db.QueryContext(ctx, analysisSelectColumns+`
		FROM analysis_artifacts WHERE project_id = ? ORDER BY kind, device_name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list analysis artifacts: %w", err)
	}
	defer rows.Close()

	var out []domain.AnalysisArtifact
	for rows.Next() {
		a, err := scanAnalysisArtifactRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteDeviceAnalysisArtifacts removes every device-scoped artifact for
// one device, used when a device is deleted.
func DeleteDeviceAnalysisArtifacts(ctx context.Context, db querier, projectID, deviceName string) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM analysis_artifacts WHERE project_id = ? AND device_name = ?`, projectID, deviceName)
	if err != nil {
		return fmt.Errorf("store: delete device analysis artifacts: %w", err)
	}
	return nil
}

const analysisSelectColumns = `
	SELECT project_id, id, kind, device_name, status, ai_draft_json, ai_draft_text, verified_json,
	       reviewer, comments, error_message, source_version, requested_by,
	       llm_metrics_json, accuracy_metrics_json, created_at, updated_at`

func scanAnalysisArtifact(row *sql.Row, id string) (domain.AnalysisArtifact, error) {
	var a domain.AnalysisArtifact
	var kind, createdAt, updatedAt string
	var llmJSON, accuracyJSON string
	if err := row.Scan(&a.ProjectID, &a.ID, &kind, &a.DeviceName, &a.Status, &a.AIDraftJSON, &a.AIDraftText,
		&a.VerifiedJSON, &a.Reviewer, &a.Comments, &a.ErrorMessage, &a.SourceVersion,
		&a.RequestedBy, &llmJSON, &accuracyJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.AnalysisArtifact{}, apperrors.NotFound("analysis artifact", id)
		}
		return domain.AnalysisArtifact{}, fmt.Errorf("store: get analysis artifact: %w", err)
	}
	return finishAnalysisArtifact(a, kind, createdAt, updatedAt, llmJSON, accuracyJSON)
}

func scanAnalysisArtifactRow(rows *sql.Rows) (domain.AnalysisArtifact, error) {
	var a domain.AnalysisArtifact
	var kind, createdAt, updatedAt string
	var llmJSON, accuracyJSON string
	if err := rows.Scan(&a.ProjectID, &a.ID, &kind, &a.DeviceName, &a.Status, &a.AIDraftJSON, &a.AIDraftText,
		&a.VerifiedJSON, &a.Reviewer, &a.Comments, &a.ErrorMessage, &a.SourceVersion,
		&a.RequestedBy, &llmJSON, &accuracyJSON, &createdAt, &updatedAt); err != nil {
		return domain.AnalysisArtifact{}, fmt.Errorf("store: scan analysis artifact: %w", err)
	}
	return finishAnalysisArtifact(a, kind, createdAt, updatedAt, llmJSON, accuracyJSON)
}

func finishAnalysisArtifact(a domain.AnalysisArtifact, kind, createdAt, updatedAt, llmJSON, accuracyJSON string) (domain.AnalysisArtifact, error) {
	a.Kind = domain.AnalysisKind(kind)
	a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if llmJSON != "" {
		var m domain.LLMMetrics
		if err := json.Unmarshal([]byte(llmJSON), &m); err != nil {
			return domain.AnalysisArtifact{}, fmt.Errorf("store: unmarshal llm metrics: %w", err)
		}
		a.LLMMetrics = &m
	}
	if accuracyJSON != "" {
		var m domain.AccuracyMetrics
		if err := json.Unmarshal([]byte(accuracyJSON), &m); err != nil {
			return domain.AnalysisArtifact{}, fmt.Errorf("store: unmarshal accuracy metrics: %w", err)
		}
		a.AccuracyMetrics = &m
	}
	return a, nil
}
