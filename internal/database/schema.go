package database

import (
	"context"
	"fmt"
)

// schemaStatements is applied in order on every startup. Statements use
// CREATE TABLE IF NOT EXISTS / CREATE INDEX IF NOT EXISTS so migrate is
// idempotent; there is no down-migration path, only forward-only schema
// management.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		is_platform_admin INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		visibility TEXT NOT NULL CHECK (visibility IN ('Private','Shared')),
		description TEXT NOT NULL DEFAULT '',
		topo_url TEXT NOT NULL DEFAULT '',
		backup_interval_hint TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS members (
		project_id TEXT NOT NULL,
		username TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('admin','manager','engineer','viewer')),
		created_at TEXT NOT NULL,
		PRIMARY KEY (project_id, username)
	)`,

	`CREATE TABLE IF NOT EXISTS folders (
		project_id TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		parent_id TEXT,
		deleted INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_id, id)
	)`,

	`CREATE TABLE IF NOT EXISTS blobs (
		hash TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		ref_count INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS documents (
		project_id TEXT NOT NULL,
		id TEXT NOT NULL,
		filename TEXT NOT NULL,
		folder_id TEXT NOT NULL,
		latest_version_number INTEGER NOT NULL,
		content_type TEXT NOT NULL,
		creator TEXT NOT NULL,
		created_at TEXT NOT NULL,
		device_name TEXT NOT NULL DEFAULT '',
		deleted INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (project_id, id)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_family
		ON documents (project_id, filename, folder_id) WHERE deleted = 0`,

	`CREATE TABLE IF NOT EXISTS document_versions (
		project_id TEXT NOT NULL,
		document_id TEXT NOT NULL,
		version_number INTEGER NOT NULL,
		blob_hash TEXT NOT NULL,
		size INTEGER NOT NULL,
		uploader TEXT NOT NULL,
		created_at TEXT NOT NULL,
		is_latest INTEGER NOT NULL DEFAULT 0,
		meta_who TEXT NOT NULL DEFAULT '',
		meta_what TEXT NOT NULL DEFAULT '',
		meta_where TEXT NOT NULL DEFAULT '',
		meta_when TEXT NOT NULL DEFAULT '',
		meta_why TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (project_id, document_id, version_number)
	)`,

	`CREATE TABLE IF NOT EXISTS device_records (
		project_id TEXT NOT NULL,
		device_name TEXT NOT NULL,
		parsed_at TEXT NOT NULL,
		source_version INTEGER NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (project_id, device_name)
	)`,

	`CREATE TABLE IF NOT EXISTS analysis_artifacts (
		project_id TEXT NOT NULL,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		device_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		ai_draft_json TEXT NOT NULL DEFAULT '',
		ai_draft_text TEXT NOT NULL DEFAULT '',
		verified_json TEXT NOT NULL DEFAULT '',
		reviewer TEXT NOT NULL DEFAULT '',
		comments TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		source_version INTEGER NOT NULL DEFAULT 0,
		requested_by TEXT NOT NULL DEFAULT '',
		llm_metrics_json TEXT NOT NULL DEFAULT '',
		accuracy_metrics_json TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (project_id, kind, device_name)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_analysis_artifacts_id
		ON analysis_artifacts (project_id, id)`,

	`CREATE TABLE IF NOT EXISTS in_flight_markers (
		project_id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		started_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS topology_states (
		project_id TEXT PRIMARY KEY,
		positions_json TEXT NOT NULL DEFAULT '{}',
		links_json TEXT NOT NULL DEFAULT '[]',
		node_labels_json TEXT NOT NULL DEFAULT '{}',
		node_roles_json TEXT NOT NULL DEFAULT '{}',
		updated_by TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS project_options (
		project_id TEXT NOT NULL,
		category TEXT NOT NULL CHECK (category IN ('what','where','when','why')),
		value TEXT NOT NULL,
		PRIMARY KEY (project_id, category, value)
	)`,

	`CREATE TABLE IF NOT EXISTS device_images (
		project_id TEXT NOT NULL,
		device_name TEXT NOT NULL,
		image_data TEXT NOT NULL,
		PRIMARY KEY (project_id, device_name)
	)`,
}

func (m *Manager) migrate(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("database: migrate statement %q: %w", stmt, err)
		}
	}
	return tx.Commit()
}
