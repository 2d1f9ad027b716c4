package domain

import "time"

// AnalysisStatus is the lifecycle state of an AnalysisArtifact.
type AnalysisStatus string

const (
	AnalysisPendingReview AnalysisStatus = "pending_review"
	AnalysisVerified      AnalysisStatus = "verified"
	AnalysisRejected      AnalysisStatus = "rejected"
)

// AnalysisKind distinguishes the LLM prompt family used for one
// artifact. These six are the kinds the core uses.
type AnalysisKind string

const (
	KindProjectOverview        AnalysisKind = "project_overview"
	KindProjectRecommendations AnalysisKind = "project_recommendations"
	KindProjectTopology        AnalysisKind = "project_topology"
	KindDeviceOverview         AnalysisKind = "device_overview"
	KindDeviceRecommendations  AnalysisKind = "device_recommendations"
	KindDeviceConfigDrift      AnalysisKind = "device_config_drift"
)

// IsDeviceScoped reports whether kind requires a device_name.
func (k AnalysisKind) IsDeviceScoped() bool {
	switch k {
	case KindDeviceOverview, KindDeviceRecommendations, KindDeviceConfigDrift:
		return true
	default:
		return false
	}
}

// TokenUsage is the adapter's per-call token accounting.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// LLMMetrics records adapter call bookkeeping for one analysis run.
type LLMMetrics struct {
	ModelName       string     `json:"model_name"`
	InferenceTimeMs int64      `json:"inference_time_ms"`
	TokenUsage      TokenUsage `json:"token_usage"`
}

// FieldChange is one leaf-level difference between the AI draft and the
// human-verified JSON.
type FieldChange struct {
	Path       string `json:"path"`
	ChangeType string `json:"change_type"` // added | removed | modified
}

// AccuracyMetrics is populated when a human verifies an AnalysisArtifact,
// as a recursive field-by-field diff against the AI draft. ChangesByType
// groups leaf changes by their field name (the last map key on the
// path), so editing two recommendation texts yields
// changes_by_type["recommendation"] with two entries.
type AccuracyMetrics struct {
	TotalChanges  int                      `json:"total_changes"`
	ChangesByType map[string][]FieldChange `json:"changes_by_type"`
	KeyChanges    []string                 `json:"key_changes"`
	AccuracyScore float64                  `json:"accuracy_score"`
}

// AnalysisArtifact is the stored output of one LLM analysis job, upserted
// by (project, kind, device) per DESIGN.md's Open Question resolution:
// artifacts are not version-chained like documents, the latest run for a
// given (kind, device) replaces the prior one.
type AnalysisArtifact struct {
	ProjectID       string           `json:"project_id"`
	ID              string           `json:"id"`
	Kind            AnalysisKind     `json:"kind"`
	DeviceName      string           `json:"device_name"` // "" for project-wide kinds
	Status          AnalysisStatus   `json:"status"`
	AIDraftJSON     string           `json:"ai_draft_json"`
	AIDraftText     string           `json:"ai_draft_text"`
	VerifiedJSON    string           `json:"verified_json,omitempty"`
	Reviewer        string           `json:"reviewer,omitempty"`
	Comments        string           `json:"comments,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	SourceVersion   int              `json:"source_version"`
	RequestedBy     string           `json:"requested_by"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	LLMMetrics      *LLMMetrics      `json:"llm_metrics,omitempty"`
	AccuracyMetrics *AccuracyMetrics `json:"accuracy_metrics,omitempty"`
}

// InFlightMarker is the durable single-slot job-in-progress row for a
// project. It is stored in the database, so it survives process
// restarts; it is removed only when the job's result or failure is
// written, and nothing reclaims a marker left by a process that stopped
// mid-job.
type InFlightMarker struct {
	ProjectID string    `json:"project_id"`
	JobID     string    `json:"job_id"`
	Kind      AnalysisKind `json:"kind"`
	StartedAt time.Time `json:"started_at"`
}
