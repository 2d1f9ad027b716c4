package domain

import "time"

// Reserved folder ids, synthesized by internal/foldertree whenever a
// project has no explicit row for them.
const (
	FolderConfig = "Config"
	FolderOther  = "Other"
)

// Folder is a node in a project's folder tree.
type Folder struct {
	ProjectID string `json:"project_id"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	ParentID  string `json:"parent_id,omitempty"` // "" means root
	Deleted   bool   `json:"deleted"`
}

// VersionMetadata is the 5W+description carried per document version.
type VersionMetadata struct {
	Who         string `json:"who"`
	What        string `json:"what"`
	Where       string `json:"where"`
	When        string `json:"when"`
	Why         string `json:"why"`
	Description string `json:"description"`
}

// Document identifies a (project, filename, folder) family.
type Document struct {
	ProjectID           string    `json:"project_id"`
	ID                  string    `json:"id"`
	Filename            string    `json:"filename"`
	FolderID            string    `json:"folder_id"`
	LatestVersionNumber int       `json:"latest_version_number"`
	ContentType         string    `json:"content_type"`
	Creator             string    `json:"creator"`
	CreatedAt           time.Time `json:"created_at"`
	DeviceName          string    `json:"device_name,omitempty"` // populated when FolderID == FolderConfig
	Deleted             bool      `json:"deleted"`
}

// DocumentVersion is one immutable revision of a Document's bytes.
type DocumentVersion struct {
	ProjectID     string          `json:"project_id"`
	DocumentID    string          `json:"document_id"`
	VersionNumber int             `json:"version_number"`
	BlobHash      string          `json:"blob_hash"`
	Size          int64           `json:"size"`
	Uploader      string          `json:"uploader"`
	CreatedAt     time.Time       `json:"created_at"`
	IsLatest      bool            `json:"is_latest"`
	Metadata      VersionMetadata `json:"metadata"`
}

// ProjectOptionCategory enumerates the upload-form dropdown categories
// that ProjectOption remembers values for.
type ProjectOptionCategory string

const (
	OptionWhat  ProjectOptionCategory = "what"
	OptionWhere ProjectOptionCategory = "where"
	OptionWhen  ProjectOptionCategory = "when"
	OptionWhy   ProjectOptionCategory = "why"
)

// ProjectOption is a remembered dropdown value for upload metadata.
type ProjectOption struct {
	ProjectID string                `json:"project_id"`
	Category  ProjectOptionCategory `json:"category"`
	Value     string                `json:"value"`
}

// DeviceImage is the base64-encoded topology node icon for one device.
type DeviceImage struct {
	ProjectID  string `json:"project_id"`
	DeviceName string `json:"device_name"`
	ImageData  string `json:"image_data"` // base64 PNG or JPEG
}
