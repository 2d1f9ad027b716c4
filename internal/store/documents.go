package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// CreateDocument inserts the head row for a new (project, filename,
// folder) family. internal/documents calls this once per family, then
// CreateDocumentVersion for the first version, inside the same
// transaction.
func CreateDocument(ctx context.Context, db querier, d domain.Document) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO documents (project_id, id, filename, folder_id, latest_version_number, content_type, creator, created_at, device_name, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		d.ProjectID, d.ID, d.Filename, d.FolderID, d.LatestVersionNumber, d.ContentType, d.Creator,
		d.CreatedAt.UTC().Format(time.RFC3339Nano), d.DeviceName,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.Conflict("DOCUMENT_EXISTS", fmt.Sprintf("document %q already exists in this folder", d.Filename))
		}
		return fmt.Errorf("store: create document: %w", err)
	}
	return nil
}

// GetDocument fetches one document by id, soft-deleted or not; Deleted
// reports which.
func GetDocument(ctx context.Context, db querier, projectID, id string) (domain.Document, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, id, filename, folder_id, latest_version_number, content_type, creator, created_at, device_name, deleted
		FROM documents WHERE project_id = ? AND id = ?`, projectID, id)
	return scanDocument(row, id)
}

// FindDocumentByFamily looks up the live document in a (project,
// filename, folder) family, used to detect whether an upload should
// append a version to an existing document or create a new one.
func FindDocumentByFamily(ctx context.Context, db querier, projectID, filename, folderID string) (domain.Document, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, id, filename, folder_id, latest_version_number, content_type, creator, created_at, device_name, deleted
		FROM documents WHERE project_id = ? AND filename = ? AND folder_id = ? AND deleted = 0`, projectID, filename, folderID)
	return scanDocument(row, filename)
}

// FindConfigDocumentByDeviceName looks up the Config-folder document
// family for a device, used by the analysis job controller to compose
// the two-latest-versions drift prompt.
func FindConfigDocumentByDeviceName(ctx context.Context, db querier, projectID, deviceName string) (domain.Document, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, id, filename, folder_id, latest_version_number, content_type, creator, created_at, device_name, deleted
		FROM documents WHERE project_id = ? AND folder_id = ? AND device_name = ? AND deleted = 0`,
		projectID, domain.FolderConfig, deviceName)
	return scanDocument(row, deviceName)
}

func scanDocument(row *sql.Row, id string) (domain.Document, error) {
	var d domain.Document
	var createdAt string
	var deleted int
	if err := row.Scan(&d.ProjectID, &d.ID, &d.Filename, &d.FolderID, &d.LatestVersionNumber, &d.ContentType, &d.Creator, &createdAt, &d.DeviceName, &deleted); err != nil {
		if err == sql.ErrNoRows {
			return domain.Document{}, apperrors.NotFound("document", id)
		}
		return domain.Document{}, fmt.Errorf("store: get document: %w", err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	d.Deleted = deleted != 0
	return d, nil
}

// ListDocumentsInFolder returns every non-deleted document directly in
// one folder.
func ListDocumentsInFolder(ctx context.Context, db querier, projectID, folderID string) ([]domain.Document, error) {
	query := `
		SELECT project_id, id, filename, folder_id, latest_version_number, content_type, creator, created_at, device_name, deleted
		FROM documents WHERE project_id = ? AND folder_id = ? AND deleted = 0 ORDER BY filename`
	if folderID == domain.FolderOther {
		// Other is virtual: it holds unfiled documents, documents
		// explicitly parked there, and documents whose folder no
		// longer resolves (deleted or never existed).
		query = `
		SELECT d.project_id, d.id, d.filename, d.folder_id, d.latest_version_number, d.content_type, d.creator, d.created_at, d.device_name, d.deleted
		FROM documents d
		WHERE d.project_id = ?1 AND d.deleted = 0 AND d.folder_id != 'Config'
		  AND (d.folder_id = '' OR d.folder_id = 'Other' OR NOT EXISTS (
			SELECT 1 FROM folders f
			WHERE f.project_id = d.project_id AND f.id = d.folder_id AND f.deleted = 0))
		ORDER BY d.filename`
		rows, err := db.QueryContext(ctx, query, projectID)
		if err != nil {
			return nil, fmt.Errorf("store: list documents: %w", err)
		}
		return scanDocuments(rows)
	}
	rows, err := db.QueryContext(ctx, query, projectID, folderID)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	return scanDocuments(rows)
}

func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		var d domain.Document
		var createdAt string
		var deleted int
		if err := rows.Scan(&d.ProjectID, &d.ID, &d.Filename, &d.FolderID, &d.LatestVersionNumber, &d.ContentType, &d.Creator, &createdAt, &d.DeviceName, &deleted); err != nil {
			return nil, fmt.Errorf("store: scan document: %w", err)
		}
		d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		d.Deleted = deleted != 0
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetDocumentLatestVersion updates the head row's latest_version_number
// pointer.
func SetDocumentLatestVersion(ctx context.Context, db querier, projectID, id string, versionNumber int) error {
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET latest_version_number = ? WHERE project_id = ? AND id = ?`,
		versionNumber, projectID, id,
	)
	if err != nil {
		return fmt.Errorf("store: set latest version: %w", err)
	}
	return requireRowAffected(res, "document", id)
}

// RenameDocument changes a document's filename within its current folder.
func RenameDocument(ctx context.Context, db querier, projectID, id, newFilename string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET filename = ? WHERE project_id = ? AND id = ? AND deleted = 0`,
		newFilename, projectID, id,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.Conflict("DOCUMENT_EXISTS", fmt.Sprintf("a document named %q already exists in this folder", newFilename))
		}
		return fmt.Errorf("store: rename document: %w", err)
	}
	return requireRowAffected(res, "document", id)
}

// MoveDocument reparents a document into a different folder.
func MoveDocument(ctx context.Context, db querier, projectID, id, newFolderID string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET folder_id = ? WHERE project_id = ? AND id = ? AND deleted = 0`,
		newFolderID, projectID, id,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.Conflict("DOCUMENT_EXISTS", "a document with this name already exists in the destination folder")
		}
		return fmt.Errorf("store: move document: %w", err)
	}
	return requireRowAffected(res, "document", id)
}

// SoftDeleteDocument marks a document deleted. Its version history and
// blob references are untouched; internal/documents decides separately
// whether to unref blobs.
func SoftDeleteDocument(ctx context.Context, db querier, projectID, id string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE documents SET deleted = 1 WHERE project_id = ? AND id = ? AND deleted = 0`,
		projectID, id,
	)
	if err != nil {
		return fmt.Errorf("store: delete document: %w", err)
	}
	return requireRowAffected(res, "document", id)
}

// CreateDocumentVersion inserts one immutable version row. Callers must
// first clear is_latest on the prior version (ClearLatestVersion) within
// the same transaction to preserve the single-is_latest invariant.
func CreateDocumentVersion(ctx context.Context, db querier, v domain.DocumentVersion) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO document_versions
			(project_id, document_id, version_number, blob_hash, size, uploader, created_at, is_latest,
			 meta_who, meta_what, meta_where, meta_when, meta_why, meta_description)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?)`,
		v.ProjectID, v.DocumentID, v.VersionNumber, v.BlobHash, v.Size, v.Uploader,
		v.CreatedAt.UTC().Format(time.RFC3339Nano),
		v.Metadata.Who, v.Metadata.What, v.Metadata.Where, v.Metadata.When, v.Metadata.Why, v.Metadata.Description,
	)
	if err != nil {
		return fmt.Errorf("store: create document version: %w", err)
	}
	return nil
}

// ClearLatestVersion demotes the current latest version of a document so
// a new one can take its place. It is a no-op if the document has no
// versions yet.
func ClearLatestVersion(ctx context.Context, db querier, projectID, documentID string) error {
	_, err := db.ExecContext(ctx, `
		UPDATE document_versions SET is_latest = 0
		WHERE project_id = ? AND document_id = ? AND is_latest = 1`,
		projectID, documentID,
	)
	if err != nil {
		return fmt.Errorf("store: clear latest version: %w", err)
	}
	return nil
}

// GetDocumentVersion fetches one specific version.
func GetDocumentVersion(ctx context.Context, db querier, projectID, documentID string, versionNumber int) (domain.DocumentVersion, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, document_id, version_number, blob_hash, size, uploader, created_at, is_latest,
		       meta_who, meta_what, meta_where, meta_when, meta_why, meta_description
		FROM document_versions WHERE project_id = ? AND document_id = ? AND version_number = ?`,
		projectID, documentID, versionNumber,
	)
	return scanDocumentVersion(row, documentID, versionNumber)
}

func scanDocumentVersion(row *sql.Row, documentID string, versionNumber int) (domain.DocumentVersion, error) {
	var v domain.DocumentVersion
	var createdAt string
	var isLatest int
	if err := row.Scan(&v.ProjectID, &v.DocumentID, &v.VersionNumber, &v.BlobHash, &v.Size, &v.Uploader, &createdAt, &isLatest,
		&v.Metadata.Who, &v.Metadata.What, &v.Metadata.Where, &v.Metadata.When, &v.Metadata.Why, &v.Metadata.Description); err != nil {
		if err == sql.ErrNoRows {
			return domain.DocumentVersion{}, apperrors.NotFound("document version", fmt.Sprintf("%s#%d", documentID, versionNumber))
		}
		return domain.DocumentVersion{}, fmt.Errorf("store: get document version: %w", err)
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	v.IsLatest = isLatest != 0
	return v, nil
}

// ListDocumentVersions returns every version of a document, oldest first.
func ListDocumentVersions(ctx context.Context, db querier, projectID, documentID string) ([]domain.DocumentVersion, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT project_id, document_id, version_number, blob_hash, size, uploader, created_at, is_latest,
		       meta_who, meta_what, meta_where, meta_when, meta_why, meta_description
		FROM document_versions WHERE project_id = ? AND document_id = ? ORDER BY version_number`,
		projectID, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: list document versions: %w", err)
	}
	defer rows.Close()

	var out []domain.DocumentVersion
	for rows.Next() {
		var v domain.DocumentVersion
		var createdAt string
		var isLatest int
		if err := rows.Scan(&v.ProjectID, &v.DocumentID, &v.VersionNumber, &v.BlobHash, &v.Size, &v.Uploader, &createdAt, &isLatest,
			&v.Metadata.Who, &v.Metadata.What, &v.Metadata.Where, &v.Metadata.When, &v.Metadata.Why, &v.Metadata.Description); err != nil {
			return nil, fmt.Errorf("store: scan document version: %w", err)
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		v.IsLatest = isLatest != 0
		out = append(out, v)
	}
	return out, rows.Err()
}
