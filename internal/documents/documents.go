// Package documents implements the version chain on top of the folder
// tree and blob store. Uploading the same (filename,
// folder) appends a version; renaming and moving act on the document
// family; deletion is soft and retains version/blob history for audit.
package documents

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"time"

	"netopscore/internal/apperrors"
	"netopscore/internal/blobstore"
	"netopscore/internal/domain"
	"netopscore/internal/foldertree"
	"netopscore/internal/store"
	"netopscore/pkg/idgen"
)

// configExtensions are the file extensions always accepted for uploads
// into the Config folder; other files need a text/* content type.
var configExtensions = map[string]bool{
	".txt": true, ".cfg": true, ".conf": true, ".log": true,
}

// ConfigIngestFunc is invoked after a new version lands in the Config
// folder, so the device parser and summary projector can react without
// this package importing either.
type ConfigIngestFunc func(ctx context.Context, projectID, documentID, deviceName string, content []byte, sourceVersion int) error

// Service implements the version chain.
type Service struct {
	db      *sql.DB
	blobs   *blobstore.Store
	folders *foldertree.Service
	OnConfigIngest ConfigIngestFunc
}

// New builds a documents Service.
func New(db *sql.DB, blobs *blobstore.Store, folders *foldertree.Service) *Service {
	return &Service{db: db, blobs: blobs, folders: folders}
}

// UploadInput carries one file upload.
type UploadInput struct {
	ProjectID        string
	FolderID         string
	OriginalFilename string
	Bytes            []byte
	ContentType      string
	Uploader         string
	Metadata         domain.VersionMetadata
}

// Upload appends a version to an existing (project, filename, folder)
// family or creates one.
func (s *Service) Upload(ctx context.Context, in UploadInput) (domain.Document, domain.DocumentVersion, error) {
	if strings.TrimSpace(in.OriginalFilename) == "" {
		return domain.Document{}, domain.DocumentVersion{}, apperrors.Validation("EMPTY_FILENAME", "filename must not be empty")
	}
	if in.FolderID == domain.FolderConfig {
		if err := validateConfigContentType(in.OriginalFilename, in.ContentType); err != nil {
			return domain.Document{}, domain.DocumentVersion{}, err
		}
	}
	if in.FolderID == domain.FolderOther {
		return domain.Document{}, domain.DocumentVersion{}, apperrors.Validation("INVALID_FOLDER", "documents cannot be uploaded directly into Other")
	}

	hash, err := s.blobs.Put(ctx, in.Bytes)
	if err != nil {
		return domain.Document{}, domain.DocumentVersion{}, err
	}

	var doc domain.Document
	var ver domain.DocumentVersion
	err = store.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		existing, ferr := store.FindDocumentByFamily(ctx, tx, in.ProjectID, in.OriginalFilename, in.FolderID)
		now := time.Now().UTC()

		if ferr != nil {
			if _, ok := apperrors.As(ferr); !ok {
				return ferr
			}
			// No family yet: create one at version 1.
			doc = domain.Document{
				ProjectID: in.ProjectID, ID: idgen.NewString(), Filename: in.OriginalFilename,
				FolderID: in.FolderID, LatestVersionNumber: 1, ContentType: in.ContentType,
				Creator: in.Uploader, CreatedAt: now,
			}
			if in.FolderID == domain.FolderConfig {
				doc.DeviceName = DeriveDeviceName(in.OriginalFilename)
			}
			if err := store.CreateDocument(ctx, tx, doc); err != nil {
				return err
			}
			ver = domain.DocumentVersion{
				ProjectID: in.ProjectID, DocumentID: doc.ID, VersionNumber: 1,
				BlobHash: hash, Size: int64(len(in.Bytes)), Uploader: in.Uploader,
				CreatedAt: now, IsLatest: true, Metadata: in.Metadata,
			}
			return store.CreateDocumentVersion(ctx, tx, ver)
		}

		// Family exists: append a version, demoting the prior latest
		// atomically within this transaction so exactly one is_latest
		// row exists at all times.
		doc = existing
		nextVersion := doc.LatestVersionNumber + 1
		if err := store.ClearLatestVersion(ctx, tx, in.ProjectID, doc.ID); err != nil {
			return err
		}
		ver = domain.DocumentVersion{
			ProjectID: in.ProjectID, DocumentID: doc.ID, VersionNumber: nextVersion,
			BlobHash: hash, Size: int64(len(in.Bytes)), Uploader: in.Uploader,
			CreatedAt: now, IsLatest: true, Metadata: in.Metadata,
		}
		if err := store.CreateDocumentVersion(ctx, tx, ver); err != nil {
			return err
		}
		if err := store.SetDocumentLatestVersion(ctx, tx, in.ProjectID, doc.ID, nextVersion); err != nil {
			return err
		}
		doc.LatestVersionNumber = nextVersion
		return nil
	})
	if err != nil {
		return domain.Document{}, domain.DocumentVersion{}, err
	}

	if in.FolderID == domain.FolderConfig && s.OnConfigIngest != nil {
		if err := s.OnConfigIngest(ctx, in.ProjectID, doc.ID, doc.DeviceName, in.Bytes, ver.VersionNumber); err != nil {
			// Parsing is tolerant by policy: the upload itself must
			// never fail because parsing did.
			return doc, ver, nil //nolint:nilerr
		}
	}

	return doc, ver, nil
}

func validateConfigContentType(filename, contentType string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if configExtensions[ext] {
		return nil
	}
	if strings.HasPrefix(contentType, "text/") {
		return nil
	}
	return apperrors.Validation("UNSUPPORTED_CONTENT_TYPE", "Config uploads must be text-like (.txt, .cfg, .conf, .log)")
}

// DeriveDeviceName strips extension, version suffix, and timestamp
// suffix from a Config filename, then normalizes separators, to produce
// the canonical device name. Example: "core-sw1_20251001_v2.txt" → "core-sw1".
func DeriveDeviceName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})

	var kept []string
	for _, p := range parts {
		if isTimestampLike(p) || isVersionLike(p) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return strings.ToLower(base)
	}
	return strings.ToLower(strings.Join(kept, "-"))
}

func isTimestampLike(s string) bool {
	if len(s) < 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isVersionLike(s string) bool {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "v") || len(lower) < 2 {
		return false
	}
	for _, r := range lower[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Get fetches one document's head row.
func (s *Service) Get(ctx context.Context, projectID, documentID string) (domain.Document, error) {
	return store.GetDocument(ctx, s.db, projectID, documentID)
}

// List returns every live document in a folder.
func (s *Service) List(ctx context.Context, projectID, folderID string) ([]domain.Document, error) {
	return store.ListDocumentsInFolder(ctx, s.db, projectID, folderID)
}

// Versions returns every version of a document, oldest first.
func (s *Service) Versions(ctx context.Context, projectID, documentID string) ([]domain.DocumentVersion, error) {
	return store.ListDocumentVersions(ctx, s.db, projectID, documentID)
}

// Download returns a document version's bytes; versionNumber == 0 means
// "latest".
func (s *Service) Download(ctx context.Context, projectID, documentID string, versionNumber int) (domain.DocumentVersion, []byte, error) {
	doc, err := store.GetDocument(ctx, s.db, projectID, documentID)
	if err != nil {
		return domain.DocumentVersion{}, nil, err
	}
	if versionNumber == 0 {
		versionNumber = doc.LatestVersionNumber
	}
	ver, err := store.GetDocumentVersion(ctx, s.db, projectID, documentID, versionNumber)
	if err != nil {
		return domain.DocumentVersion{}, nil, err
	}
	data, err := s.blobs.Get(ver.BlobHash)
	if err != nil {
		return domain.DocumentVersion{}, nil, err
	}
	return ver, data, nil
}

// Rename changes a document family's filename; version content is
// untouched.
func (s *Service) Rename(ctx context.Context, projectID, documentID, newFilename string) error {
	newFilename = strings.TrimSpace(newFilename)
	if newFilename == "" {
		return apperrors.Validation("EMPTY_FILENAME", "filename must not be empty")
	}
	return store.RenameDocument(ctx, s.db, projectID, documentID, newFilename)
}

// Move reparents a document, enforcing the Config/Other move rules.
func (s *Service) Move(ctx context.Context, projectID, documentID, newFolderID string) error {
	doc, err := store.GetDocument(ctx, s.db, projectID, documentID)
	if err != nil {
		return err
	}
	if err := foldertree.ValidateMoveDestination(doc.FolderID, newFolderID); err != nil {
		return err
	}
	return store.MoveDocument(ctx, s.db, projectID, documentID, newFolderID)
}

// Delete soft-deletes a document family. Versions and blob references
// are retained for audit and blobs are not unreferenced here; blob
// reference counts drop only when the whole project is deleted.
func (s *Service) Delete(ctx context.Context, projectID, documentID string) error {
	return store.SoftDeleteDocument(ctx, s.db, projectID, documentID)
}
