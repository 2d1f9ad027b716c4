// Package foldertree maintains a per-project folder
// hierarchy with two synthesized reserved folders (Config, Other), cycle
// rejection on rename/move, and soft delete.
package foldertree

import (
	"context"
	"database/sql"
	"strings"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
	"netopscore/internal/store"
	"netopscore/pkg/idgen"
)

// Service implements the folder tree operations.
type Service struct {
	db *sql.DB
}

// New builds a Service over db.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// reservedFolder synthesizes the well-known row for a reserved id, used
// whenever the project has no explicit row for it yet.
func reservedFolder(projectID, id string) domain.Folder {
	return domain.Folder{ProjectID: projectID, ID: id, Name: id}
}

// List returns every folder in a project, synthesizing Config and Other
// if no row exists for them yet.
func (s *Service) List(ctx context.Context, projectID string) ([]domain.Folder, error) {
	rows, err := store.ListFolders(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}

	haveConfig, haveOther := false, false
	for _, f := range rows {
		if f.ID == domain.FolderConfig {
			haveConfig = true
		}
		if f.ID == domain.FolderOther {
			haveOther = true
		}
	}
	out := rows
	if !haveConfig {
		out = append(out, reservedFolder(projectID, domain.FolderConfig))
	}
	if !haveOther {
		out = append(out, reservedFolder(projectID, domain.FolderOther))
	}
	return out, nil
}

// Get fetches one folder by id, synthesizing reserved folders that have
// no row yet.
func (s *Service) Get(ctx context.Context, projectID, folderID string) (domain.Folder, error) {
	f, err := store.GetFolder(ctx, s.db, projectID, folderID)
	if err == nil {
		return f, nil
	}
	if isReserved(folderID) {
		if _, ok := apperrors.As(err); ok {
			return reservedFolder(projectID, folderID), nil
		}
	}
	return domain.Folder{}, err
}

func isReserved(id string) bool {
	return id == domain.FolderConfig || id == domain.FolderOther
}

// Create adds a new folder. Names must be non-empty after trim; a
// reserved id cannot be recreated; Config cannot be a parent, since
// new folders may not be created inside it.
func (s *Service) Create(ctx context.Context, projectID, name, parentID string) (domain.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Folder{}, apperrors.Validation("EMPTY_NAME", "folder name must not be empty")
	}
	if isReserved(name) {
		return domain.Folder{}, apperrors.Conflict("RESERVED_FOLDER", name+" is a reserved folder name")
	}
	if parentID == domain.FolderConfig {
		return domain.Folder{}, apperrors.Validation("INVALID_PARENT", "folders cannot be created inside Config")
	}
	if parentID != "" && parentID != domain.FolderOther {
		if _, err := s.Get(ctx, projectID, parentID); err != nil {
			return domain.Folder{}, err
		}
	}

	f := domain.Folder{ProjectID: projectID, ID: idgen.NewString(), Name: name, ParentID: parentID}
	if err := store.CreateFolder(ctx, s.db, f); err != nil {
		return domain.Folder{}, err
	}
	return f, nil
}

// Rename changes a folder's display name and optionally reparents it,
// rejecting both on reserved folders and rejecting cycles.
func (s *Service) Rename(ctx context.Context, projectID, folderID, newName, newParentID string) error {
	if isReserved(folderID) {
		return apperrors.Forbidden(folderID + " cannot be renamed or moved")
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperrors.Validation("EMPTY_NAME", "folder name must not be empty")
	}

	if newParentID != "" {
		if err := s.checkNoCycle(ctx, projectID, folderID, newParentID); err != nil {
			return err
		}
	}

	if err := store.RenameFolder(ctx, s.db, projectID, folderID, newName); err != nil {
		return err
	}
	if newParentID != "" {
		return store.MoveFolder(ctx, s.db, projectID, folderID, newParentID)
	}
	return nil
}

// checkNoCycle walks up from candidateParent toward the root, rejecting
// the move if folderID appears anywhere in that chain, so a rename can
// never introduce a cycle.
func (s *Service) checkNoCycle(ctx context.Context, projectID, folderID, candidateParent string) error {
	if candidateParent == folderID {
		return apperrors.Conflict("FOLDER_CYCLE", "a folder cannot be its own parent")
	}
	current := candidateParent
	for current != "" {
		if current == folderID {
			return apperrors.Conflict("FOLDER_CYCLE", "move would create a folder cycle")
		}
		f, err := s.Get(ctx, projectID, current)
		if err != nil {
			break
		}
		current = f.ParentID
	}
	return nil
}

// Delete soft-deletes a folder (cascading is handled at the document
// layer: documents that were in it resolve to Other on listing).
// Reserved folders cannot be deleted.
func (s *Service) Delete(ctx context.Context, projectID, folderID string) error {
	if isReserved(folderID) {
		return apperrors.Forbidden(folderID + " cannot be deleted")
	}
	return store.SoftDeleteFolder(ctx, s.db, projectID, folderID)
}

// ValidateMoveDestination enforces the folder move rules: Config can
// never receive or release a generic move; Other can never receive one.
func ValidateMoveDestination(currentFolderID, destFolderID string) error {
	if currentFolderID == domain.FolderConfig {
		return apperrors.Validation("MOVE_FORBIDDEN", "documents cannot be moved out of Config")
	}
	if destFolderID == domain.FolderConfig {
		return apperrors.Validation("MOVE_FORBIDDEN", "documents cannot be moved into Config")
	}
	if destFolderID == domain.FolderOther || destFolderID == "" {
		return apperrors.Validation("MOVE_FORBIDDEN", "documents cannot be moved into Other")
	}
	return nil
}
