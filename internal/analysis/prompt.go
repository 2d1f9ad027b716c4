package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"netopscore/internal/blobstore"
	"netopscore/internal/domain"
	"netopscore/internal/store"
)

// composeProjectContext renders every device record in a project into a
// compact JSON-lines context blob for project-wide analysis kinds.
func composeProjectContext(ctx context.Context, db *sql.DB, projectID string) (string, error) {
	records, err := store.ListDeviceRecords(ctx, db, projectID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("analysis: marshal device record: %w", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// composeDeviceContext renders a single device record for device-scoped
// kinds other than device_config_drift.
func composeDeviceContext(ctx context.Context, db *sql.DB, projectID, deviceName string) (string, error) {
	rec, err := store.GetDeviceRecord(ctx, db, projectID, deviceName)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("analysis: marshal device record: %w", err)
	}
	return string(b), nil
}

// composeDriftContext loads the two latest raw Config versions for a
// device and renders them side by side for a drift analysis.
func composeDriftContext(ctx context.Context, db *sql.DB, blobs *blobstore.Store, projectID, deviceName string) (string, error) {
	doc, err := store.FindConfigDocumentByDeviceName(ctx, db, projectID, deviceName)
	if err != nil {
		return "", err
	}
	versions, err := store.ListDocumentVersions(ctx, db, projectID, doc.ID)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", nil
	}

	latest := versions[len(versions)-1]
	var previous *domain.DocumentVersion
	if len(versions) >= 2 {
		previous = &versions[len(versions)-2]
	}

	latestBytes, err := blobs.Get(latest.BlobHash)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== version %d (latest) ===\n%s\n", latest.VersionNumber, latestBytes)
	if previous != nil {
		prevBytes, err := blobs.Get(previous.BlobHash)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "=== version %d (previous) ===\n%s\n", previous.VersionNumber, prevBytes)
	} else {
		b.WriteString("=== no previous version: this is the first upload ===\n")
	}
	return b.String(), nil
}
