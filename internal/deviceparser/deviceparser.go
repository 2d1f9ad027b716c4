// Package deviceparser implements vendor detection and dispatch to one
// of the vendor-specific extraction packages, producing a normalized
// domain.DeviceRecord. It is the single wiring point internal/documents
// calls back into after a Config upload lands, and the only package
// that imports both vendor subpackages.
package deviceparser

import (
	"context"
	"database/sql"
	"time"

	"netopscore/internal/deviceparser/cisco"
	"netopscore/internal/deviceparser/huawei"
	"netopscore/internal/domain"
	"netopscore/internal/store"
)

// Service dispatches raw Config text to a vendor parser and persists
// the resulting DeviceRecord.
type Service struct {
	db *sql.DB
}

// New builds a deviceparser Service.
func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// DetectVendor tries Huawei VRP signatures first, then Cisco; vendor
// detection always wins over any hostname-convention guess a caller
// might otherwise make.
func DetectVendor(content string) domain.Vendor {
	if huawei.Detect(content) {
		return domain.VendorHuawei
	}
	if cisco.Detect(content) {
		return domain.VendorCisco
	}
	return domain.VendorUnknown
}

// Parse dispatches content to the detected vendor's extractor and fills
// in the record-level fields the vendor packages don't know about.
func Parse(projectID, deviceName string, content []byte, sourceVersion int) domain.DeviceRecord {
	text := string(content)
	vendor := DetectVendor(text)

	var rec domain.DeviceRecord
	switch vendor {
	case domain.VendorHuawei:
		rec = huawei.Parse(text)
	case domain.VendorCisco:
		rec = cisco.Parse(text)
	default:
		// Vendor unknown: best-effort structure with nothing extracted
		// beyond what's universal.
		rec = domain.DeviceRecord{}
	}

	rec.ProjectID = projectID
	rec.DeviceName = deviceName
	rec.Vendor = vendor
	rec.ParsedAt = time.Now().UTC()
	rec.SourceVersion = sourceVersion
	rec.OriginalContent = text
	return rec
}

// Ingest implements documents.ConfigIngestFunc: parse then upsert.
// Parsing is idempotent and tolerant — an uploaded document that fails
// to produce a usable record still keeps the raw content on the
// DeviceRecord for manual inspection.
func (s *Service) Ingest(ctx context.Context, projectID, documentID, deviceName string, content []byte, sourceVersion int) error {
	rec := Parse(projectID, deviceName, content, sourceVersion)
	return store.UpsertDeviceRecord(ctx, s.db, rec)
}
