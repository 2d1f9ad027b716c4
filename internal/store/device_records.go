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

// UpsertDeviceRecord replaces the stored parse result for one device.
// There is exactly one live DeviceRecord per (project, device_name); a
// re-upload of the same device's Config document overwrites it, it does
// not version-chain like a document.
func UpsertDeviceRecord(ctx context.Context, db querier, rec domain.DeviceRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal device record: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO device_records (project_id, device_name, parsed_at, source_version, record_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (project_id, device_name) DO UPDATE SET
			parsed_at = excluded.parsed_at, source_version = excluded.source_version, record_json = excluded.record_json`,
		rec.ProjectID, rec.DeviceName, rec.ParsedAt.UTC().Format(time.RFC3339Nano), rec.SourceVersion, string(payload),
	)
	if err != nil {
		return fmt.Errorf("store: upsert device record: %w", err)
	}
	return nil
}

// GetDeviceRecord fetches one device's parsed record.
func GetDeviceRecord(ctx context.Context, db querier, projectID, deviceName string) (domain.DeviceRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT record_json FROM device_records WHERE project_id = ? AND device_name = ?`, projectID, deviceName)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return domain.DeviceRecord{}, apperrors.NotFound("device", deviceName)
		}
		return domain.DeviceRecord{}, fmt.Errorf("store: get device record: %w", err)
	}

	var rec domain.DeviceRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return domain.DeviceRecord{}, fmt.Errorf("store: unmarshal device record: %w", err)
	}
	return rec, nil
}

// ListDeviceRecords returns every parsed device in a project.
func ListDeviceRecords(ctx context.Context, db querier, projectID string) ([]domain.DeviceRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT record_json FROM device_records WHERE project_id = ? ORDER BY device_name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: list device records: %w", err)
	}
	defer rows.Close()

	var out []domain.DeviceRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("store: scan device record: %w", err)
		}
		var rec domain.DeviceRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("store: unmarshal device record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteDeviceRecord removes one device's parsed record, used when an
// admin/manager deletes a device entirely.
func DeleteDeviceRecord(ctx context.Context, db querier, projectID, deviceName string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM device_records WHERE project_id = ? AND device_name = ?`, projectID, deviceName)
	if err != nil {
		return fmt.Errorf("store: delete device record: %w", err)
	}
	return requireRowAffected(res, "device", deviceName)
}
