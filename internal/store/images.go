package store

import (
	"context"
	"database/sql"
	"fmt"

	"netopscore/internal/apperrors"
	"netopscore/internal/domain"
)

// SaveDeviceImage stores or replaces a topology node's icon image.
func SaveDeviceImage(ctx context.Context, db querier, img domain.DeviceImage) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO device_images (project_id, device_name, image_data)
		VALUES (?, ?, ?)
		ON CONFLICT (project_id, device_name) DO UPDATE SET image_data = excluded.image_data`,
		img.ProjectID, img.DeviceName, img.ImageData,
	)
	if err != nil {
		return fmt.Errorf("store: save device image: %w", err)
	}
	return nil
}

// GetDeviceImage fetches a device's stored icon image.
func GetDeviceImage(ctx context.Context, db querier, projectID, deviceName string) (domain.DeviceImage, error) {
	row := db.QueryRowContext(ctx, `
		SELECT project_id, device_name, image_data FROM device_images WHERE project_id = ? AND device_name = ?`,
		projectID, deviceName,
	)
	var img domain.DeviceImage
	if err := row.Scan(&img.ProjectID, &img.DeviceName, &img.ImageData); err != nil {
		if err == sql.ErrNoRows {
			return domain.DeviceImage{}, apperrors.NotFound("device image", deviceName)
		}
		return domain.DeviceImage{}, fmt.Errorf("store: get device image: %w", err)
	}
	return img, nil
}

// DeleteDeviceImage removes a device's stored icon image, if any. A
// missing row is not an error: deleting a device that never had a
// custom image is the common case.
func DeleteDeviceImage(ctx context.Context, db querier, projectID, deviceName string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM device_images WHERE project_id = ? AND device_name = ?`, projectID, deviceName)
	if err != nil {
		return fmt.Errorf("store: delete device image: %w", err)
	}
	return nil
}
