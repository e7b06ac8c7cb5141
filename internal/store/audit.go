package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
)

// Audit records are append-only. Nothing here updates a row once written,
// except CloseMaintenance which sets ended_at exactly once.

func (s *gormStore) AppendLog(ctx context.Context, l *model.Log) error {
	return s.db.WithContext(ctx).Create(l).Error
}

func (s *gormStore) AppendError(ctx context.Context, e *model.ErrorLog) error {
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *gormStore) AppendChange(ctx context.Context, c *model.ChangesLog) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *gormStore) ListLogs(ctx context.Context, stationID uint) ([]model.Log, error) {
	var logs []model.Log
	err := s.db.WithContext(ctx).Where("station_id = ?", stationID).Order("id DESC").Find(&logs).Error
	return logs, err
}

func (s *gormStore) ListErrors(ctx context.Context, stationID uint) ([]model.ErrorLog, error) {
	var logs []model.ErrorLog
	err := s.db.WithContext(ctx).Where("station_id = ?", stationID).Order("id DESC").Find(&logs).Error
	return logs, err
}

func (s *gormStore) ListChanges(ctx context.Context, stationID uint) ([]model.ChangesLog, error) {
	var logs []model.ChangesLog
	err := s.db.WithContext(ctx).Where("station_id = ?", stationID).Order("id DESC").Find(&logs).Error
	return logs, err
}

// OpenMaintenance starts a maintenance window. Only one window may be open
// per station at a time.
func (s *gormStore) OpenMaintenance(ctx context.Context, stationID uint, userID *uint) (*model.MaintenanceLog, error) {
	if _, err := s.GetOpenMaintenance(ctx, stationID); err == nil {
		return nil, apperr.Conflict("maintenance already open for station %d", stationID)
	} else if !apperr.IsCode(err, apperr.CodeNotFound) {
		return nil, err
	}
	m := &model.MaintenanceLog{StationID: stationID, UserID: userID, StartedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *gormStore) GetOpenMaintenance(ctx context.Context, stationID uint) (*model.MaintenanceLog, error) {
	var m model.MaintenanceLog
	err := s.db.WithContext(ctx).
		Where("station_id = ? AND ended_at IS NULL", stationID).
		Order("id DESC").First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no open maintenance for station %d", stationID)
		}
		return nil, err
	}
	return &m, nil
}

// CloseMaintenance sets ended_at on an open window. Closing twice is a
// conflict.
func (s *gormStore) CloseMaintenance(ctx context.Context, m *model.MaintenanceLog) error {
	if m.EndedAt != nil {
		return apperr.Conflict("maintenance log %d already closed", m.ID)
	}
	now := time.Now().UTC()
	m.EndedAt = &now
	return s.db.WithContext(ctx).Model(m).Update("ended_at", now).Error
}

func (s *gormStore) ListMaintenance(ctx context.Context, stationID uint) ([]model.MaintenanceLog, error) {
	var logs []model.MaintenanceLog
	err := s.db.WithContext(ctx).Where("station_id = ?", stationID).Order("id DESC").Find(&logs).Error
	return logs, err
}
