package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
)

// Store defines all database operations of the backend. Atomic returns a
// Store bound to a transaction; every save issued through it commits or rolls
// back as one unit.
type Store interface {
	DB() *gorm.DB
	Atomic(ctx context.Context, fn func(tx Store) error) error

	// Station aggregate
	CreateStation(ctx context.Context, st *model.Station) error
	GetStation(ctx context.Context, id uint) (*model.Station, error)
	ListStations(ctx context.Context, region *model.Region) ([]model.Station, error)
	SaveStation(ctx context.Context, st *model.Station) error
	DeleteStation(ctx context.Context, id uint) error

	GetSettings(ctx context.Context, stationID uint, lock bool) (*model.StationSettings, error)
	SaveSettings(ctx context.Context, s *model.StationSettings) error
	GetControl(ctx context.Context, stationID uint, lock bool) (*model.StationControl, error)
	SaveControl(ctx context.Context, c *model.StationControl) error

	// Inventories
	ListMachines(ctx context.Context, stationID uint) ([]model.WashingMachine, error)
	CreateMachine(ctx context.Context, m *model.WashingMachine) error
	SaveMachine(ctx context.Context, m *model.WashingMachine) error
	DeleteMachine(ctx context.Context, stationID uint, number int) error
	ListAgents(ctx context.Context, stationID uint) ([]model.WashingAgent, error)
	CreateAgent(ctx context.Context, a *model.WashingAgent) error
	SaveAgent(ctx context.Context, a *model.WashingAgent) error
	DeleteAgent(ctx context.Context, stationID uint, number int) error
	ListPrograms(ctx context.Context, stationID uint) ([]model.StationProgram, error)
	CreateProgram(ctx context.Context, p *model.StationProgram) error
	SaveProgram(ctx context.Context, p *model.StationProgram) error
	DeleteProgram(ctx context.Context, stationID uint, step int) error

	// Users and ownership
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SaveUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id uint) error
	AssignOwner(ctx context.Context, stationID, userID uint) error
	ReleaseOwner(ctx context.Context, stationID uint) error
	GetOwner(ctx context.Context, stationID uint) (*model.User, error)

	// Audit sink
	AppendLog(ctx context.Context, l *model.Log) error
	AppendError(ctx context.Context, e *model.ErrorLog) error
	AppendChange(ctx context.Context, c *model.ChangesLog) error
	ListLogs(ctx context.Context, stationID uint) ([]model.Log, error)
	ListErrors(ctx context.Context, stationID uint) ([]model.ErrorLog, error)
	ListChanges(ctx context.Context, stationID uint) ([]model.ChangesLog, error)
	OpenMaintenance(ctx context.Context, stationID uint, userID *uint) (*model.MaintenanceLog, error)
	GetOpenMaintenance(ctx context.Context, stationID uint) (*model.MaintenanceLog, error)
	CloseMaintenance(ctx context.Context, m *model.MaintenanceLog) error
	ListMaintenance(ctx context.Context, stationID uint) ([]model.MaintenanceLog, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for the route layer's read-only queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Atomic runs fn inside a single database transaction. The Store passed to fn
// shares that transaction, so a failing fn leaves no partial writes behind.
func (s *gormStore) Atomic(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// lockClause serializes transitions per station via SELECT ... FOR UPDATE.
// SQLite has no row locks and serializes writers on its own, so the clause is
// applied on postgres only.
func (s *gormStore) lockClause(q *gorm.DB, lock bool) *gorm.DB {
	if lock && s.db.Dialector.Name() == "postgres" {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}

// --- Station aggregate ---

// CreateStation persists the station together with any dependent aggregates
// attached to it (settings, control, inventories) as one transaction.
func (s *gormStore) CreateStation(ctx context.Context, st *model.Station) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(st).Error; err != nil {
			return fmt.Errorf("create station: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetStation(ctx context.Context, id uint) (*model.Station, error) {
	var st model.Station
	if err := s.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, notFoundOr(err, "station %d", id)
	}
	return &st, nil
}

func (s *gormStore) ListStations(ctx context.Context, region *model.Region) ([]model.Station, error) {
	q := s.db.WithContext(ctx).Order("id")
	if region != nil {
		q = q.Where("region = ?", *region)
	}
	var stations []model.Station
	if err := q.Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

func (s *gormStore) SaveStation(ctx context.Context, st *model.Station) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(st).Error
}

// DeleteStation removes the station and every dependent aggregate. The
// deletes are explicit rather than left to FK cascades so the behavior does
// not depend on the database's pragma/constraint configuration.
func (s *gormStore) DeleteStation(ctx context.Context, id uint) error {
	if _, err := s.GetStation(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		where := "station_id = ?"
		for _, m := range []any{
			&model.StationProgram{}, &model.WashingMachine{}, &model.WashingAgent{},
			&model.StationControl{}, &model.StationSettings{}, &model.LaundryStation{},
			&model.Log{}, &model.ErrorLog{}, &model.ChangesLog{}, &model.MaintenanceLog{},
		} {
			if err := tx.Where(where, id).Delete(m).Error; err != nil {
				return fmt.Errorf("cascade delete: %w", err)
			}
		}
		return tx.Delete(&model.Station{}, id).Error
	})
}

func (s *gormStore) GetSettings(ctx context.Context, stationID uint, lock bool) (*model.StationSettings, error) {
	var set model.StationSettings
	q := s.lockClause(s.db.WithContext(ctx), lock)
	if err := q.First(&set, "station_id = ?", stationID).Error; err != nil {
		return nil, notFoundOr(err, "settings for station %d", stationID)
	}
	return &set, nil
}

func (s *gormStore) SaveSettings(ctx context.Context, set *model.StationSettings) error {
	return s.db.WithContext(ctx).Save(set).Error
}

func (s *gormStore) GetControl(ctx context.Context, stationID uint, lock bool) (*model.StationControl, error) {
	var ctl model.StationControl
	q := s.lockClause(s.db.WithContext(ctx), lock)
	if err := q.First(&ctl, "station_id = ?", stationID).Error; err != nil {
		return nil, notFoundOr(err, "control for station %d", stationID)
	}
	return &ctl, nil
}

func (s *gormStore) SaveControl(ctx context.Context, ctl *model.StationControl) error {
	return s.db.WithContext(ctx).Save(ctl).Error
}

// --- Inventories ---

func (s *gormStore) ListMachines(ctx context.Context, stationID uint) ([]model.WashingMachine, error) {
	var machines []model.WashingMachine
	err := s.db.WithContext(ctx).Where("station_id = ?", stationID).Order("machine_number").Find(&machines).Error
	return machines, err
}

func (s *gormStore) CreateMachine(ctx context.Context, m *model.WashingMachine) error {
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *gormStore) SaveMachine(ctx context.Context, m *model.WashingMachine) error {
	return s.db.WithContext(ctx).Save(m).Error
}

func (s *gormStore) DeleteMachine(ctx context.Context, stationID uint, number int) error {
	return s.db.WithContext(ctx).
		Where("station_id = ? AND machine_number = ?", stationID, number).
		Delete(&model.WashingMachine{}).Error
}

func (s *gormStore) ListAgents(ctx context.Context, stationID uint) ([]model.WashingAgent, error) {
	var agents []model.WashingAgent
	err := s.db.WithContext(ctx).Where("station_id = ?", stationID).Order("agent_number").Find(&agents).Error
	return agents, err
}

func (s *gormStore) CreateAgent(ctx context.Context, a *model.WashingAgent) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *gormStore) SaveAgent(ctx context.Context, a *model.WashingAgent) error {
	return s.db.WithContext(ctx).Save(a).Error
}

func (s *gormStore) DeleteAgent(ctx context.Context, stationID uint, number int) error {
	return s.db.WithContext(ctx).
		Where("station_id = ? AND agent_number = ?", stationID, number).
		Delete(&model.WashingAgent{}).Error
}

func (s *gormStore) ListPrograms(ctx context.Context, stationID uint) ([]model.StationProgram, error) {
	var programs []model.StationProgram
	err := s.db.WithContext(ctx).Where("station_id = ?", stationID).Order("program_step").Find(&programs).Error
	return programs, err
}

func (s *gormStore) CreateProgram(ctx context.Context, p *model.StationProgram) error {
	return s.db.WithContext(ctx).Create(p).Error
}

func (s *gormStore) SaveProgram(ctx context.Context, p *model.StationProgram) error {
	return s.db.WithContext(ctx).Save(p).Error
}

func (s *gormStore) DeleteProgram(ctx context.Context, stationID uint, step int) error {
	return s.db.WithContext(ctx).
		Where("station_id = ? AND program_step = ?", stationID, step).
		Delete(&model.StationProgram{}).Error
}
