package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"laundry-station-backend/internal/apperr"
	"laundry-station-backend/internal/model"
)

func (s *gormStore) CreateUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *gormStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFoundOr(err, "user %d", id)
	}
	return &u, nil
}

func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error; err != nil {
		return nil, notFoundOr(err, "user %s", email)
	}
	return &u, nil
}

func (s *gormStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (s *gormStore) SaveUser(ctx context.Context, u *model.User) error {
	return s.db.WithContext(ctx).Save(u).Error
}

func (s *gormStore) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.LaundryStation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, id).Error
	})
}

// AssignOwner binds a LAUNDRY-role user to a station, replacing any prior
// binding. The role check belongs to the caller; the uniqueness rule (one
// owner per station) is enforced here.
func (s *gormStore) AssignOwner(ctx context.Context, stationID, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("station_id = ?", stationID).Delete(&model.LaundryStation{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.LaundryStation{StationID: stationID, UserID: userID}).Error
	})
}

func (s *gormStore) ReleaseOwner(ctx context.Context, stationID uint) error {
	return s.db.WithContext(ctx).Where("station_id = ?", stationID).Delete(&model.LaundryStation{}).Error
}

func (s *gormStore) GetOwner(ctx context.Context, stationID uint) (*model.User, error) {
	var rel model.LaundryStation
	if err := s.db.WithContext(ctx).First(&rel, "station_id = ?", stationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("station %d has no owner", stationID)
		}
		return nil, err
	}
	return s.GetUser(ctx, rel.UserID)
}
