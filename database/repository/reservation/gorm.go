package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"domostay/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no reservation row matches.
var ErrNotFound = errors.New("reservation not found")

// GormReservationRepo implements ReservationRepository using GORM.
type GormReservationRepo struct {
	DB *gorm.DB
}

func NewGormReservationRepo(db *gorm.DB) *GormReservationRepo {
	return &GormReservationRepo{DB: db}
}

func (repo *GormReservationRepo) Create(ctx context.Context, r *models.Reservation) error {
	return repo.DB.WithContext(ctx).Create(r).Error
}

func (repo *GormReservationRepo) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var r models.Reservation
	err := repo.DB.WithContext(ctx).First(&r, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	return &r, nil
}

func (repo *GormReservationRepo) Save(ctx context.Context, r *models.Reservation) error {
	return repo.DB.WithContext(ctx).Save(r).Error
}

func (repo *GormReservationRepo) Delete(ctx context.Context, id uint) error {
	res := repo.DB.WithContext(ctx).Delete(&models.Reservation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *GormReservationRepo) ListAll(ctx context.Context) ([]models.Reservation, error) {
	var out []models.Reservation
	err := repo.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (repo *GormReservationRepo) Intersecting(ctx context.Context, unitID string, start, end time.Time) ([]models.Reservation, error) {
	q := repo.DB.WithContext(ctx).Where("entry_date < ? AND exit_date > ?", end, start)
	if unitID != "" {
		q = q.Where("unit_id = ?", unitID)
	}
	var out []models.Reservation
	err := q.Order("entry_date").Find(&out).Error
	return out, err
}

func (repo *GormReservationRepo) Stats(ctx context.Context) (*models.ReservationStats, error) {
	db := repo.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&models.Reservation{}).Count(&total).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	var currentMonth int64
	if err := db.Model(&models.Reservation{}).
		Where("created_at >= ?", monthStart).
		Count(&currentMonth).Error; err != nil {
		return nil, err
	}

	type unitCount struct {
		UnitID string
		Count  int64
	}
	var rows []unitCount
	if err := db.Model(&models.Reservation{}).
		Select("unit_id, COUNT(id) AS count").
		Group("unit_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	perUnit := make(map[string]int64, len(rows))
	for _, row := range rows {
		perUnit[row.UnitID] = row.Count
	}

	return &models.ReservationStats{
		Total:        total,
		CurrentMonth: currentMonth,
		PerUnit:      perUnit,
	}, nil
}

func (repo *GormReservationRepo) InTx(ctx context.Context, fn func(txRepo ReservationRepository) error) error {
	return repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormReservationRepo{DB: tx})
	})
}
