package repository

import (
	"context"
	"strings"
	"time"

	"whiteboard-service/internal/domain/entity"
	"whiteboard-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormFleetRepository implements the FleetRepository interface
type GormFleetRepository struct {
	db *gorm.DB
}

// NewGormFleetRepository creates a new GORM fleet repository
func NewGormFleetRepository(db *gorm.DB) repository.FleetRepository {
	return &GormFleetRepository{
		db: db,
	}
}

// Fleetlist GORM model for database mapping
type Fleetlist struct {
	ID          uint   `gorm:"primaryKey"`
	ModelCode   string `gorm:"column:modelcode;unique"`
	Designation string `gorm:"column:designation"`
	DisplayName string `gorm:"column:display_name"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Fleetlist) TableName() string {
	return "m_fleet_list"
}

// GetByModelCode finds an aircraft by model code. Codes on the whiteboard
// are uppercased and stripped of dashes before lookup ("t-6a" -> "T6A").
func (r *GormFleetRepository) GetByModelCode(ctx context.Context, code string) (*entity.Aircraft, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(code), "-", ""))

	var aircraft Fleetlist
	result := r.db.WithContext(ctx).Where("modelcode = ?", normalized).First(&aircraft)
	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Aircraft{
		ID:          aircraft.ID,
		ModelCode:   aircraft.ModelCode,
		Designation: aircraft.Designation,
		DisplayName: aircraft.DisplayName,
		CreatedAt:   aircraft.CreatedAt,
		UpdatedAt:   aircraft.UpdatedAt,
	}, nil
}
