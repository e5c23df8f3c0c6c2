package repository

import (
	"context"

	"whiteboard-service/internal/domain/entity"
)

// FleetRepository resolves aircraft model codes from flying rows to the
// fleet reference table.
type FleetRepository interface {
	GetByModelCode(ctx context.Context, code string) (*entity.Aircraft, error)
}
