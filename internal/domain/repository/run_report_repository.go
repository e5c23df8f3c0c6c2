package repository

import (
	"context"

	"whiteboard-service/internal/domain/entity"
)

// RunReportRepository keeps the history of batch runs.
type RunReportRepository interface {
	Save(ctx context.Context, report *entity.RunReport) error
	Latest(ctx context.Context, tier string) (*entity.RunReport, error)
	Recent(ctx context.Context, limit int64) ([]entity.RunReport, error)
}
