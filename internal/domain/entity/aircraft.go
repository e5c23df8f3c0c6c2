package entity

import "time"

// Aircraft is a fleet reference row used to normalize the model column on
// flying rows ("T6" and "T-6A" both resolve to the canonical designation).
type Aircraft struct {
	ID          uint
	ModelCode   string
	Designation string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
