package entity

// PersonType distinguishes students from staff on the roster.
type PersonType string

const (
	TypeStudent PersonType = "student"
	TypeStaff   PersonType = "staff"
)

// Person is a roster entry. The name is the unique key within a category;
// people are derived fresh on every roster pass and never persisted on
// their own.
type Person struct {
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Type     PersonType `json:"type"`
}
