package models

type Stage struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// Status is only valid under its parent stage.
type Status struct {
	ID        int64  `json:"id" db:"id"`
	StageID   int64  `json:"stage_id" db:"stage_id"`
	Name      string `json:"name" db:"name"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}
