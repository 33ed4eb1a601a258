package models

import "time"

const DefaultWorkoutsLabel = "0/20 completed"

type Trail struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Duration    string    `json:"duration"`
	Intensity   string    `json:"intensity"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Workouts    string    `json:"workouts"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
