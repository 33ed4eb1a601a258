package models

// Program is a catalog entry owned by the client-side program catalog.
type Program struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
	Intensity   string `json:"intensity"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Enrollment is a Program joined with one user's progress.
type Enrollment struct {
	Program
	Progress  int    `json:"progress"`
	StartDate string `json:"startDate"`
	Workouts  string `json:"workouts"`
}
