package plans

import "time"

// WorkoutPlan is the planned session for one date; plan_date is the
// natural key, at most one plan exists per date.
type WorkoutPlan struct {
	ID          int       `json:"id"`
	PlanDate    string    `json:"plan_date"`
	Theme       string    `json:"theme"`
	WorkoutType *string   `json:"workout_type"`
	Branch      *string   `json:"branch"`
	Description *string   `json:"description"`
	NoShow      int       `json:"no_show"`
	CreatedAt   time.Time `json:"created_at"`
}

// Station is one station of a plan. Stations have no life of their
// own: every save replaces the full set for the plan.
type Station struct {
	ID             int       `json:"id"`
	PlanID         int       `json:"plan_id"`
	StationNumber  int       `json:"station_number"`
	ExerciseName   string    `json:"exercise_name"`
	SetArrangement string    `json:"set_arrangement"`
	StationTime    string    `json:"station_time"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

type StationRequest struct {
	StationNumber  int    `json:"station_number"`
	ExerciseName   string `json:"exercise_name"`
	SetArrangement string `json:"set_arrangement,omitempty"`
	StationTime    string `json:"station_time,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

type SavePlanRequest struct {
	PlanDate    string           `json:"plan_date"`
	Theme       string           `json:"theme"`
	WorkoutType string           `json:"workout_type,omitempty"`
	Branch      string           `json:"branch,omitempty"`
	Description string           `json:"description,omitempty"`
	NoShow      bool             `json:"no_show,omitempty"`
	Stations    []StationRequest `json:"stations,omitempty"`
}

type PlanWithStations struct {
	WorkoutPlan
	Stations []Station `json:"stations"`
}
