package workouts

import "time"

// WorkoutLog is one logged set of an exercise. The exercise display
// fields come from a join, they are not stored on the log row.
type WorkoutLog struct {
	ID          int       `json:"id"`
	ExerciseID  int       `json:"exercise_id"`
	WeightKg    float64   `json:"weight_kg"`
	Reps        int       `json:"reps"`
	Sets        int       `json:"sets"`
	WorkoutDate string    `json:"workout_date"`
	Notes       *string   `json:"notes"`
	Tags        *string   `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`

	// joined exercise fields
	ExerciseName  string  `json:"exercise_name,omitempty"`
	Category      string  `json:"category,omitempty"`
	Subcategory   *string `json:"subcategory,omitempty"`
	EquipmentType *string `json:"equipment_type,omitempty"`
	ImageURL      *string `json:"image_url,omitempty"`
}

type AddWorkoutLogRequest struct {
	ExerciseID   int      `json:"exercise_id,omitempty"`
	ExerciseName string   `json:"exercise_name,omitempty"`
	Category     string   `json:"category,omitempty"`
	WeightKg     float64  `json:"weight_kg"`
	Reps         int      `json:"reps"`
	Sets         int      `json:"sets"`
	WorkoutDate  string   `json:"workout_date"`
	Notes        string   `json:"notes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}

type UpdateWorkoutLogRequest struct {
	WeightKg    *float64  `json:"weight_kg,omitempty"`
	Reps        *int      `json:"reps,omitempty"`
	Sets        *int      `json:"sets,omitempty"`
	WorkoutDate *string   `json:"workout_date,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type ListFilters struct {
	ExerciseID  int
	Category    string
	WorkoutDate string
	Limit       int
}

// ProgressionEntry is one point of the per-exercise progression
// series, volume = weight * reps * sets computed at query time.
type ProgressionEntry struct {
	ID          int     `json:"id"`
	WorkoutDate string  `json:"workout_date"`
	WeightKg    float64 `json:"weight_kg"`
	Reps        int     `json:"reps"`
	Sets        int     `json:"sets"`
	Volume      float64 `json:"volume"`
	Notes       *string `json:"notes"`
}

// ExportRow is the bulk export shape: every log joined with the
// exercise metadata plus the computed volume.
type ExportRow struct {
	ID            int       `json:"id"`
	WorkoutDate   string    `json:"workout_date"`
	ExerciseName  string    `json:"exercise_name"`
	Category      string    `json:"category"`
	Subcategory   *string   `json:"subcategory"`
	EquipmentType *string   `json:"equipment_type"`
	WeightKg      float64   `json:"weight_kg"`
	Reps          int       `json:"reps"`
	Sets          int       `json:"sets"`
	Volume        float64   `json:"volume"`
	Notes         *string   `json:"notes"`
	Tags          *string   `json:"tags"`
	CreatedAt     time.Time `json:"created_at"`
}
