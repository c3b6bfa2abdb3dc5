package exercises

import "time"

// Exercise is one entry of the exercise library. Most columns are
// nullable in the store, hence the pointers.
type Exercise struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Category         string    `json:"category"`
	Categories       *string   `json:"categories"`
	Subcategory      *string   `json:"subcategory"`
	EquipmentType    *string   `json:"equipment_type"`
	MuscleMain       *string   `json:"muscle_main"`
	MuscleAdditional *string   `json:"muscle_additional"`
	ImageURL         *string   `json:"image_url"`
	WeightMin        *float64  `json:"weight_min"`
	WeightMax        *float64  `json:"weight_max"`
	WeightIncrement  *float64  `json:"weight_increment"`
	RepsMin          *int      `json:"reps_min"`
	RepsMax          *int      `json:"reps_max"`
	MeasureType      *string   `json:"measure_type"`
	CreatedAt        time.Time `json:"created_at"`

	// computed by the list query, not stored
	WorkoutCount int `json:"workout_count,omitempty"`
}

type AddExerciseRequest struct {
	ExerciseName     string   `json:"exercise_name"`
	Category         string   `json:"category"`
	Categories       []string `json:"categories,omitempty"`
	Subcategory      string   `json:"subcategory,omitempty"`
	EquipmentType    string   `json:"equipment_type,omitempty"`
	MuscleMain       string   `json:"muscle_main,omitempty"`
	MuscleAdditional string   `json:"muscle_additional,omitempty"`
	WeightMin        float64  `json:"weight_min,omitempty"`
	WeightMax        float64  `json:"weight_max,omitempty"`
	WeightIncrement  float64  `json:"weight_increment,omitempty"`
	RepsMin          int      `json:"reps_min,omitempty"`
	RepsMax          int      `json:"reps_max,omitempty"`
}

// UpdateExerciseRequest uses pointers so that only fields present in
// the request payload get written; absent fields keep their values.
type UpdateExerciseRequest struct {
	Name             *string   `json:"name,omitempty"`
	Category         *string   `json:"category,omitempty"`
	Categories       *[]string `json:"categories,omitempty"`
	Subcategory      *string   `json:"subcategory,omitempty"`
	EquipmentType    *string   `json:"equipment_type,omitempty"`
	MuscleMain       *string   `json:"muscle_main,omitempty"`
	MuscleAdditional *string   `json:"muscle_additional,omitempty"`
	ImageURL         *string   `json:"image_url,omitempty"`
	WeightMin        *float64  `json:"weight_min,omitempty"`
	WeightMax        *float64  `json:"weight_max,omitempty"`
	WeightIncrement  *float64  `json:"weight_increment,omitempty"`
	RepsMin          *int      `json:"reps_min,omitempty"`
	RepsMax          *int      `json:"reps_max,omitempty"`
}

// ListFilters are all optional and combined with AND.
type ListFilters struct {
	Category         string
	MuscleMain       string
	MuscleAdditional string
	EquipmentType    string
}

// DeleteResult reports the outcome of a delete attempt. Deletion is
// blocked while workout logs still reference the exercise, in which
// case WorkoutLogs carries the dependent count.
type DeleteResult struct {
	Deleted     bool
	WorkoutLogs int
}

type Muscles struct {
	Main       []string `json:"main"`
	Additional []string `json:"additional"`
}
