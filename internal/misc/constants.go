package misc

// PresetSet describes a fixed sets/reps scheme offered by the UI.
// A nil entry in PresetSets means a fully custom scheme.
type PresetSet struct {
	Sets     int  `json:"sets,omitempty"`
	Reps     int  `json:"reps,omitempty"`
	Variable bool `json:"variable,omitempty"`
}

var WorkoutCategories = []string{"Upper Body", "Lower Body", "Cardio HIIT", "Whole Body"}

var MuscleGroups = []string{
	"Chest", "Back", "Shoulders", "Biceps", "Triceps", "Core",
	"Quads", "Hamstrings", "Glutes", "Calves", "Forearms", "Traps", "Lats", "Full Body",
}

var EquipmentTypes = []string{"BB", "DB", "KB", "Machine", "Bodyweight", "Trap Bar"}

var WorkoutTags = []string{"with cadence"}

var WeightMethods = []string{"ES", "One", "Total"}

var PresetSets = map[string]*PresetSet{
	"Custom (same rep per set)":  nil,
	"Custom (variable reps)":     {Variable: true},
	"8/8/8 (3 sets of 8 reps)":   {Sets: 3, Reps: 8},
	"8/8/8/8 (4 sets of 8 reps)": {Sets: 4, Reps: 8},
	"6/6/6/6 (4 sets of 6 reps)": {Sets: 4, Reps: 6},
}

var WorkoutThemes = []string{
	"Strength (LB)", "Strength (UB)", "Pump (UB)", "Pump (LB)",
	"Power", "Strength Endurance", "Strength (Mixed)", "Hyper",
}

var WorkoutPlanTypes = []string{"Single sets", "Superset", "Custom"}

const defaultWeightIncrement = 2.5

var weightIncrements = map[string]float64{
	"BB":         2.5,
	"DB":         2,
	"KB":         4,
	"Machine":    5,
	"Bodyweight": 0,
	"Trap Bar":   5,
}

// WeightIncrementFor returns the weight step for the given equipment
// type, falling back to the default for unknown equipment.
func WeightIncrementFor(equipmentType string) float64 {
	if inc, ok := weightIncrements[equipmentType]; ok {
		return inc
	}
	return defaultWeightIncrement
}
