package exercises

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/workouttracker/internal/db"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise with this name already exists")
)

const DefaultSearchLimit = 20

const exerciseColumns = `
	e.id, e.name, e.category, e.categories, e.subcategory, e.equipment_type,
	e.muscle_main, e.muscle_additional, e.image_url,
	e.weight_min, e.weight_max, e.weight_increment, e.reps_min, e.reps_max,
	e.measure_type, e.created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the exercise library, filtered and ranked: exercises
// with more logged workouts first, then by equipment priority
// (barbell, kettlebell, dumbbell, everything else), then by name.
func (r *Repo) List(ctx context.Context, filters ListFilters) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", filters.Category))
	span.SetAttributes(attribute.String("muscle_main", filters.MuscleMain))
	span.SetAttributes(attribute.String("equipment_type", filters.EquipmentType))

	var cond db.CondBuilder
	if filters.Category != "" {
		cond.Add2(`(e.category = $%d OR e.categories LIKE $%d)`, filters.Category, "%"+filters.Category+"%")
	}
	if filters.MuscleMain != "" {
		cond.Add(`e.muscle_main = $%d`, filters.MuscleMain)
	}
	if filters.MuscleAdditional != "" {
		cond.Add(`e.muscle_additional LIKE $%d`, "%"+filters.MuscleAdditional+"%")
	}
	if filters.EquipmentType != "" {
		cond.Add(`e.equipment_type = $%d`, filters.EquipmentType)
	}

	query := fmt.Sprintf(`
		SELECT %s, COALESCE(log_counts.workout_count, 0) AS workout_count
		FROM exercises e
		LEFT JOIN (
			SELECT exercise_id, COUNT(*) AS workout_count
			FROM workout_logs
			GROUP BY exercise_id
		) log_counts ON e.id = log_counts.exercise_id
		%s
		ORDER BY workout_count DESC,
			CASE e.equipment_type
				WHEN 'BB' THEN 1
				WHEN 'KB' THEN 2
				WHEN 'DB' THEN 3
				ELSE 4
			END ASC,
			e.name ASC;`,
		exerciseColumns, cond.Where(),
	)

	rows, err := r.db.Query(ctx, query, cond.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := scanExercise(rows, &e, &e.WorkoutCount); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if exercises == nil {
		exercises = make([]Exercise, 0)
	}

	span.SetAttributes(attribute.Int("found", len(exercises)))
	return exercises, nil
}

// Search does a case-insensitive substring match on the exercise name.
func (r *Repo) Search(ctx context.Context, query string, limit int) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", query))

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM exercises e WHERE e.name ILIKE $1 ORDER BY e.name LIMIT $2;`, exerciseColumns),
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2exercises(rows)
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM exercises e WHERE e.id = $1;`, exerciseColumns),
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, ErrExerciseNotFound
	}
	return &exercises[0], nil
}

func (r *Repo) GetByName(ctx context.Context, name string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.getByName")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM exercises e WHERE e.name = $1;`, exerciseColumns),
		name,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) == 0 {
		return nil, ErrExerciseNotFound
	}
	return &exercises[0], nil
}

// Add creates a new exercise. The name has to be unique; the check is
// done here before insert, a storage level race additionally surfaces
// as a unique violation.
func (r *Repo) Add(ctx context.Context, req AddExerciseRequest) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = r.GetByName(ctx, req.ExerciseName)
	if err == nil {
		return 0, fmt.Errorf("%w: %s", ErrExerciseExists, req.ExerciseName)
	}
	if !errors.Is(err, ErrExerciseNotFound) {
		return 0, err
	}

	categoryStr := req.Category
	if len(req.Categories) > 0 {
		categoryStr = pkg.JoinList(req.Categories)
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercises
			(name, category, subcategory, equipment_type, muscle_main, muscle_additional,
			 weight_min, weight_max, weight_increment, reps_min, reps_max, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id;`,
		req.ExerciseName, categoryStr,
		emptyToNil(req.Subcategory), emptyToNil(req.EquipmentType),
		emptyToNil(req.MuscleMain), emptyToNil(req.MuscleAdditional),
		positiveFloatOrNil(req.WeightMin), positiveFloatOrNil(req.WeightMax),
		positiveFloatOrNil(req.WeightIncrement),
		positiveIntOrNil(req.RepsMin), positiveIntOrNil(req.RepsMax),
		time.Now(),
	).Scan(&id)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return 0, fmt.Errorf("%w: %s", ErrExerciseExists, req.ExerciseName)
		}
		return 0, err
	}

	span.SetAttributes(attribute.Int("exercise.id", id))
	return id, nil
}

// Update changes only the fields present in the request. Returns false
// when the request carries no recognized fields, or no row matched.
func (r *Repo) Update(ctx context.Context, id int, req UpdateExerciseRequest) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var set db.CondBuilder
	if req.Name != nil {
		set.Add(`name = $%d`, *req.Name)
	}
	if req.Category != nil {
		set.Add(`category = $%d`, *req.Category)
	}
	if req.Categories != nil {
		set.Add(`categories = $%d`, emptyToNil(pkg.JoinList(*req.Categories)))
	}
	if req.Subcategory != nil {
		set.Add(`subcategory = $%d`, emptyToNil(*req.Subcategory))
	}
	if req.EquipmentType != nil {
		set.Add(`equipment_type = $%d`, emptyToNil(*req.EquipmentType))
	}
	if req.MuscleMain != nil {
		set.Add(`muscle_main = $%d`, emptyToNil(*req.MuscleMain))
	}
	if req.MuscleAdditional != nil {
		set.Add(`muscle_additional = $%d`, emptyToNil(*req.MuscleAdditional))
	}
	if req.ImageURL != nil {
		set.Add(`image_url = $%d`, *req.ImageURL)
	}
	if req.WeightMin != nil {
		set.Add(`weight_min = $%d`, positiveFloatOrNil(*req.WeightMin))
	}
	if req.WeightMax != nil {
		set.Add(`weight_max = $%d`, positiveFloatOrNil(*req.WeightMax))
	}
	if req.WeightIncrement != nil {
		set.Add(`weight_increment = $%d`, positiveFloatOrNil(*req.WeightIncrement))
	}
	if req.RepsMin != nil {
		set.Add(`reps_min = $%d`, positiveIntOrNil(*req.RepsMin))
	}
	if req.RepsMax != nil {
		set.Add(`reps_max = $%d`, positiveIntOrNil(*req.RepsMax))
	}

	if set.Empty() {
		return false, nil
	}

	idArg := set.NextArg(id)
	tag, err := r.db.Exec(
		ctx,
		fmt.Sprintf(`UPDATE exercises SET %s WHERE id = $%d;`, set.Set(), idArg),
		set.Args()...,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes an exercise, unless workout logs still reference it -
// that case is not an error but a conflict, reported via DeleteResult.
func (r *Repo) Delete(ctx context.Context, id int) (_ *DeleteResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var logsCount int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_logs WHERE exercise_id = $1;`,
		id,
	).Scan(&logsCount); err != nil {
		return nil, fmt.Errorf("count workout logs: %w", err)
	}

	if logsCount > 0 {
		return &DeleteResult{Deleted: false, WorkoutLogs: logsCount}, nil
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM exercises WHERE id = $1;`, id)
	if err != nil {
		// a log inserted between the count and the delete trips the FK
		if pkg.IsForeignKeyViolationError(err) {
			return &DeleteResult{Deleted: false, WorkoutLogs: 1}, nil
		}
		return nil, err
	}
	return &DeleteResult{Deleted: tag.RowsAffected() > 0}, nil
}

// GetOrCreate resolves an exercise id by name, creating a minimal
// exercise when none exists yet. Used when workout logs come in with
// an exercise name instead of an id.
func (r *Repo) GetOrCreate(ctx context.Context, name, category, subcategory, equipmentType string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.getOrCreate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	existing, err := r.GetByName(ctx, name)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrExerciseNotFound) {
		return 0, err
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercises (name, category, subcategory, equipment_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id;`,
		name, category, emptyToNil(subcategory), emptyToNil(equipmentType), time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("exercise.id", id))
	return id, nil
}

// UniqueMuscles returns the distinct primary muscles in use, and the
// distinct secondary muscles collected across all the comma separated
// muscle_additional values.
func (r *Repo) UniqueMuscles(ctx context.Context) (_ *Muscles, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.uniqueMuscles")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	mainRows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT muscle_main FROM exercises WHERE muscle_main IS NOT NULL ORDER BY muscle_main;`,
	)
	if err != nil {
		return nil, err
	}
	defer mainRows.Close()

	main := make([]string, 0)
	for mainRows.Next() {
		var m string
		if err := mainRows.Scan(&m); err != nil {
			return nil, err
		}
		main = append(main, m)
	}
	if err := mainRows.Err(); err != nil {
		return nil, err
	}

	additionalRows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT muscle_additional FROM exercises WHERE muscle_additional IS NOT NULL;`,
	)
	if err != nil {
		return nil, err
	}
	defer additionalRows.Close()

	var rawAdditional []string
	for additionalRows.Next() {
		var m string
		if err := additionalRows.Scan(&m); err != nil {
			return nil, err
		}
		rawAdditional = append(rawAdditional, m)
	}
	if err := additionalRows.Err(); err != nil {
		return nil, err
	}

	return &Muscles{
		Main:       main,
		Additional: pkg.SplitListUnique(rawAdditional...),
	}, nil
}

// UpdateImage stores a base64 data URL (or a plain URL) as the
// exercise image.
func (r *Repo) UpdateImage(ctx context.Context, id int, dataURL string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.updateImage")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercises SET image_url = $1 WHERE id = $2;`,
		dataURL, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	var exercises []Exercise
	for rows.Next() {
		var e Exercise
		if err := scanExercise(rows, &e); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if exercises == nil {
		exercises = make([]Exercise, 0)
	}
	return exercises, nil
}

// scanExercise scans the exerciseColumns set, plus any extra computed
// columns appended to the select list.
func scanExercise(rows pgx.Rows, e *Exercise, extra ...any) error {
	dest := []any{
		&e.ID, &e.Name, &e.Category, &e.Categories, &e.Subcategory, &e.EquipmentType,
		&e.MuscleMain, &e.MuscleAdditional, &e.ImageURL,
		&e.WeightMin, &e.WeightMax, &e.WeightIncrement, &e.RepsMin, &e.RepsMax,
		&e.MeasureType, &e.CreatedAt,
	}
	dest = append(dest, extra...)
	if err := rows.Scan(dest...); err != nil {
		return fmt.Errorf("rows scan: %w", err)
	}
	return nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// zero or negative bounds are treated as "not set", never stored as 0
func positiveFloatOrNil(v float64) any {
	if v > 0 {
		return v
	}
	return nil
}

func positiveIntOrNil(v int) any {
	if v > 0 {
		return v
	}
	return nil
}
