package workouts

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
	ErrWorkoutNotFound  = errors.New("workout log not found")
	ErrExerciseRequired = errors.New("either exercise_id or exercise_name is required")
)

const (
	DefaultHistoryLimit = 100

	// category given to exercises created implicitly through a log
	DefaultCategory = "Upper Body"
)

// exerciseResolver is the find-or-create hook into the exercise
// library, satisfied by the exercises repo.
type exerciseResolver interface {
	GetOrCreate(ctx context.Context, name, category, subcategory, equipmentType string) (int, error)
}

type Repo struct {
	db        *pgxpool.Pool
	exercises exerciseResolver
}

func NewRepo(db *pgxpool.Pool, exercises exerciseResolver) *Repo {
	return &Repo{
		db:        db,
		exercises: exercises,
	}
}

const workoutLogColumns = `
	wl.id, wl.exercise_id, wl.weight_kg, wl.reps, wl.sets,
	wl.workout_date, wl.notes, wl.tags, wl.created_at,
	e.name, e.category, e.subcategory, e.equipment_type, e.image_url`

func (r *Repo) List(ctx context.Context, filters ListFilters) (_ []WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise_id", filters.ExerciseID))
	span.SetAttributes(attribute.String("category", filters.Category))
	span.SetAttributes(attribute.String("workout_date", filters.WorkoutDate))

	var cond db.CondBuilder
	if filters.ExerciseID > 0 {
		cond.Add(`wl.exercise_id = $%d`, filters.ExerciseID)
	}
	if filters.Category != "" {
		cond.Add(`e.category = $%d`, filters.Category)
	}
	if filters.WorkoutDate != "" {
		cond.Add(`wl.workout_date = $%d`, filters.WorkoutDate)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limitArg := cond.NextArg(limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM workout_logs wl
		JOIN exercises e ON wl.exercise_id = e.id
		%s
		ORDER BY wl.workout_date DESC, wl.created_at DESC
		LIMIT $%d;`,
		workoutLogColumns, cond.Where(), limitArg,
	)

	rows, err := r.db.Query(ctx, query, cond.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	logs, err := rows2workoutLogs(rows)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("found", len(logs)))
	return logs, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`
			SELECT %s
			FROM workout_logs wl
			JOIN exercises e ON wl.exercise_id = e.id
			WHERE wl.id = $1;`, workoutLogColumns),
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs, err := rows2workoutLogs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) != 1 {
		return nil, ErrWorkoutNotFound
	}
	return &logs[0], nil
}

// Add creates a workout log. One of exercise id / exercise name has
// to be given; a name gets resolved through the exercise library,
// creating the exercise when unknown.
func (r *Repo) Add(ctx context.Context, req AddWorkoutLogRequest) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	exerciseID := req.ExerciseID
	if exerciseID == 0 && req.ExerciseName != "" {
		category := req.Category
		if category == "" {
			category = DefaultCategory
		}
		exerciseID, err = r.exercises.GetOrCreate(ctx, req.ExerciseName, category, "", "")
		if err != nil {
			return 0, fmt.Errorf("resolve exercise by name: %w", err)
		}
	}
	if exerciseID == 0 {
		return 0, ErrExerciseRequired
	}

	// tags stored as comma separated text, empty string when absent
	tagsStr := pkg.JoinList(req.Tags)

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_logs (exercise_id, weight_kg, reps, sets, workout_date, notes, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;`,
		exerciseID, req.WeightKg, req.Reps, req.Sets, req.WorkoutDate, req.Notes, tagsStr, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("workout.id", id))
	return id, nil
}

func (r *Repo) Update(ctx context.Context, id int, req UpdateWorkoutLogRequest) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var set db.CondBuilder
	if req.WeightKg != nil {
		set.Add(`weight_kg = $%d`, *req.WeightKg)
	}
	if req.Reps != nil {
		set.Add(`reps = $%d`, *req.Reps)
	}
	if req.Sets != nil {
		set.Add(`sets = $%d`, *req.Sets)
	}
	if req.WorkoutDate != nil {
		set.Add(`workout_date = $%d`, *req.WorkoutDate)
	}
	if req.Notes != nil {
		set.Add(`notes = $%d`, *req.Notes)
	}
	if req.Tags != nil {
		set.Add(`tags = $%d`, pkg.JoinList(*req.Tags))
	}

	if set.Empty() {
		return false, nil
	}

	idArg := set.NextArg(id)
	tag, err := r.db.Exec(
		ctx,
		fmt.Sprintf(`UPDATE workout_logs SET %s WHERE id = $%d;`, set.Set(), idArg),
		set.Args()...,
	)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_logs WHERE id = $1;`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Progression returns all logs of one exercise in ascending date
// order, each annotated with the computed volume.
func (r *Repo) Progression(ctx context.Context, exerciseID int) (_ []ProgressionEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.progression")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise_id", exerciseID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, workout_date, weight_kg, reps, sets,
			(weight_kg * reps * sets) AS volume, notes
		FROM workout_logs
		WHERE exercise_id = $1
		ORDER BY workout_date ASC;`,
		exerciseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ProgressionEntry, 0)
	for rows.Next() {
		var e ProgressionEntry
		if err := rows.Scan(&e.ID, &e.WorkoutDate, &e.WeightKg, &e.Reps, &e.Sets, &e.Volume, &e.Notes); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// LatestForExercise returns the most recent log of an exercise, or
// nil when the exercise has no logs yet.
func (r *Repo) LatestForExercise(ctx context.Context, exerciseID int) (_ *WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise_id", exerciseID))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`
			SELECT %s
			FROM workout_logs wl
			JOIN exercises e ON wl.exercise_id = e.id
			WHERE wl.exercise_id = $1
			ORDER BY wl.workout_date DESC, wl.created_at DESC
			LIMIT 1;`, workoutLogColumns),
		exerciseID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs, err := rows2workoutLogs(rows)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// ExportAll dumps every workout log with exercise metadata and
// volume, newest first, without a limit.
func (r *Repo) ExportAll(ctx context.Context) (_ []ExportRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exportAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT wl.id, wl.workout_date, e.name, e.category,
			e.subcategory, e.equipment_type, wl.weight_kg, wl.reps, wl.sets,
			(wl.weight_kg * wl.reps * wl.sets) AS volume, wl.notes, wl.tags,
			wl.created_at
		FROM workout_logs wl
		JOIN exercises e ON wl.exercise_id = e.id
		ORDER BY wl.workout_date DESC, wl.created_at DESC;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exportRows := make([]ExportRow, 0)
	for rows.Next() {
		var row ExportRow
		if err := rows.Scan(
			&row.ID, &row.WorkoutDate, &row.ExerciseName, &row.Category,
			&row.Subcategory, &row.EquipmentType, &row.WeightKg, &row.Reps, &row.Sets,
			&row.Volume, &row.Notes, &row.Tags, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		exportRows = append(exportRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("exported", len(exportRows)))
	return exportRows, nil
}

func rows2workoutLogs(rows pgx.Rows) ([]WorkoutLog, error) {
	var logs []WorkoutLog
	for rows.Next() {
		var wl WorkoutLog
		if err := rows.Scan(
			&wl.ID, &wl.ExerciseID, &wl.WeightKg, &wl.Reps, &wl.Sets,
			&wl.WorkoutDate, &wl.Notes, &wl.Tags, &wl.CreatedAt,
			&wl.ExerciseName, &wl.Category, &wl.Subcategory, &wl.EquipmentType, &wl.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		logs = append(logs, wl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if logs == nil {
		logs = make([]WorkoutLog, 0)
	}
	return logs, nil
}
