package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/workouttracker/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrPlanNotFound = errors.New("workout plan not found")

const DefaultRecentLimit = 10

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const planColumns = `id, plan_date, theme, workout_type, branch, description, no_show, created_at`

func (r *Repo) Get(ctx context.Context, planDate string) (_ *WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("plan_date", planDate))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM workout_plans WHERE plan_date = $1;`, planColumns),
		planDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plansFound, err := rows2plans(rows)
	if err != nil {
		return nil, err
	}
	if len(plansFound) == 0 {
		return nil, ErrPlanNotFound
	}
	return &plansFound[0], nil
}

func (r *Repo) ListRecent(ctx context.Context, limit int) (_ []WorkoutPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.listRecent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM workout_plans ORDER BY plan_date DESC LIMIT $1;`, planColumns),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return rows2plans(rows)
}

// Save upserts a plan keyed on its date: an existing plan for the
// date gets its mutable fields updated in place and keeps its id,
// otherwise a new row is inserted.
func (r *Repo) Save(ctx context.Context, req SavePlanRequest) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("plan_date", req.PlanDate))

	noShow := 0
	if req.NoShow {
		noShow = 1
	}

	existing, err := r.Get(ctx, req.PlanDate)
	if err != nil && !errors.Is(err, ErrPlanNotFound) {
		return 0, err
	}

	if existing != nil {
		_, err = r.db.Exec(
			ctx,
			`UPDATE workout_plans
			SET theme = $1, workout_type = $2, branch = $3, description = $4, no_show = $5
			WHERE plan_date = $6;`,
			req.Theme, emptyToNil(req.WorkoutType), emptyToNil(req.Branch),
			emptyToNil(req.Description), noShow, req.PlanDate,
		)
		if err != nil {
			return 0, err
		}
		return existing.ID, nil
	}

	var id int
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workout_plans (plan_date, theme, workout_type, branch, description, no_show, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id;`,
		req.PlanDate, req.Theme, emptyToNil(req.WorkoutType), emptyToNil(req.Branch),
		emptyToNil(req.Description), noShow, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("plan.id", id))
	return id, nil
}

// Delete removes the plan for a date together with its stations. The
// storage engine has no cascade here, both deletes run in one
// transaction.
func (r *Repo) Delete(ctx context.Context, planDate string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("plan_date", planDate))

	plan, err := r.Get(ctx, planDate)
	if errors.Is(err, ErrPlanNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM workout_plan_stations WHERE plan_id = $1;`, plan.ID); err != nil {
		return false, err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM workout_plans WHERE id = $1;`, plan.ID); err != nil {
		return false, err
	}

	return true, nil
}

func (r *Repo) Stations(ctx context.Context, planID int) (_ []Station, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.stations")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("plan_id", planID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, plan_id, station_number, exercise_name, set_arrangement, station_time, notes, created_at
		FROM workout_plan_stations
		WHERE plan_id = $1
		ORDER BY station_number;`,
		planID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]Station, 0)
	for rows.Next() {
		var s Station
		if err := rows.Scan(
			&s.ID, &s.PlanID, &s.StationNumber, &s.ExerciseName,
			&s.SetArrangement, &s.StationTime, &s.Notes, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stations, nil
}

// SaveStations replaces the full station set of a plan: delete all,
// then insert the supplied list in order. Entries with a blank
// exercise name are dropped. Runs in a single transaction so a crash
// cannot leave the plan without its stations.
func (r *Repo) SaveStations(ctx context.Context, planID int, stations []StationRequest) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.saveStations")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("plan_id", planID))
	span.SetAttributes(attribute.Int("stations", len(stations)))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM workout_plan_stations WHERE plan_id = $1;`, planID); err != nil {
		return err
	}

	for _, station := range stations {
		if strings.TrimSpace(station.ExerciseName) == "" {
			continue
		}
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO workout_plan_stations
				(plan_id, station_number, exercise_name, set_arrangement, station_time, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			planID, station.StationNumber, station.ExerciseName,
			station.SetArrangement, station.StationTime, station.Notes, time.Now(),
		); err != nil {
			return err
		}
	}

	return nil
}

func rows2plans(rows pgx.Rows) ([]WorkoutPlan, error) {
	var plansFound []WorkoutPlan
	for rows.Next() {
		var p WorkoutPlan
		if err := rows.Scan(
			&p.ID, &p.PlanDate, &p.Theme, &p.WorkoutType, &p.Branch,
			&p.Description, &p.NoShow, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		plansFound = append(plansFound, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if plansFound == nil {
		plansFound = make([]WorkoutPlan, 0)
	}
	return plansFound, nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
