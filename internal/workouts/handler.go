package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	List(ctx context.Context, filters ListFilters) ([]WorkoutLog, error)
	Get(ctx context.Context, id int) (*WorkoutLog, error)
	Add(ctx context.Context, req AddWorkoutLogRequest) (int, error)
	Update(ctx context.Context, id int, req UpdateWorkoutLogRequest) (bool, error)
	Delete(ctx context.Context, id int) (bool, error)
	Progression(ctx context.Context, exerciseID int) ([]ProgressionEntry, error)
	LatestForExercise(ctx context.Context, exerciseID int) (*WorkoutLog, error)
	ExportAll(ctx context.Context) ([]ExportRow, error)
}

type ListResponse struct {
	Workouts []WorkoutLog `json:"workouts"`
}

type AddWorkoutResponse struct {
	ID      int  `json:"id"`
	Success bool `json:"success"`
}

type ProgressionResponse struct {
	Progression []ProgressionEntry `json:"progression"`
}

type ExportResponse struct {
	Workouts []ExportRow `json:"workouts"`
}

type LatestResponse struct {
	Latest *WorkoutLog `json:"latest"`
}

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewHandler(repo workoutsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	workoutsRouter := r.PathPrefix("/api/workouts").Subrouter()
	workoutsRouter.HandleFunc("/export", handler.HandleExport).Methods("GET", "OPTIONS").Name("export-workouts")
	workoutsRouter.HandleFunc("/progression/{exerciseId}", handler.HandleProgression).Methods("GET", "OPTIONS").Name("workout-progression")
	workoutsRouter.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	workoutsRouter.HandleFunc("", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	workoutsRouter.HandleFunc("/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	workoutsRouter.HandleFunc("/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	workoutsRouter.HandleFunc("/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")

	// lives under the exercises prefix, but needs the workout log types
	r.HandleFunc("/api/exercises/{id}/latest", handler.HandleLatestForExercise).Methods("GET", "OPTIONS").Name("latest-workout")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	query := r.URL.Query()
	filters := ListFilters{
		Category:    query.Get("category"),
		WorkoutDate: query.Get("workout_date"),
	}

	if exerciseIDStr := query.Get("exercise_id"); exerciseIDStr != "" {
		exerciseID, err := strconv.Atoi(exerciseIDStr)
		if err != nil {
			pkg.WriteJSONError(w, "invalid exercise_id", http.StatusBadRequest)
			return
		}
		filters.ExerciseID = exerciseID
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			pkg.WriteJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filters.Limit = limit
	}

	workouts, err := handler.repo.List(ctx, filters)
	if err != nil {
		log.Errorf("list workouts error: %s", err)
		pkg.WriteJSONError(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{Workouts: workouts})
	if err != nil {
		log.Errorf("marshal workouts error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	workout, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			pkg.WriteJSONError(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get workout %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	var req AddWorkoutLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	id, err := handler.repo.Add(ctx, req)
	if err != nil {
		if errors.Is(err, ErrExerciseRequired) {
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add workout log: %s", err)
		pkg.WriteJSONError(w, "failed to add workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutLogs.Inc()
	log.Debugf("new workout log added: %d", id)

	respJson, err := json.Marshal(AddWorkoutResponse{ID: id, Success: true})
	if err != nil {
		log.Errorf("failed to marshal add workout response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateWorkoutLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update workout, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	updated, err := handler.repo.Update(ctx, id, req)
	if err != nil {
		log.Errorf("failed to update workout %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to update workout", http.StatusInternalServerError)
		return
	}
	if !updated {
		pkg.WriteJSONError(w, "workout not found or update failed", http.StatusNotFound)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := handler.repo.Delete(ctx, id)
	if err != nil {
		log.Errorf("failed to delete workout %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to delete workout", http.StatusInternalServerError)
		return
	}
	if !deleted {
		pkg.WriteJSONError(w, "workout not found", http.StatusNotFound)
		return
	}

	log.Debugf("workout log %d deleted", id)
	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) HandleProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.progression")
	defer span.End()

	exerciseID, ok := pathID(w, r, "exerciseId")
	if !ok {
		return
	}

	progression, err := handler.repo.Progression(ctx, exerciseID)
	if err != nil {
		log.Errorf("failed to get progression for exercise %d: %s", exerciseID, err)
		pkg.WriteJSONError(w, "failed to get progression", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ProgressionResponse{Progression: progression})
	if err != nil {
		log.Errorf("failed to marshal progression: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleLatestForExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.latest")
	defer span.End()

	exerciseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	latest, err := handler.repo.LatestForExercise(ctx, exerciseID)
	if err != nil {
		log.Errorf("failed to get latest workout for exercise %d: %s", exerciseID, err)
		pkg.WriteJSONError(w, "failed to get latest workout", http.StatusInternalServerError)
		return
	}

	// latest stays null when the exercise has no logs
	respJson, err := json.Marshal(LatestResponse{Latest: latest})
	if err != nil {
		log.Errorf("failed to marshal latest workout: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.export")
	defer span.End()

	exported, err := handler.repo.ExportAll(ctx)
	if err != nil {
		log.Errorf("failed to export workouts: %s", err)
		pkg.WriteJSONError(w, "failed to export workouts", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ExportResponse{Workouts: exported})
	if err != nil {
		log.Errorf("failed to marshal export: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	idStr := mux.Vars(r)[name]
	if idStr == "" {
		pkg.WriteJSONError(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		pkg.WriteJSONError(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
