package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=exercises_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	List(ctx context.Context, filters ListFilters) ([]Exercise, error)
	Search(ctx context.Context, query string, limit int) ([]Exercise, error)
	Get(ctx context.Context, id int) (*Exercise, error)
	Add(ctx context.Context, req AddExerciseRequest) (int, error)
	Update(ctx context.Context, id int, req UpdateExerciseRequest) (bool, error)
	Delete(ctx context.Context, id int) (*DeleteResult, error)
	UniqueMuscles(ctx context.Context) (*Muscles, error)
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
}

type AddExerciseResponse struct {
	ID      int  `json:"id"`
	Success bool `json:"success"`
}

type Handler struct {
	repo    exercisesRepo
	metrics *metrics.Manager
}

func NewHandler(repo exercisesRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	exercisesRouter := r.PathPrefix("/api/exercises").Subrouter()
	// fixed paths before the {id} catch
	exercisesRouter.HandleFunc("/search", handler.HandleSearch).Methods("GET", "OPTIONS").Name("search-exercises")
	exercisesRouter.HandleFunc("/muscles", handler.HandleMuscles).Methods("GET", "OPTIONS").Name("unique-muscles")
	exercisesRouter.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	exercisesRouter.HandleFunc("", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	exercisesRouter.HandleFunc("/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	query := r.URL.Query()
	filters := ListFilters{
		Category:         query.Get("category"),
		MuscleMain:       query.Get("muscle_main"),
		MuscleAdditional: query.Get("muscle_additional"),
		EquipmentType:    query.Get("equipment_type"),
	}

	exercises, err := handler.repo.List(ctx, filters)
	if err != nil {
		log.Errorf("list exercises error: %s", err)
		pkg.WriteJSONError(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{Exercises: exercises})
	if err != nil {
		log.Errorf("marshal exercises error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.search")
	defer span.End()

	query := r.URL.Query().Get("q")
	if query == "" {
		pkg.WriteJSONError(w, `query parameter "q" is required`, http.StatusBadRequest)
		return
	}

	exercises, err := handler.repo.Search(ctx, query, DefaultSearchLimit)
	if err != nil {
		log.Errorf("search exercises [%s] error: %s", query, err)
		pkg.WriteJSONError(w, "failed to search exercises", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{Exercises: exercises})
	if err != nil {
		log.Errorf("marshal exercises error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleMuscles(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.muscles")
	defer span.End()

	muscles, err := handler.repo.UniqueMuscles(ctx)
	if err != nil {
		log.Errorf("get unique muscles error: %s", err)
		pkg.WriteJSONError(w, "failed to get muscles", http.StatusInternalServerError)
		return
	}

	musclesJson, err := json.Marshal(muscles)
	if err != nil {
		log.Errorf("marshal muscles error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, musclesJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	id, ok := exerciseID(w, r)
	if !ok {
		return
	}

	exercise, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get exercise %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to get exercise", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(exercise)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJson, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	var req AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.ExerciseName == "" {
		pkg.WriteJSONError(w, "error, exercise name empty", http.StatusBadRequest)
		return
	}

	id, err := handler.repo.Add(ctx, req)
	if err != nil {
		if errors.Is(err, ErrExerciseExists) {
			pkg.WriteJSONError(w, fmt.Sprintf("exercise '%s' already exists", req.ExerciseName), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add exercise [%s]: %s", req.ExerciseName, err)
		pkg.WriteJSONError(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterExercises.Inc()
	log.Debugf("new exercise added: [%s]: %d", req.ExerciseName, id)

	respJson, err := json.Marshal(AddExerciseResponse{ID: id, Success: true})
	if err != nil {
		log.Errorf("failed to marshal add exercise response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.update")
	defer span.End()

	id, ok := exerciseID(w, r)
	if !ok {
		return
	}

	var req UpdateExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	updated, err := handler.repo.Update(ctx, id, req)
	if err != nil {
		log.Errorf("failed to update exercise %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to update exercise", http.StatusInternalServerError)
		return
	}
	if !updated {
		pkg.WriteJSONError(w, "exercise not found or update failed", http.StatusNotFound)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	id, ok := exerciseID(w, r)
	if !ok {
		return
	}

	result, err := handler.repo.Delete(ctx, id)
	if err != nil {
		log.Errorf("failed to delete exercise %d: %s", id, err)
		pkg.WriteJSONError(w, "failed to delete exercise", http.StatusInternalServerError)
		return
	}

	if result.WorkoutLogs > 0 {
		pkg.WriteJSONError(
			w,
			fmt.Sprintf("cannot delete: exercise has %d workout log(s), delete the logs first", result.WorkoutLogs),
			http.StatusBadRequest,
		)
		return
	}
	if !result.Deleted {
		pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
		return
	}

	log.Debugf("exercise %d deleted", id)
	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

// exerciseID reads and validates the {id} path variable, writing the
// error response itself when the id is missing or not a number.
func exerciseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		pkg.WriteJSONError(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
