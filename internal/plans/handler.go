package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/2beens/workouttracker/internal/telemetry/metrics"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=plans_mocks_test.go -package=plans_test

type plansRepo interface {
	Get(ctx context.Context, planDate string) (*WorkoutPlan, error)
	ListRecent(ctx context.Context, limit int) ([]WorkoutPlan, error)
	Save(ctx context.Context, req SavePlanRequest) (int, error)
	Delete(ctx context.Context, planDate string) (bool, error)
	Stations(ctx context.Context, planID int) ([]Station, error)
	SaveStations(ctx context.Context, planID int, stations []StationRequest) error
}

type ListResponse struct {
	Plans []PlanWithStations `json:"plans"`
}

type GetPlanResponse struct {
	Plan     *WorkoutPlan `json:"plan"`
	Stations []Station    `json:"stations"`
}

type SavePlanResponse struct {
	ID            int  `json:"id"`
	Success       bool `json:"success"`
	StationsCount int  `json:"stations_count"`
}

type Handler struct {
	repo    plansRepo
	metrics *metrics.Manager
}

func NewHandler(repo plansRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	plansRouter := r.PathPrefix("/api/plans").Subrouter()
	plansRouter.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS").Name("list-plans")
	plansRouter.HandleFunc("", handler.HandleSave).Methods("POST", "OPTIONS").Name("save-plan")
	plansRouter.HandleFunc("/{date}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-plan")
	plansRouter.HandleFunc("/{date}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-plan")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.list")
	defer span.End()

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			pkg.WriteJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	recentPlans, err := handler.repo.ListRecent(ctx, limit)
	if err != nil {
		log.Errorf("list recent plans error: %s", err)
		pkg.WriteJSONError(w, "failed to get plans", http.StatusInternalServerError)
		return
	}

	// stations are fetched concurrently per plan, results keep the
	// original (date descending) plan order
	plansWithStations := make([]PlanWithStations, len(recentPlans))
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var stationsErr error
	for i, plan := range recentPlans {
		wg.Add(1)
		go func(i int, plan WorkoutPlan) {
			defer wg.Done()
			stations, err := handler.repo.Stations(ctx, plan.ID)
			if err != nil {
				errMu.Lock()
				stationsErr = err
				errMu.Unlock()
				return
			}
			plansWithStations[i] = PlanWithStations{WorkoutPlan: plan, Stations: stations}
		}(i, plan)
	}
	wg.Wait()

	if stationsErr != nil {
		log.Errorf("get stations for plans error: %s", stationsErr)
		pkg.WriteJSONError(w, "failed to get plan stations", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{Plans: plansWithStations})
	if err != nil {
		log.Errorf("marshal plans error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.get")
	defer span.End()

	planDate := mux.Vars(r)["date"]
	if planDate == "" {
		pkg.WriteJSONError(w, "error, date empty", http.StatusBadRequest)
		return
	}

	plan, err := handler.repo.Get(ctx, planDate)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			// no plan for that date is a regular answer, not a 404
			pkg.WriteJSONResponseOK(w, `{"plan":null,"stations":[]}`)
			return
		}
		log.Errorf("failed to get plan [%s]: %s", planDate, err)
		pkg.WriteJSONError(w, "failed to get plan", http.StatusInternalServerError)
		return
	}

	stations, err := handler.repo.Stations(ctx, plan.ID)
	if err != nil {
		log.Errorf("failed to get stations for plan %d: %s", plan.ID, err)
		pkg.WriteJSONError(w, "failed to get plan stations", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(GetPlanResponse{Plan: plan, Stations: stations})
	if err != nil {
		log.Errorf("marshal plan error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.save")
	defer span.End()

	var req SavePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("save plan, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.PlanDate == "" || req.Theme == "" {
		pkg.WriteJSONError(w, "error, plan date or theme empty", http.StatusBadRequest)
		return
	}

	planID, err := handler.repo.Save(ctx, req)
	if err != nil {
		log.Errorf("failed to save plan [%s]: %s", req.PlanDate, err)
		pkg.WriteJSONError(w, "failed to save plan", http.StatusInternalServerError)
		return
	}

	if err := handler.repo.SaveStations(ctx, planID, req.Stations); err != nil {
		log.Errorf("failed to save stations for plan %d: %s", planID, err)
		pkg.WriteJSONError(w, "failed to save plan stations", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterPlanSaves.Inc()
	log.Debugf("plan saved: [%s]: %d", req.PlanDate, planID)

	stationsCount := 0
	for _, s := range req.Stations {
		if s.ExerciseName != "" {
			stationsCount++
		}
	}

	respJson, err := json.Marshal(SavePlanResponse{
		ID:            planID,
		Success:       true,
		StationsCount: stationsCount,
	})
	if err != nil {
		log.Errorf("failed to marshal save plan response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.delete")
	defer span.End()

	planDate := mux.Vars(r)["date"]
	if planDate == "" {
		pkg.WriteJSONError(w, "error, date empty", http.StatusBadRequest)
		return
	}

	deleted, err := handler.repo.Delete(ctx, planDate)
	if err != nil {
		log.Errorf("failed to delete plan [%s]: %s", planDate, err)
		pkg.WriteJSONError(w, "failed to delete plan", http.StatusInternalServerError)
		return
	}
	if !deleted {
		pkg.WriteJSONError(w, "plan not found", http.StatusNotFound)
		return
	}

	log.Debugf("plan [%s] deleted", planDate)
	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}
