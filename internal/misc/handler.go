package misc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/2beens/workouttracker/internal/exercises"
	"github.com/2beens/workouttracker/internal/telemetry/tracing"
	"github.com/2beens/workouttracker/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=misc_mocks_test.go -package=misc_test

// MaxImageSize caps the accepted base64 data URL length, which is
// roughly 1.5MB of actual image data.
const MaxImageSize = 2 * 1024 * 1024

type imageStore interface {
	UpdateImage(ctx context.Context, id int, dataURL string) (bool, error)
}

type UploadImageRequest struct {
	Data       string `json:"data"`
	ExerciseID int    `json:"exercise_id"`
}

type Handler struct {
	images      imageStore
	versionInfo string
}

func NewHandler(images imageStore, versionInfo string) *Handler {
	return &Handler{
		images:      images,
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/api/constants", handler.HandleConstants).Methods("GET", "OPTIONS").Name("constants")
	mainRouter.HandleFunc("/api/weight-options/{equipmentType}", handler.HandleWeightOptions).Methods("GET", "OPTIONS").Name("weight-options")
	mainRouter.HandleFunc("/api/upload-image", handler.HandleUploadImage).Methods("POST", "OPTIONS").Name("upload-image")
	mainRouter.HandleFunc("/api/health", handler.HandleHealth).Methods("GET").Name("health")
}

func (handler *Handler) HandleConstants(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"categories":        WorkoutCategories,
		"muscle_groups":     MuscleGroups,
		"equipment_types":   EquipmentTypes,
		"preset_sets":       PresetSets,
		"workout_tags":      WorkoutTags,
		"workout_themes":    WorkoutThemes,
		"workout_types":     WorkoutPlanTypes,
		"weight_methods":    WeightMethods,
		"weight_increments": weightIncrements,
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal constants error: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleWeightOptions(w http.ResponseWriter, r *http.Request) {
	equipmentType := mux.Vars(r)["equipmentType"]
	increment := WeightIncrementFor(equipmentType)
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"increment":%g}`, increment))
}

func (handler *Handler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.misc.uploadImage")
	defer span.End()

	var req UploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("upload image, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Data == "" || req.ExerciseID == 0 {
		pkg.WriteJSONError(w, "missing data or exercise_id", http.StatusBadRequest)
		return
	}
	if len(req.Data) > MaxImageSize {
		pkg.WriteJSONError(w, "image too large, max 1.5MB", http.StatusBadRequest)
		return
	}

	updated, err := handler.images.UpdateImage(ctx, req.ExerciseID, req.Data)
	if err != nil {
		if errors.Is(err, exercises.ErrExerciseNotFound) {
			pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to store image for exercise %d: %s", req.ExerciseID, err)
		pkg.WriteJSONError(w, "failed to store image", http.StatusInternalServerError)
		return
	}
	if !updated {
		pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
		return
	}

	log.Debugf("image stored for exercise %d, size %d", req.ExerciseID, len(req.Data))
	pkg.WriteJSONResponseOK(w, `{"success":true}`)
}

func (handler *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(
		`{"status":"healthy","version":"%s","platform":"go"}`,
		handler.versionInfo,
	))
}
