package workouts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dkovacevic/fittrack/internal/auth"
	"github.com/dkovacevic/fittrack/internal/telemetry/metrics"
	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"
	"github.com/dkovacevic/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type dayCursor interface {
	Current() time.Time
}

type AddWorkoutResponse struct {
	Workout   *Workout `json:"workout"`
	Persisted bool     `json:"persisted"`
}

type ListResponse struct {
	Workouts []*Workout `json:"workouts"`
	Total    int        `json:"total"`
}

type DistinctDaysResponse struct {
	Days []string `json:"days"`
}

type DailyBurnedResponse struct {
	Date   string `json:"date"`
	Burned int    `json:"burned"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type UpdateNotesResponse struct {
	UpdatedID string `json:"updatedId"`
	Persisted bool   `json:"persisted"`
}

type Handler struct {
	service        *Service
	analyzer       *Analyzer
	cursor         dayCursor
	metricsManager *metrics.Manager
}

func NewHandler(
	service *Service,
	analyzer *Analyzer,
	cursor dayCursor,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		service:        service,
		analyzer:       analyzer,
		cursor:         cursor,
		metricsManager: metricsManager,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var workout Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		log.Tracef("new workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}

	if workout.ID == "" {
		workout.ID = uuid.NewString()
	}
	if workout.StartedAt.IsZero() {
		workout.StartedAt = time.Now()
	}

	persisted := true
	if err := h.service.LogWorkout(ctx, email, &workout); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		// the workout is logged, only the write-through failed
		log.Warnf("workout %s logged without persistence: %s", workout.ID, err)
		persisted = false
	}

	if h.metricsManager != nil {
		h.metricsManager.CounterWorkouts.Inc()
	}

	respJson, err := json.Marshal(AddWorkoutResponse{
		Workout:   &workout,
		Persisted: persisted,
	})
	if err != nil {
		log.Errorf("failed to marshal new workout: %s", err)
		http.Error(w, "error, failed to add new workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("new workout added: %s", workout.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	workouts := h.service.ListWorkouts(ctx, email)
	respJson, err := json.Marshal(ListResponse{
		Workouts: workouts,
		Total:    len(workouts),
	})
	if err != nil {
		log.Errorf("marshal workouts error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) HandleDayDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.dayDetail")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date, err := dateVar(r)
	if err != nil {
		http.Error(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	dayWorkouts := h.analyzer.DayDetail(ctx, email, date)
	respJson, err := json.Marshal(ListResponse{
		Workouts: dayWorkouts,
		Total:    len(dayWorkouts),
	})
	if err != nil {
		log.Errorf("marshal day detail error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) HandleWorkoutAtRow(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.workoutAtRow")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date, err := dateVar(r)
	if err != nil {
		http.Error(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	rowStr := mux.Vars(r)["row"]
	row, err := strconv.Atoi(rowStr)
	if err != nil {
		http.Error(w, "error, row NaN", http.StatusBadRequest)
		return
	}

	workout, err := h.analyzer.WorkoutAtRow(ctx, email, date, row)
	if err != nil {
		log.Debugf("workout at row %d on %s not found", row, date.Format("2006-01-02"))
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	}

	workoutJson, err := json.Marshal(workout)
	if err != nil {
		log.Errorf("failed to marshal workout: %s", err)
		http.Error(w, "failed to marshal workout", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutJson, http.StatusOK)
}

func (h *Handler) HandleDistinctDays(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.distinctDays")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	days := h.analyzer.DistinctDays(ctx, email)
	resp := DistinctDaysResponse{
		Days: make([]string, 0, len(days)),
	}
	for _, day := range days {
		resp.Days = append(resp.Days, day.Format("2006-01-02"))
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal distinct days error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) HandleDailyBurned(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.dailyBurned")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date := h.cursor.Current()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		var err error
		date, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			http.Error(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	respJson, err := json.Marshal(DailyBurnedResponse{
		Date:   date.Format("2006-01-02"),
		Burned: h.analyzer.DailyBurned(ctx, email, date),
	})
	if err != nil {
		log.Errorf("marshal daily burned error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) HandleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateNotes")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var notesReq UpdateNotesRequest
	if err := json.NewDecoder(r.Body).Decode(&notesReq); err != nil {
		log.Tracef("update notes, unmarshal json params: %s", err)
		http.Error(w, "update notes failed", http.StatusBadRequest)
		return
	}

	persisted := true
	if err := h.service.UpdateNotes(ctx, email, id, notesReq.Notes); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		// notes are updated in memory, only the write-through failed
		log.Warnf("notes of workout %s updated without persistence: %s", id, err)
		persisted = false
	}

	respJson, err := json.Marshal(UpdateNotesResponse{
		UpdatedID: id,
		Persisted: persisted,
	})
	if err != nil {
		log.Errorf("failed to marshal update notes response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(respJson))
}

func dateVar(r *http.Request) (time.Time, error) {
	return time.Parse("2006-01-02", mux.Vars(r)["date"])
}
