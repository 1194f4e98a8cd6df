package nutrition

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

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type dayCursor interface {
	Current() time.Time
}

type AddEntryRequest struct {
	ItemName string `json:"itemName"`
	Grams    int    `json:"grams"`
	// Calories may be omitted for catalog foods, then it is computed
	// from the grams and the catalog's kcal/100g reference value.
	Calories *int   `json:"calories"`
	Date     string `json:"date,omitempty"`
}

type ListEntriesResponse struct {
	Entries []*Entry `json:"entries"`
	Total   int      `json:"total"`
}

type DailyCaloriesResponse struct {
	Date     string `json:"date"`
	Calories int    `json:"calories"`
}

type FoodCaloriesResponse struct {
	Food     string `json:"food"`
	Grams    int    `json:"grams"`
	Calories int    `json:"calories"`
}

type Handler struct {
	service        *Service
	cursor         dayCursor
	metricsManager *metrics.Manager
}

func NewHandler(service *Service, cursor dayCursor, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		cursor:         cursor,
		metricsManager: metricsManager,
	}
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.add")
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

	var addReq AddEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("new nutrition entry, unmarshal json params: %s", err)
		http.Error(w, "add nutrition entry failed", http.StatusBadRequest)
		return
	}

	calories := 0
	if addReq.Calories != nil {
		calories = *addReq.Calories
	} else {
		food, err := FindFood(addReq.ItemName)
		if err != nil {
			http.Error(w, "error, calories missing and food not in catalog", http.StatusBadRequest)
			return
		}
		calories = food.Calories(addReq.Grams)
	}

	var loggedAt time.Time
	if addReq.Date != "" {
		var err error
		loggedAt, err = time.Parse("2006-01-02", addReq.Date)
		if err != nil {
			http.Error(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	entry, err := h.service.LogNutrition(ctx, email, addReq.ItemName, addReq.Grams, calories, loggedAt)
	if err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add nutrition entry [%s]: %s", addReq.ItemName, err)
		http.Error(w, "error, failed to add nutrition entry", http.StatusInternalServerError)
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.CounterNutritionEntries.Inc()
	}

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal new nutrition entry: %s", err)
		http.Error(w, "error, failed to add nutrition entry", http.StatusInternalServerError)
		return
	}

	log.Debugf("new nutrition entry added: %s", entry.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (h *Handler) HandleDailyCalories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.dailyCalories")
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

	respJson, err := json.Marshal(DailyCaloriesResponse{
		Date:     date.Format("2006-01-02"),
		Calories: h.service.DailyCalories(ctx, email, date),
	})
	if err != nil {
		log.Errorf("marshal daily calories error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) HandleListForDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.listForDate")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	date, err := time.Parse("2006-01-02", mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, "invalid date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries := h.service.ListForDate(ctx, email, date)
	respJson, err := json.Marshal(ListEntriesResponse{
		Entries: entries,
		Total:   len(entries),
	})
	if err != nil {
		log.Errorf("marshal nutrition entries error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

// HandleListForRange serves the "last 7 days" style views: from and to
// are inclusive calendar dates.
func (h *Handler) HandleListForRange(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.listForRange")
	defer span.End()

	email, ok := auth.UserFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "invalid from date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "invalid to date, use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries := h.service.ListForRange(ctx, email, from, to)
	respJson, err := json.Marshal(ListEntriesResponse{
		Entries: entries,
		Total:   len(entries),
	})
	if err != nil {
		log.Errorf("marshal nutrition entries error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) HandleFoods(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.foods")
	defer span.End()

	foodsJson, err := json.Marshal(DefaultFoods())
	if err != nil {
		log.Errorf("marshal foods error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foodsJson, http.StatusOK)
}

func (h *Handler) HandleFoodCalories(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.foodCalories")
	defer span.End()

	foodName := r.URL.Query().Get("food")
	if foodName == "" {
		http.Error(w, "error, food empty", http.StatusBadRequest)
		return
	}
	grams, err := strconv.Atoi(r.URL.Query().Get("grams"))
	if err != nil || grams < 0 {
		http.Error(w, "error, invalid grams", http.StatusBadRequest)
		return
	}

	food, err := FindFood(foodName)
	if err != nil {
		http.Error(w, "food not found", http.StatusNotFound)
		return
	}

	respJson, err := json.Marshal(FoodCaloriesResponse{
		Food:     food.Name,
		Grams:    grams,
		Calories: food.Calories(grams),
	})
	if err != nil {
		log.Errorf("marshal food calories error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
