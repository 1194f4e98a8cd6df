package nutrition_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dkovacevic/fittrack/internal/auth"
	"github.com/dkovacevic/fittrack/internal/nutrition"
	"github.com/dkovacevic/fittrack/internal/store"
	"github.com/dkovacevic/fittrack/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCursor struct {
	day time.Time
}

func (c fixedCursor) Current() time.Time {
	return c.day
}

func newTestHandler(t *testing.T) (*nutrition.Handler, *store.Store) {
	t.Helper()
	s := store.New()
	cursor := fixedCursor{day: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)}
	return nutrition.NewHandler(nutrition.NewService(s), cursor, metrics.NewTestManager()), s
}

func authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(auth.SetUser(req.Context(), testEmail))
}

func TestHandler_HandleAdd_ExplicitCalories(t *testing.T) {
	h, s := newTestHandler(t)

	calories := 450
	addReqJson, err := json.Marshal(nutrition.AddEntryRequest{
		ItemName: "Homemade Lasagna",
		Grams:    300,
		Calories: &calories,
		Date:     "2025-05-10",
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, authedRequest(t, "POST", "/nutrition", addReqJson))
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry nutrition.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "Homemade Lasagna", entry.ItemName)
	assert.Equal(t, 450, entry.Calories)

	require.Len(t, s.GetNutrition(testEmail), 1)
}

func TestHandler_HandleAdd_CatalogCalories(t *testing.T) {
	h, s := newTestHandler(t)

	addReqJson, err := json.Marshal(nutrition.AddEntryRequest{
		ItemName: "Chicken Breast (cooked)",
		Grams:    150,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, authedRequest(t, "POST", "/nutrition", addReqJson))
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry nutrition.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, 248, entry.Calories)
	require.Len(t, s.GetNutrition(testEmail), 1)
}

func TestHandler_HandleAdd_UnknownFoodWithoutCalories(t *testing.T) {
	h, s := newTestHandler(t)

	addReqJson, err := json.Marshal(nutrition.AddEntryRequest{
		ItemName: "Mystery Stew",
		Grams:    300,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, authedRequest(t, "POST", "/nutrition", addReqJson))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.GetNutrition(testEmail))
}

func TestHandler_HandleAdd_NoAuth(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, httptest.NewRequest("POST", "/nutrition", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_HandleDailyCalories(t *testing.T) {
	h, s := newTestHandler(t)

	// cursor sits on 2025-05-10
	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	s.AddNutrition(testEmail, nutrition.NewEntry(day.Add(8*time.Hour), "Oatmeal (dry)", 80, 296))
	s.AddNutrition(testEmail, nutrition.NewEntry(day.AddDate(0, 0, 1), "Banana", 120, 107))

	rec := httptest.NewRecorder()
	h.HandleDailyCalories(rec, authedRequest(t, "GET", "/nutrition/daily", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var dailyResp nutrition.DailyCaloriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dailyResp))
	assert.Equal(t, "2025-05-10", dailyResp.Date)
	assert.Equal(t, 296, dailyResp.Calories)

	// explicit date wins over the cursor
	rec = httptest.NewRecorder()
	h.HandleDailyCalories(rec, authedRequest(t, "GET", "/nutrition/daily?date=2025-05-11", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dailyResp))
	assert.Equal(t, 107, dailyResp.Calories)
}

func TestHandler_HandleListForRange(t *testing.T) {
	h, s := newTestHandler(t)

	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	s.AddNutrition(testEmail, nutrition.NewEntry(day.Add(8*time.Hour), "Egg", 60, 86))
	s.AddNutrition(testEmail, nutrition.NewEntry(day.AddDate(0, 0, 3), "Apple", 150, 78))

	rec := httptest.NewRecorder()
	h.HandleListForRange(rec, authedRequest(t, "GET", "/nutrition/range?from=2025-05-10&to=2025-05-13", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp nutrition.ListEntriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 2, listResp.Total)

	// missing range params
	rec = httptest.NewRecorder()
	h.HandleListForRange(rec, authedRequest(t, "GET", "/nutrition/range", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_HandleListForDate(t *testing.T) {
	h, s := newTestHandler(t)

	day := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	s.AddNutrition(testEmail, nutrition.NewEntry(day.Add(8*time.Hour), "Egg", 60, 86))

	req := authedRequest(t, "GET", "/nutrition/day/2025-05-10", nil)
	req = mux.SetURLVars(req, map[string]string{"date": "2025-05-10"})

	rec := httptest.NewRecorder()
	h.HandleListForDate(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listResp nutrition.ListEntriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Equal(t, 1, listResp.Total)
}

func TestHandler_HandleFoodCalories(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleFoodCalories(rec, httptest.NewRequest("GET", "/nutrition/foods/calories?food=Apple&grams=50", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var caloriesResp nutrition.FoodCaloriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &caloriesResp))
	assert.Equal(t, "Apple", caloriesResp.Food)
	assert.Equal(t, 26, caloriesResp.Calories)

	rec = httptest.NewRecorder()
	h.HandleFoodCalories(rec, httptest.NewRequest("GET", "/nutrition/foods/calories?food=Pizza&grams=100", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.HandleFoodCalories(rec, httptest.NewRequest("GET", "/nutrition/foods/calories?food=Apple&grams=NaN", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
