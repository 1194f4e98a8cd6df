package daycursor

import (
	"encoding/json"
	"net/http"

	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"
	"github.com/dkovacevic/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

type DayResponse struct {
	Day string `json:"day"`
}

type Handler struct {
	cursor *Cursor
}

func NewHandler(cursor *Cursor) *Handler {
	return &Handler{
		cursor: cursor,
	}
}

func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.daycursor.current")
	defer span.End()

	h.writeDay(w, h.cursor.Current().Format("2006-01-02"))
}

// HandleNext advances the cursor one day. Entries logged under the
// previous date stay queryable with that date.
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.daycursor.next")
	defer span.End()

	h.writeDay(w, h.cursor.Advance().Format("2006-01-02"))
}

func (h *Handler) writeDay(w http.ResponseWriter, day string) {
	respJson, err := json.Marshal(DayResponse{Day: day})
	if err != nil {
		log.Errorf("marshal day error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
