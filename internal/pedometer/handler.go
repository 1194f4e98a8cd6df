package pedometer

import (
	"encoding/json"
	"net/http"

	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"
	"github.com/dkovacevic/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

type StepsResponse struct {
	Steps int `json:"steps"`
}

type SetStepsRequest struct {
	Steps int `json:"steps"`
}

type Handler struct {
	pedometer *Pedometer
}

func NewHandler(pedometer *Pedometer) *Handler {
	return &Handler{
		pedometer: pedometer,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.pedometer.get")
	defer span.End()

	h.writeSteps(w, h.pedometer.Steps(), http.StatusOK)
}

// HandleStep registers one step event.
func (h *Handler) HandleStep(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.pedometer.step")
	defer span.End()

	h.writeSteps(w, h.pedometer.StepTaken(), http.StatusCreated)
}

func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.pedometer.set")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var setReq SetStepsRequest
	if err := json.NewDecoder(r.Body).Decode(&setReq); err != nil {
		log.Tracef("set steps, unmarshal json params: %s", err)
		http.Error(w, "set steps failed", http.StatusBadRequest)
		return
	}
	if setReq.Steps < 0 {
		http.Error(w, "error, negative steps", http.StatusBadRequest)
		return
	}

	h.pedometer.Set(setReq.Steps)
	h.writeSteps(w, h.pedometer.Steps(), http.StatusOK)
}

func (h *Handler) writeSteps(w http.ResponseWriter, steps, statusCode int) {
	respJson, err := json.Marshal(StepsResponse{Steps: steps})
	if err != nil {
		log.Errorf("marshal steps error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, statusCode)
}
