package users

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dkovacevic/fittrack/internal/auth"
	"github.com/dkovacevic/fittrack/internal/telemetry/tracing"
	"github.com/dkovacevic/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

type sessionCreator interface {
	Login(ctx context.Context, email string) (string, error)
}

type burnCalculator interface {
	DailyBurned(ctx context.Context, email string, date time.Time) int
}

type dayCursor interface {
	Current() time.Time
}

type SignInRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SignInResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type SetGoalRequest struct {
	DailyBurnTarget *int `json:"dailyBurnTarget"`
}

type GoalRemainingResponse struct {
	Date      string `json:"date"`
	Target    *int   `json:"target"`
	Burned    int    `json:"burned"`
	Remaining *int   `json:"remaining"`
}

type Handler struct {
	authService *AuthService
	goalService *GoalService
	store       userStore
	sessions    sessionCreator
	burns       burnCalculator
	cursor      dayCursor
}

func NewHandler(
	authService *AuthService,
	goalService *GoalService,
	store userStore,
	sessions sessionCreator,
	burns burnCalculator,
	cursor dayCursor,
) *Handler {
	return &Handler{
		authService: authService,
		goalService: goalService,
		store:       store,
		sessions:    sessions,
		burns:       burns,
		cursor:      cursor,
	}
}

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.signin")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var signInReq SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&signInReq); err != nil {
		log.Tracef("sign in, unmarshal json params: %s", err)
		http.Error(w, "sign in failed", http.StatusBadRequest)
		return
	}

	if signInReq.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}

	user := h.authService.SignInOrSignUp(ctx, signInReq.Email, signInReq.Name)

	token, err := h.sessions.Login(ctx, user.Email)
	if err != nil {
		log.Errorf("sign in %s, create session: %s", user.Email, err)
		http.Error(w, "sign in failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(SignInResponse{
		User:  user,
		Token: token,
	})
	if err != nil {
		log.Errorf("failed to marshal sign in response: %s", err)
		http.Error(w, "sign in failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (h *Handler) HandleSetGoal(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.setGoal")
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

	var goalReq SetGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&goalReq); err != nil {
		log.Tracef("set goal, unmarshal json params: %s", err)
		http.Error(w, "set goal failed", http.StatusBadRequest)
		return
	}

	user := h.goalService.SetDailyBurn(ctx, email, goalReq.DailyBurnTarget)

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("failed to marshal user: %s", err)
		http.Error(w, "set goal failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusOK)
}

func (h *Handler) HandleGoalRemaining(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.goalRemaining")
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

	user := h.store.GetOrCreateUser(email, "")
	burned := h.burns.DailyBurned(ctx, email, date)

	resp := GoalRemainingResponse{
		Date:   date.Format("2006-01-02"),
		Target: user.Goal.DailyBurnTarget,
		Burned: burned,
	}
	if user.Goal.DailyBurnTarget != nil {
		remaining := Remaining(*user.Goal.DailyBurnTarget, burned)
		resp.Remaining = &remaining
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal goal remaining response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
