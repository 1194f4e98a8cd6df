package internal

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dkovacevic/fittrack/internal/auth"
	"github.com/dkovacevic/fittrack/internal/config"
	"github.com/dkovacevic/fittrack/internal/daycursor"
	"github.com/dkovacevic/fittrack/internal/middleware"
	"github.com/dkovacevic/fittrack/internal/nutrition"
	"github.com/dkovacevic/fittrack/internal/pedometer"
	"github.com/dkovacevic/fittrack/internal/persistence"
	"github.com/dkovacevic/fittrack/internal/store"
	"github.com/dkovacevic/fittrack/internal/telemetry/metrics"
	"github.com/dkovacevic/fittrack/internal/users"
	"github.com/dkovacevic/fittrack/internal/workouts"
	"github.com/dkovacevic/fittrack/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dataStore   *store.Store
	fileAdapter *persistence.FileAdapter
	cursor      *daycursor.Cursor
	pedometer   *pedometer.Pedometer

	redisClient  *redis.Client
	authService  *auth.Service
	loginChecker *auth.LoginChecker

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
}

type NewServerParams struct {
	Config        *config.Config
	RedisPassword string
	VersionInfo   string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	promRegistry := metrics.SetupPrometheus()
	metricsManager := metrics.NewManager("fittrack", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewService(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			authService.ScanAndClean(ctx)
		}
	}()

	dataStore := store.New()
	fileAdapter := persistence.NewFileAdapter(params.Config.WorkoutsFilePath)

	// fail-open: a missing or broken workouts file starts us empty
	loadedWorkouts := fileAdapter.Load()
	dataStore.SeedWorkouts(loadedWorkouts)
	log.Debugf("loaded workouts for %d users from %s", len(loadedWorkouts), params.Config.WorkoutsFilePath)

	return &Server{
		config:      params.Config,
		versionInfo: params.VersionInfo,

		dataStore:   dataStore,
		fileAdapter: fileAdapter,
		cursor:      daycursor.New(time.Now()),
		pedometer:   pedometer.New(metricsManager),

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(rdb),

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()

	workoutsService := workouts.NewService(s.dataStore, s.fileAdapter)
	workoutsAnalyzer := workouts.NewAnalyzer(s.dataStore)

	usersHandler := users.NewHandler(
		users.NewAuthService(s.dataStore),
		users.NewGoalService(s.dataStore),
		s.dataStore,
		s.authService,
		workoutsAnalyzer,
		s.cursor,
	)
	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	r.Handle("/auth/signin",
		middleware.RateLimit(
			reqRateLimiter,
			"signin",
			s.config.SignInRateLimitAllowedPerMin,
			s.metricsManager,
		)(http.HandlerFunc(usersHandler.HandleSignIn)),
	).Methods("POST", "OPTIONS").Name("signin")
	r.HandleFunc("/goal", usersHandler.HandleSetGoal).Methods("POST", "OPTIONS").Name("set-goal")
	r.HandleFunc("/goal/remaining", usersHandler.HandleGoalRemaining).Methods("GET", "OPTIONS").Name("goal-remaining")

	workoutsHandler := workouts.NewHandler(workoutsService, workoutsAnalyzer, s.cursor, s.metricsManager)
	r.HandleFunc("/workouts", workoutsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts/days", workoutsHandler.HandleDistinctDays).Methods("GET", "OPTIONS").Name("distinct-days")
	r.HandleFunc("/workouts/burned", workoutsHandler.HandleDailyBurned).Methods("GET", "OPTIONS").Name("daily-burned")
	r.HandleFunc("/workouts/day/{date}", workoutsHandler.HandleDayDetail).Methods("GET", "OPTIONS").Name("day-detail")
	r.HandleFunc("/workouts/day/{date}/row/{row}", workoutsHandler.HandleWorkoutAtRow).Methods("GET", "OPTIONS").Name("workout-at-row")
	r.HandleFunc("/workouts/{id}/notes", workoutsHandler.HandleUpdateNotes).Methods("PUT", "OPTIONS").Name("update-notes")

	nutritionHandler := nutrition.NewHandler(nutrition.NewService(s.dataStore), s.cursor, s.metricsManager)
	r.HandleFunc("/nutrition", nutritionHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-nutrition-entry")
	r.HandleFunc("/nutrition/daily", nutritionHandler.HandleDailyCalories).Methods("GET", "OPTIONS").Name("daily-calories")
	r.HandleFunc("/nutrition/range", nutritionHandler.HandleListForRange).Methods("GET", "OPTIONS").Name("nutrition-range")
	r.HandleFunc("/nutrition/foods", nutritionHandler.HandleFoods).Methods("GET", "OPTIONS").Name("foods")
	r.HandleFunc("/nutrition/foods/calories", nutritionHandler.HandleFoodCalories).Methods("GET", "OPTIONS").Name("food-calories")
	r.HandleFunc("/nutrition/day/{date}", nutritionHandler.HandleListForDate).Methods("GET", "OPTIONS").Name("nutrition-day")

	pedometerHandler := pedometer.NewHandler(s.pedometer)
	r.HandleFunc("/steps", pedometerHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-steps")
	r.HandleFunc("/steps", pedometerHandler.HandleStep).Methods("POST", "OPTIONS").Name("step-event")
	r.HandleFunc("/steps", pedometerHandler.HandleSet).Methods("PUT", "OPTIONS").Name("set-steps")

	cursorHandler := daycursor.NewHandler(s.cursor)
	r.HandleFunc("/day", cursorHandler.HandleCurrent).Methods("GET", "OPTIONS").Name("current-day")
	r.HandleFunc("/day/next", cursorHandler.HandleNext).Methods("POST", "OPTIONS").Name("next-day")

	r.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, s.versionInfo)
	}).Methods("GET", "OPTIONS").Name("version")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
