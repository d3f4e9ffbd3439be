package connection

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cradi/controller"
	"cradi/controller/event"
	"cradi/controller/job"
	"cradi/controller/statistics"
	"cradi/logger"
	"cradi/metrics"
	"cradi/middleware"
	"cradi/services"
)

type Workflow struct {
	Sweeper    *services.EscalationSweeper
	Intake     *services.IntakeNotifier
	Alert      *services.AlertDistributor
	Aggregator *services.StatisticsAggregator
}

func NewWorkflow(deps services.Deps) Workflow {
	return Workflow{
		Sweeper:    services.NewEscalationSweeper(deps),
		Intake:     services.NewIntakeNotifier(deps),
		Alert:      services.NewAlertDistributor(deps),
		Aggregator: services.NewStatisticsAggregator(deps),
	}
}

func NewRouter(wf Workflow, m *metrics.Metrics, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.GinWriter(log)), gin.Recovery())
	router.Use(cors.Default())
	router.Use(middleware.RequestMetrics(m))

	controller.HealthController(router)
	controller.MetricsController(router, m.Registry)

	event.EventController(router, wf.Intake, wf.Alert)
	job.JobController(router, wf.Sweeper, wf.Aggregator)
	statistics.StatisticsController(router, wf.Aggregator)

	return router
}

// StartServer serves until ctx is cancelled, then drains in-flight requests.
func StartServer(ctx context.Context, addr string, handler http.Handler, log *logrus.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	log.Info("Shutting down HTTP server")
	return srv.Shutdown(shutdownCtx)
}
