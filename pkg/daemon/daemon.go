// Package daemon exposes one calibration session over an HTTP API on a unix
// socket. The controller itself is not safe for concurrent use, so every
// handler serializes through a single mutex.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ps-bond/printerColourCalibration/pkg/config"
	"github.com/ps-bond/printerColourCalibration/pkg/controller"
)

func setupRoutes(s *server) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", s.getStatus)
	router.GET("/phases", s.getPhases)
	router.POST("/measurements", s.postMeasurements)
	router.POST("/export", s.postExport)
	router.PUT("/phase", s.putPhase)
	router.POST("/reset", s.postReset)

	return router
}

// Run starts the session daemon. Session state is restored from statePath
// when present and persisted after every mutation, so a restarted daemon
// resumes where the operator left off.
func Run(configPath, socketPath, statePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}

	s := &server{
		ctrl:      controller.New(cfg),
		statePath: statePath,
	}
	if st, ok := loadState(statePath); ok {
		s.ctrl = controller.NewFromState(cfg, st)
		logrus.WithField("phase", s.ctrl.CurrentPhase()).Info("session state restored")
	}

	router := setupRoutes(s)
	srv := &http.Server{Handler: router}

	// A previous unclean shutdown can leave the socket behind.
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	l, err := net.Listen("unix", socketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	s.persist()

	logrus.Info("exiting")
	return nil
}
