package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ps-bond/printerColourCalibration/pkg/calibration"
	"github.com/ps-bond/printerColourCalibration/pkg/controller"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

type server struct {
	mu        sync.Mutex
	ctrl      *controller.Controller
	statePath string
}

func (s *server) getStatus(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.IndentedJSON(http.StatusOK, s.ctrl.Status())
}

func (s *server) getPhases(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, calibration.Selectable())
}

func (s *server) postMeasurements(c *gin.Context) {
	var batch measure.Batch
	if err := c.BindJSON(&batch); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if len(batch) == 0 {
		c.AbortWithError(http.StatusBadRequest, fmt.Errorf("measurement batch is empty"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.ctrl.Process(batch)
	s.persist()

	c.IndentedJSON(http.StatusOK, calibration.Result{Message: msg, Phase: s.ctrl.CurrentPhase()})
	logrus.WithField("phase", s.ctrl.CurrentPhase()).Infof("processed %d measurement rows", len(batch))
}

func (s *server) postExport(c *gin.Context) {
	var req struct {
		Filename string `json:"filename"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	if req.Filename == "" {
		c.AbortWithError(http.StatusBadRequest, fmt.Errorf("filename is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.ctrl.Export(req.Filename)
	s.persist()

	c.IndentedJSON(http.StatusOK, calibration.Result{Message: msg, Phase: s.ctrl.CurrentPhase()})
}

func (s *server) putPhase(c *gin.Context) {
	var name string
	if err := c.BindJSON(&name); err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	phase, ok := calibration.Parse(name)
	if !ok {
		c.AbortWithError(http.StatusBadRequest, fmt.Errorf("unknown phase %q", name))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.SetPhase(phase)
	s.persist()

	c.IndentedJSON(http.StatusOK, calibration.Result{Message: "phase set", Phase: s.ctrl.CurrentPhase()})
	logrus.Infof("phase manually set to %s", phase)
}

func (s *server) postReset(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Reset()
	s.persist()

	c.IndentedJSON(http.StatusOK, calibration.Result{Message: "session reset", Phase: s.ctrl.CurrentPhase()})
	logrus.Info("session reset")
}

// persist writes the session snapshot to disk. Callers must hold s.mu.
func (s *server) persist() {
	if s.statePath == "" {
		return
	}
	b, err := json.MarshalIndent(s.ctrl.Snapshot(), "", "  ")
	if err != nil {
		logrus.WithError(err).Error("marshal session state")
		return
	}
	if err := os.WriteFile(s.statePath, b, 0644); err != nil {
		logrus.WithError(err).Error("write session state")
	}
}

func loadState(path string) (calibration.State, bool) {
	if path == "" {
		return calibration.State{}, false
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("failed to read session state")
		}
		return calibration.State{}, false
	}
	var st calibration.State
	if err := json.Unmarshal(b, &st); err != nil {
		logrus.WithError(err).Warn("failed to unmarshal session state")
		return calibration.State{}, false
	}
	return st, true
}
