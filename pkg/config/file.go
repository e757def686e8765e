package config

import (
	"encoding/json"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Load reads a calibration config file and overlays it onto the defaults.
// Fields omitted from the file keep their default values. An empty path
// returns the defaults unchanged.
func Load(path string) (Calibration, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return c, pkgerrors.Wrapf(err, "failed to read config %s", path)
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, pkgerrors.Wrapf(err, "failed to parse config %s", path)
	}

	logrus.WithField("path", path).Debug("config loaded")
	return c, nil
}

// Save writes the calibration config as indented JSON.
func (c Calibration) Save(path string) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write config %s", path)
	}
	return nil
}
