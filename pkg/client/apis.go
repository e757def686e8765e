package client

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/pkg/errors"

	"github.com/ps-bond/printerColourCalibration/pkg/calibration"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

// GetStatus fetches the daemon's view of the calibration session.
func (c *Client) GetStatus() (calibration.Status, error) {
	var st calibration.Status
	ret, err := c.Get("/status")
	if err != nil {
		return st, pkgerrors.Wrap(err, "failed to get session status")
	}
	if err := json.Unmarshal([]byte(ret), &st); err != nil {
		return st, pkgerrors.Wrap(err, "failed to decode session status")
	}
	return st, nil
}

// GetPhases lists the phases available to a manual phase override.
func (c *Client) GetPhases() ([]calibration.Phase, error) {
	var phases []calibration.Phase
	ret, err := c.Get("/phases")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to list phases")
	}
	if err := json.Unmarshal([]byte(ret), &phases); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to decode phase list")
	}
	return phases, nil
}

// Process submits a measurement batch for the current phase.
func (c *Client) Process(batch measure.Batch) (calibration.Result, error) {
	return c.resultCall(http.MethodPost, "/measurements", batch)
}

// Export asks the daemon to build the ICC profile.
func (c *Client) Export(filename string) (calibration.Result, error) {
	return c.resultCall(http.MethodPost, "/export", map[string]string{"filename": filename})
}

// SetPhase manually overrides the session phase, clearing its history.
func (c *Client) SetPhase(phase calibration.Phase) (calibration.Result, error) {
	return c.resultCall(http.MethodPut, "/phase", string(phase))
}

// Reset returns the session to the Precondition phase.
func (c *Client) Reset() (calibration.Result, error) {
	return c.resultCall(http.MethodPost, "/reset", nil)
}

func (c *Client) resultCall(method, path string, payload any) (calibration.Result, error) {
	var res calibration.Result

	data := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return res, pkgerrors.Wrap(err, "failed to encode request")
		}
		data = string(b)
	}

	ret, err := c.Send(method, path, data)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal([]byte(ret), &res); err != nil {
		return res, pkgerrors.Wrapf(err, "failed to decode response from %s", path)
	}
	return res, nil
}
