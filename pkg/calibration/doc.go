// Package calibration defines the types shared by the calibration
// workflow. It contains:
//
//   - Phase: the discrete steps of the calibration state machine
//   - Step / State: the serializable session state owned by the controller
//   - Status: a synthesized view model returned by the HTTP API and CLI
//
// These types are shared across controller, daemon, client and CLI code to
// keep JSON contracts consistent.
package calibration
