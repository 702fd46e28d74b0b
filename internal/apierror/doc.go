// Package apierror provides error inspection for Launchpad web service failures.
// Errors that carry an HTTP status (see StatusCoder) are classified by code;
// anything else falls back to message matching for transport-level failures.
package apierror
