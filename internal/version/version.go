// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// UserAgent identifies the payload client to the log server.
const UserAgent = "ls-skyselect/" + Version

// Milestones:
// 0.3.0 - FITS header WCS, telescope footprint overlays, /metrics
// 0.2.0 - Perspective sky camera, drag selection with angular limits
// 0.1.0 - Initial release: disk view, coordinate readout, /api/log receiver
