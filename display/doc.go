// Package display is the direct KMS backend for the touch panel.
//
// Open walks the candidate card nodes and returns the first one that can
// be fully brought up: client caps, master lock, topology, one dumb
// buffer with its framebuffer, and a single ALLOW_MODESET atomic commit.
// After that the backend only ever copies pixels into the mapped buffer
// and reports the dirty rectangle; no further commits are issued.
package display
