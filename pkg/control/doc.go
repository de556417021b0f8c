// Package control implements the control surface: a set of named text
// endpoints that can be read and, if writable, written.
//
// The surface is transport independent. NewPowerSurface binds the three
// power endpoints to a Target (normally a *service.PowerService):
//
//	state    read/write  "0" inactive, "1" active
//	mode     read/write  "0" autosleep, "1" userspace, "2" panel, "3" hybrid
//	version  read-only   "version: 1.7.7"
//
// Writes that do not parse to an accepted value are ignored and succeed.
// A state write while the mode is not userspace fails with
// service.ErrInvalidOperation.
package control
