// Package discovery implements mDNS/DNS-SD advertisement and browsing of
// power-suspend coordinators.
//
// A coordinator advertises one instance of _powersuspend._tcp. The port is
// the HTTP control port. TXT records:
//
//	ver   coordinator version, e.g. 1.7.7
//	path  base path of the HTTP API, e.g. /api/v1
//	id    coordinator instance ID
//	mode  current suspend mode (0-3), refreshed on mode changes
//
// Browsing aggregates entries by instance name; addresses seen on several
// interfaces are merged into one ServiceInstance.
package discovery
