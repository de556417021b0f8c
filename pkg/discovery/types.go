package discovery

import (
	"errors"
	"time"

	"github.com/powersuspend/powersuspend-go/pkg/powerstate"
)

// Service type constants for mDNS.
const (
	// ServiceType is the service type advertised by coordinators.
	ServiceType = "_powersuspend._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default HTTP control port.
	DefaultPort = 8080

	// DefaultAPIPath is the default base path of the HTTP API.
	DefaultAPIPath = "/api/v1"
)

// TXT record key constants.
const (
	TXTKeyVersion  = "ver"  // Coordinator version
	TXTKeyPath     = "path" // HTTP API base path
	TXTKeyInstance = "id"   // Coordinator instance ID (optional)
	TXTKeyMode     = "mode" // Suspend mode 0-3 (optional)
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the default DNS record TTL.
	DefaultTTL = 120 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63

	// MaxTXTRecordSize is the maximum total TXT record size.
	MaxTXTRecordSize = 400
)

// Discovery errors.
var (
	ErrInvalidTXTRecord    = errors.New("invalid TXT record format")
	ErrMissingRequired     = errors.New("missing required field")
	ErrInstanceNameTooLong = errors.New("instance name exceeds 63 characters")
	ErrNotAdvertising      = errors.New("not advertising")
)

// ServiceInfo is what a coordinator advertises.
type ServiceInfo struct {
	// InstanceName is the DNS-SD instance name.
	InstanceName string

	// Port is the HTTP control port.
	Port uint16

	// Version is the coordinator version string.
	Version string

	// APIPath is the HTTP API base path.
	APIPath string

	// InstanceID is the coordinator instance ID (optional).
	InstanceID string

	// Mode is the current suspend mode. Ignored unless HasMode is set.
	Mode    powerstate.Mode
	HasMode bool
}

// ServiceInstance is a coordinator found by browsing.
type ServiceInstance struct {
	InstanceName string
	Host         string
	Port         uint16
	Addresses    []string

	Version    string
	APIPath    string
	InstanceID string
	Mode       powerstate.Mode
	HasMode    bool
}
