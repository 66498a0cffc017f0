package discovery

import (
	"fmt"
	"os"
	"strconv"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/balancerbattle/wsfixture/internal/logging"
)

const (
	// ServiceType is the DNS-SD service type the fixture registers
	ServiceType = "_wsfixture._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// Announcement describes the service being advertised
type Announcement struct {
	// Instance is the service instance name (default: wsfixture-<hostname>)
	Instance string
	Flavor   string
	Secure   bool
	Port     int
	Version  string
}

// InstanceName returns the instance name, deriving one from the hostname
// when none is set
func (a Announcement) InstanceName() string {
	if a.Instance != "" {
		return a.Instance
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	return "wsfixture-" + host
}

// TXTRecords returns the key=value TXT entries for the announcement
func (a Announcement) TXTRecords() []string {
	txt := []string{
		"flavor=" + a.Flavor,
		"secure=" + strconv.FormatBool(a.Secure),
		"path=/",
	}
	if a.Version != "" {
		txt = append(txt, "version="+a.Version)
	}
	return txt
}

// Advertiser holds a running mDNS registration
type Advertiser struct {
	server *zeroconf.Server
}

// Advertise registers the announcement on all multicast-capable interfaces
func Advertise(a Announcement) (*Advertiser, error) {
	if a.Port <= 0 || a.Port > 65535 {
		return nil, fmt.Errorf("invalid port for mDNS announcement: %d", a.Port)
	}

	server, err := zeroconf.Register(a.InstanceName(), ServiceType, ServiceDomain, a.Port, a.TXTRecords(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising fixture over mDNS",
		zap.String("instance", a.InstanceName()),
		zap.String("service", ServiceType),
		zap.Int("port", a.Port),
		zap.Strings("txt", a.TXTRecords()),
	)

	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the registration
func (a *Advertiser) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Debug("mDNS registration withdrawn")
}
