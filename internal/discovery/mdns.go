// Package discovery advertises the relay on the local network over mDNS so
// that headless peers can find it without configuration.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_whiteboard._tcp"

// Service is a relay found on the network.
type Service struct {
	Instance string
	Addr     string // host:port
	Info     []string
}

// Advertise announces a relay listening on port until the returned server
// is shut down. An empty instance uses the hostname.
func Advertise(instance string, port int, info []string) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse collects relays that answer within timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]Service, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.QueryContext(ctx, params)
		close(entries)
	}()

	var found []Service
	seen := make(map[string]bool)
	for e := range entries {
		s, ok := serviceFromEntry(e)
		if !ok || seen[s.Addr] {
			continue
		}
		seen[s.Addr] = true
		found = append(found, s)
	}

	if err := <-errCh; err != nil && ctx.Err() == nil {
		return found, fmt.Errorf("mdns query: %w", err)
	}
	return found, nil
}

func serviceFromEntry(e *mdns.ServiceEntry) (Service, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Service{}, false
	}
	return Service{
		Instance: e.Name,
		Addr:     net.JoinHostPort(e.AddrV4.String(), strconv.Itoa(e.Port)),
		Info:     e.InfoFields,
	}, true
}
