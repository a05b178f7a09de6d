package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestServiceFromEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry *mdns.ServiceEntry
		want  string
		ok    bool
	}{
		{"nil", nil, "", false},
		{"no address", &mdns.ServiceEntry{Port: 8080}, "", false},
		{"no port", &mdns.ServiceEntry{AddrV4: net.IPv4(10, 0, 0, 2)}, "", false},
		{"ok", &mdns.ServiceEntry{Name: "relay", AddrV4: net.IPv4(10, 0, 0, 2), Port: 8080}, "10.0.0.2:8080", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := serviceFromEntry(tt.entry)
			if ok != tt.ok || s.Addr != tt.want {
				t.Errorf("got %+v, %v; want %q, %v", s, ok, tt.want, tt.ok)
			}
		})
	}
}
