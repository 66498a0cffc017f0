package discovery

import (
	"strings"
	"testing"
)

func TestAnnouncement_TXTRecords(t *testing.T) {
	tests := []struct {
		name string
		a    Announcement
		want []string
	}{
		{
			name: "plain without version",
			a:    Announcement{Flavor: "http", Port: 8080},
			want: []string{"flavor=http", "secure=false", "path=/"},
		},
		{
			name: "tls with version",
			a:    Announcement{Flavor: "https", Secure: true, Port: 8080, Version: "v1.0.0"},
			want: []string{"flavor=https", "secure=true", "path=/", "version=v1.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.TXTRecords()
			if len(got) != len(tt.want) {
				t.Fatalf("TXTRecords() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TXTRecords()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnnouncement_InstanceName(t *testing.T) {
	if got := (Announcement{Instance: "lb-backend-1"}).InstanceName(); got != "lb-backend-1" {
		t.Errorf("InstanceName() = %q, want lb-backend-1", got)
	}
	if got := (Announcement{}).InstanceName(); !strings.HasPrefix(got, "wsfixture-") {
		t.Errorf("InstanceName() = %q, want wsfixture- prefix", got)
	}
}

func TestAdvertise_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		if _, err := Advertise(Announcement{Flavor: "http", Port: port}); err == nil {
			t.Errorf("Advertise() with port %d should fail", port)
		}
	}
}

func TestAdvertiser_ShutdownNil(t *testing.T) {
	var a *Advertiser
	a.Shutdown() // must not panic
}
