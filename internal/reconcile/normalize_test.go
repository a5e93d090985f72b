package reconcile

import (
	"errors"
	"testing"

	"github.com/HerbHall/leasesync/pkg/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		lease   models.Lease
		want    models.NormalizedLease
		wantErr bool
	}{
		{
			name:  "typical tenant lease",
			lease: models.Lease{MACAddress: "AA:BB:CC:DD:EE:01", IPAddress: "10.0.0.42", Comment: "Smith Apt4"},
			want: models.NormalizedLease{
				MACAddress:      "aa:bb:cc:dd:ee:01",
				IPAddress:       "10.0.0.42",
				Comment:         "Smith Apt4",
				DerivedName:     "Smith Apt4",
				AddressFragment: "Apt4",
			},
		},
		{
			name:  "extra comment tokens ignored",
			lease: models.Lease{MACAddress: "aa:bb:cc:dd:ee:01", IPAddress: "10.0.0.42", Comment: "Smith Apt4 basement unit"},
			want: models.NormalizedLease{
				MACAddress:      "aa:bb:cc:dd:ee:01",
				IPAddress:       "10.0.0.42",
				Comment:         "Smith Apt4 basement unit",
				DerivedName:     "Smith Apt4",
				AddressFragment: "Apt4",
			},
		},
		{
			name:  "single token comment",
			lease: models.Lease{MACAddress: "aa:bb:cc:dd:ee:01", IPAddress: "10.0.0.42", Comment: "Smith"},
			want: models.NormalizedLease{
				MACAddress:  "aa:bb:cc:dd:ee:01",
				IPAddress:   "10.0.0.42",
				Comment:     "Smith",
				DerivedName: "Smith",
			},
		},
		{
			name:  "empty comment falls back to MAC",
			lease: models.Lease{MACAddress: "aa:bb:cc:dd:ee:01", IPAddress: "10.0.0.42"},
			want: models.NormalizedLease{
				MACAddress:  "aa:bb:cc:dd:ee:01",
				IPAddress:   "10.0.0.42",
				DerivedName: "aa:bb:cc:dd:ee:01",
			},
		},
		{
			name:  "one character comment falls back to MAC",
			lease: models.Lease{MACAddress: "aa:bb:cc:dd:ee:01", IPAddress: "10.0.0.42", Comment: "x"},
			want: models.NormalizedLease{
				MACAddress:  "aa:bb:cc:dd:ee:01",
				IPAddress:   "10.0.0.42",
				Comment:     "x",
				DerivedName: "aa:bb:cc:dd:ee:01",
			},
		},
		{
			name:  "router comment marked generic",
			lease: models.Lease{MACAddress: "aa:bb:cc:dd:ee:01", IPAddress: "10.0.0.42", Comment: "Router main office"},
			want: models.NormalizedLease{
				MACAddress:      "aa:bb:cc:dd:ee:01",
				IPAddress:       "10.0.0.42",
				Comment:         "Router main office",
				DerivedName:     "Router main",
				AddressFragment: "main",
				Generic:         true,
			},
		},
		{
			name:  "ap comment marked generic",
			lease: models.Lease{MACAddress: "aa:bb:cc:dd:ee:01", IPAddress: "10.0.0.42", Comment: "AP hallway"},
			want: models.NormalizedLease{
				MACAddress:      "aa:bb:cc:dd:ee:01",
				IPAddress:       "10.0.0.42",
				Comment:         "AP hallway",
				DerivedName:     "AP hallway",
				AddressFragment: "hallway",
				Generic:         true,
			},
		},
		{
			name:    "missing MAC rejected",
			lease:   models.Lease{IPAddress: "10.0.0.42", Comment: "Smith Apt4"},
			wantErr: true,
		},
		{
			name:    "missing IP rejected",
			lease:   models.Lease{MACAddress: "aa:bb:cc:dd:ee:01", Comment: "Smith Apt4"},
			wantErr: true,
		},
		{
			name:    "hyphenated MAC rejected",
			lease:   models.Lease{MACAddress: "aa-bb-cc-dd-ee-01", IPAddress: "10.0.0.42"},
			wantErr: true,
		},
		{
			name:    "truncated MAC rejected",
			lease:   models.Lease{MACAddress: "aa:bb:cc:dd:ee", IPAddress: "10.0.0.42"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.lease)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedLease) {
					t.Fatalf("Normalize() error = %v, want ErrMalformedLease", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
