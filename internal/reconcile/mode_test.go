package reconcile

import (
	"testing"

	"github.com/HerbHall/leasesync/pkg/models"
)

// TestDecisionTable walks the full mode x client-exists x device-exists
// matrix so every policy cell is pinned down explicitly.
func TestDecisionTable(t *testing.T) {
	tests := []struct {
		mode         models.Mode
		clientExists bool
		deviceExists bool
		wantClient   models.Action
		wantDevice   models.Action
	}{
		{models.ModePreview, false, false, models.ActionWouldCreate, models.ActionWouldCreate},
		{models.ModePreview, false, true, models.ActionWouldCreate, models.ActionWouldUpdate},
		{models.ModePreview, true, false, models.ActionExists, models.ActionWouldCreate},
		{models.ModePreview, true, true, models.ActionExists, models.ActionWouldUpdate},

		{models.ModeImport, false, false, models.ActionCreated, models.ActionCreated},
		{models.ModeImport, false, true, models.ActionCreated, models.ActionSkipped},
		{models.ModeImport, true, false, models.ActionExists, models.ActionCreated},
		{models.ModeImport, true, true, models.ActionExists, models.ActionSkipped},

		{models.ModeUpdate, false, false, models.ActionNone, models.ActionSkipped},
		{models.ModeUpdate, false, true, models.ActionNone, models.ActionUpdated},
		{models.ModeUpdate, true, false, models.ActionExists, models.ActionSkipped},
		{models.ModeUpdate, true, true, models.ActionExists, models.ActionUpdated},

		{models.ModeImportUpdate, false, false, models.ActionCreated, models.ActionCreated},
		{models.ModeImportUpdate, false, true, models.ActionCreated, models.ActionUpdated},
		{models.ModeImportUpdate, true, false, models.ActionExists, models.ActionCreated},
		{models.ModeImportUpdate, true, true, models.ActionExists, models.ActionUpdated},
	}
	for _, tt := range tests {
		name := string(tt.mode)
		if tt.clientExists {
			name += "/client-exists"
		} else {
			name += "/client-missing"
		}
		if tt.deviceExists {
			name += "/device-exists"
		} else {
			name += "/device-missing"
		}
		t.Run(name, func(t *testing.T) {
			if got := decideClient(tt.mode, tt.clientExists); got != tt.wantClient {
				t.Errorf("decideClient = %q, want %q", got, tt.wantClient)
			}
			if got := decideDevice(tt.mode, tt.deviceExists); got != tt.wantDevice {
				t.Errorf("decideDevice = %q, want %q", got, tt.wantDevice)
			}
		})
	}
}
