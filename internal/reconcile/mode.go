package reconcile

import "github.com/HerbHall/leasesync/pkg/models"

// The reconciliation policy is a fixed decision table over
// (mode, record exists). Index 0 is the missing-record column, index 1
// the existing-record column. Keeping the whole matrix in two tables
// makes every mode/state combination visible and testable at a glance.

var clientDecisions = map[models.Mode][2]models.Action{
	models.ModePreview:      {models.ActionWouldCreate, models.ActionExists},
	models.ModeImport:       {models.ActionCreated, models.ActionExists},
	models.ModeUpdate:       {models.ActionNone, models.ActionExists},
	models.ModeImportUpdate: {models.ActionCreated, models.ActionExists},
}

var deviceDecisions = map[models.Mode][2]models.Action{
	models.ModePreview:      {models.ActionWouldCreate, models.ActionWouldUpdate},
	models.ModeImport:       {models.ActionCreated, models.ActionSkipped},
	models.ModeUpdate:       {models.ActionSkipped, models.ActionUpdated},
	models.ModeImportUpdate: {models.ActionCreated, models.ActionUpdated},
}

func decideClient(m models.Mode, exists bool) models.Action {
	return clientDecisions[m][boolIndex(exists)]
}

func decideDevice(m models.Mode, exists bool) models.Action {
	return deviceDecisions[m][boolIndex(exists)]
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}
