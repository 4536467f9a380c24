package reservationRepo

import (
	"testing"

	"salonbook/models"
)

func assertIDs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("provider ids mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("provider ids mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

// Every provider the commit consumes must be anchored, once, in stable
// order: that set decides which concurrent commits conflict.
func TestTouchedProviders(t *testing.T) {
	staff := &models.Reservation{StaffID: "alice"}
	assertIDs(t, touchedProviders(staff, nil), []string{"alice"})

	resource := &models.Reservation{}
	lines := []models.CapacityAllocation{
		{ResourceID: "r1"},
		{ResourceID: "r2"},
		{ResourceID: "r1"},
	}
	assertIDs(t, touchedProviders(resource, lines), []string{"r1", "r2"})

	// No assigned staff and no lines anchor nothing.
	assertIDs(t, touchedProviders(&models.Reservation{}, nil), nil)
}
