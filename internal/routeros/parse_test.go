package routeros

import "testing"

func TestParseTerse_WellFormedRows(t *testing.T) {
	output := " 0 D address=10.0.0.42 mac-address=AA:BB:CC:DD:EE:01 server=dhcp1 status=bound comment=Smith Apt4\n" +
		" 1   address=10.0.0.43 mac-address=AA:BB:CC:DD:EE:02 server=dhcp1 status=waiting\n"

	leases, err := ParseTerse(output)
	if err != nil {
		t.Fatalf("ParseTerse: %v", err)
	}
	if len(leases) != 2 {
		t.Fatalf("got %d leases, want 2", len(leases))
	}

	if leases[0].IPAddress != "10.0.0.42" {
		t.Errorf("lease 0 ip = %q, want 10.0.0.42", leases[0].IPAddress)
	}
	if leases[0].MACAddress != "AA:BB:CC:DD:EE:01" {
		t.Errorf("lease 0 mac = %q", leases[0].MACAddress)
	}
	if leases[0].Comment != "Smith Apt4" {
		t.Errorf("lease 0 comment = %q, want %q", leases[0].Comment, "Smith Apt4")
	}
	if leases[0].Status != "bound" {
		t.Errorf("lease 0 status = %q, want bound", leases[0].Status)
	}
	if leases[1].Comment != "" {
		t.Errorf("lease 1 comment = %q, want empty", leases[1].Comment)
	}
}

func TestParseTerse_MultiWordValueSpansFields(t *testing.T) {
	// comment is the last key; its unquoted value runs to end of line.
	output := "0 address=192.168.88.10 mac-address=00:11:22:33:44:55 comment=Perez Unit 12 B status=bound\n"

	leases, err := ParseTerse(output)
	if err != nil {
		t.Fatalf("ParseTerse: %v", err)
	}
	if len(leases) != 1 {
		t.Fatalf("got %d leases, want 1", len(leases))
	}
	// "status=bound" terminates the comment value.
	if leases[0].Comment != "Perez Unit 12 B" {
		t.Errorf("comment = %q, want %q", leases[0].Comment, "Perez Unit 12 B")
	}
	if leases[0].Status != "bound" {
		t.Errorf("status = %q, want bound", leases[0].Status)
	}
}

func TestParseTerse_ErrorMarker(t *testing.T) {
	for _, output := range []string{
		"bad command name print-terse (line 1 column 25)",
		"syntax error (line 1 column 4)",
		"failure: not enough permissions",
	} {
		if _, err := ParseTerse(output); err == nil {
			t.Errorf("ParseTerse(%q): expected error", output)
		}
	}
}

func TestParseTerse_EmptyOutput(t *testing.T) {
	leases, err := ParseTerse("")
	if err != nil {
		t.Fatalf("ParseTerse(empty): %v", err)
	}
	if len(leases) != 0 {
		t.Errorf("got %d leases from empty output, want 0", len(leases))
	}
}

func TestParseTerse_GarbageOutput(t *testing.T) {
	if _, err := ParseTerse("Welcome to the router!\nplease log in\n"); err == nil {
		t.Error("expected error for unrecognized output")
	}
}

func TestParseTerse_IgnoresNonIndexedLines(t *testing.T) {
	output := "\n 0 address=10.0.0.5 mac-address=AA:BB:CC:00:00:05 status=bound\n\n"
	leases, err := ParseTerse(output)
	if err != nil {
		t.Fatalf("ParseTerse: %v", err)
	}
	if len(leases) != 1 {
		t.Fatalf("got %d leases, want 1", len(leases))
	}
}

func TestParseTerse_MissingFieldsStillProducesLease(t *testing.T) {
	// The normalizer is responsible for rejecting incomplete leases;
	// the parser reports what the router said.
	output := "0 address=10.0.0.9 status=waiting\n"
	leases, err := ParseTerse(output)
	if err != nil {
		t.Fatalf("ParseTerse: %v", err)
	}
	if len(leases) != 1 {
		t.Fatalf("got %d leases, want 1", len(leases))
	}
	if leases[0].MACAddress != "" {
		t.Errorf("mac = %q, want empty", leases[0].MACAddress)
	}
}
