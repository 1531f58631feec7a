package output

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestPrinterPlainPrefixes(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinterWithWriters(&out, &errOut, false)

	p.Info("loading %d sections", 3)
	p.Success("saved")
	p.Warning("offline")
	p.Error("boom: %s", "bad key")

	if got := out.String(); got != "loading 3 sections\n[OK] saved\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := errOut.String(); got != "[WARN] offline\n[ERROR] boom: bad key\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestPrinterHeaderUnderline(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinterWithWriters(&out, &out, false)
	p.Header("Settings")

	if got := out.String(); got != "\nSettings\n--------\n" {
		t.Errorf("header = %q", got)
	}
}

func TestNewPrinterWritesToStdout(t *testing.T) {
	p := NewPrinter(false)
	if p.Out() != os.Stdout {
		t.Error("NewPrinter should write to stdout")
	}
}

func TestTableRendersRows(t *testing.T) {
	var out bytes.Buffer
	tbl := NewTable(&out, []string{"Section", "Title"})
	tbl.AddRow("world", "Summit ends without deal")
	tbl.AddRow("technology", "Chip exports tighten")

	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := out.String()
	for _, want := range []string{"SECTION", "Summit ends without deal", "technology"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in table output:\n%s", want, got)
		}
	}
}
