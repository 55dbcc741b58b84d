package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAuditLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	audit := NewAuditLog(LoggingSettings{Level: "info", AuditFile: path}, false)
	audit.Info("export started", "crate")
	audit.Warning(CodeBoneRange, "bone index 300 out of range", "crate")
	audit.Error(CodeGeoNoVertices, "empty vertex stream", "crate")
	audit.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	log := string(data)
	for _, want := range []string{
		"export started",
		"WARN", CodeBoneRange, "bone index 300 out of range",
		"ERROR", CodeGeoNoVertices,
		"crate",
	} {
		if !strings.Contains(log, want) {
			t.Fatalf("audit log missing %q:\n%s", want, log)
		}
	}
}

func TestAuditLogLevelFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.log")

	audit := NewAuditLog(LoggingSettings{Level: "error", AuditFile: path}, false)
	audit.Info("noise", "crate")
	audit.Warning(CodeUVMissing, "no texture coordinates", "crate")
	audit.Error(CodeGeoNoVertices, "empty vertex stream", "crate")
	audit.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	log := string(data)
	if strings.Contains(log, "noise") || strings.Contains(log, CodeUVMissing) {
		t.Fatalf("filtered entries leaked:\n%s", log)
	}
	if !strings.Contains(log, CodeGeoNoVertices) {
		t.Fatalf("error entry missing:\n%s", log)
	}
}
