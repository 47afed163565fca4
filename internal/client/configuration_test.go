package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseConfiguration(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "gccinv.toml")
	contents := `
Server = "build-farm:43300"
RequestTimeout = 3
CompilerNames = ["gcc", "*-linux-gnu-gcc"]
LogLevel = 2
`
	if err := os.WriteFile(fileName, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := ParseConfiguration(fileName)
	if err != nil {
		t.Fatalf("ParseConfiguration() returned error: %v", err)
	}

	want := DefaultConfiguration()
	want.Server = "build-farm:43300"
	want.RequestTimeout = 3
	want.CompilerNames = []string{"gcc", "*-linux-gnu-gcc"}
	want.LogLevel = 2
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("ParseConfiguration() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigurationMissingFile(t *testing.T) {
	config, err := ParseConfiguration(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("ParseConfiguration() of a missing file returned error: %v", err)
	}
	if diff := cmp.Diff(DefaultConfiguration(), config); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigurationInvalid(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(fileName, []byte("Jobs = \"many\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseConfiguration(fileName); err == nil {
		t.Errorf("ParseConfiguration() of an invalid file must fail")
	}
}
