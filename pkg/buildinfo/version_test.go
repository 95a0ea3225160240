package buildinfo

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.3"
	info := Get()
	if info.Version != "v1.2.3" || info.GoVersion == "" {
		t.Errorf("Get() = %+v", info)
	}
	if !strings.Contains(info.String(), "version: v1.2.3") {
		t.Errorf("String() = %q", info.String())
	}
	if !strings.Contains(Template(), "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
}
