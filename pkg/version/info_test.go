package version

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestCurrent_Defaults(t *testing.T) {
	oldVersion, oldCommit, oldBuildTime := AppVersion, GitCommit, BuildTime
	t.Cleanup(func() {
		AppVersion, GitCommit, BuildTime = oldVersion, oldCommit, oldBuildTime
	})

	AppVersion, GitCommit, BuildTime = "", "", " "

	info := Current("")
	if info.Service != Unknown || info.Version != DevelopmentVersion || info.BuildTime != Unknown {
		t.Fatalf("unexpected defaults: %+v", info)
	}
	if info.Commit == "" {
		t.Fatal("commit should never be empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if !info.IsDevelopment() {
		t.Error("expected development build")
	}
}

func TestCurrent_Injected(t *testing.T) {
	oldVersion, oldCommit := AppVersion, GitCommit
	t.Cleanup(func() { AppVersion, GitCommit = oldVersion, oldCommit })

	AppVersion, GitCommit = "v1.4.0", "abc1234"
	info := Current("backoffice")
	if info.Version != "v1.4.0" || info.Commit != "abc1234" || info.IsDevelopment() {
		t.Errorf("Current() = %+v", info)
	}
	if !strings.HasPrefix(info.String(), "backoffice@v1.4.0 (commit=abc1234") {
		t.Errorf("String() = %q", info.String())
	}
}

func TestInfo_ParseBuildTime(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	parsed, ok := Info{BuildTime: now.Format(time.RFC3339)}.ParseBuildTime()
	if !ok || !parsed.Equal(now) {
		t.Fatalf("ParseBuildTime() = %v, %v", parsed, ok)
	}
	if _, ok := (Info{BuildTime: Unknown}).ParseBuildTime(); ok {
		t.Error("unknown build time should not parse")
	}
	if _, ok := (Info{BuildTime: "yesterday"}).ParseBuildTime(); ok {
		t.Error("invalid build time should not parse")
	}
}
