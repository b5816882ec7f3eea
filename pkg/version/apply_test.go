package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

//nolint:paralleltest // mutates package globals
func TestApply_FillsFromBuildInfo(t *testing.T) {
	saved := [3]string{Version, Commit, Date}

	t.Cleanup(func() { Version, Commit, Date = saved[0], saved[1], saved[2] })

	Version, Commit, Date = "dev", "none", "unknown"

	apply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: settingRevision, Value: "0123456789abcdef0123"},
			{Key: settingTime, Value: "2026-01-02T03:04:05Z"},
			{Key: settingModified, Value: "true"},
		},
	})

	assert.Equal(t, "v1.2.3", Version)
	assert.Equal(t, "0123456789ab-dirty", Commit)
	assert.Equal(t, "2026-01-02T03:04:05Z", Date)
}

//nolint:paralleltest // mutates package globals
func TestApply_KeepsInjectedValues(t *testing.T) {
	saved := [3]string{Version, Commit, Date}

	t.Cleanup(func() { Version, Commit, Date = saved[0], saved[1], saved[2] })

	Version, Commit, Date = "v9.0.0", "abc", "today"

	apply(&debug.BuildInfo{
		Main:     debug.Module{Version: develVersion},
		Settings: []debug.BuildSetting{{Key: settingRevision, Value: "ffff"}},
	})

	assert.Equal(t, "v9.0.0", Version)
	assert.Equal(t, "abc", Commit)
	assert.Equal(t, "today", Date)
}
