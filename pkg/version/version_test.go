package version_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/cif/pkg/version"
)

func TestString_ContainsFields(t *testing.T) {
	t.Parallel()

	s := version.String()

	assert.True(t, strings.HasPrefix(s, "cif "))
	assert.Contains(t, s, version.Version)
	assert.Contains(t, s, "commit: "+version.Commit)
	assert.Contains(t, s, "built: "+version.Date)
}
