package change_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cif/pkg/change"
)

const sampleDiff = `diff --git a/auth/login.go b/auth/login.go
index 1111111..2222222 100644
--- a/auth/login.go
+++ b/auth/login.go
@@ -1,3 +1,5 @@
 package auth
-func Login() {}
+func Login() error {
+	return nil
+}
 // end
diff --git a/docs/old.md b/docs/old.md
deleted file mode 100644
index 3333333..0000000
--- a/docs/old.md
+++ /dev/null
@@ -1,2 +0,0 @@
-# Old
-text
diff --git a/internal/billing/new.go b/internal/billing/new.go
new file mode 100644
index 0000000..4444444
--- /dev/null
+++ b/internal/billing/new.go
@@ -0,0 +1,1 @@
+package billing
`

func TestFromUnifiedDiff_CountsLinesPerFile(t *testing.T) {
	t.Parallel()

	matcher := change.NewAreaMatcher(map[string][]string{
		"auth":    {"auth/"},
		"billing": {"internal/billing/"},
		"core":    {"internal/"},
	})

	in, err := change.FromUnifiedDiff(strings.NewReader(sampleDiff), "pr-42", matcher.Area)
	require.NoError(t, err)

	assert.Equal(t, "pr-42", in.Identifier)
	require.Len(t, in.Files, 3)

	assert.Equal(t, change.FileChange{Path: "auth/login.go", LinesAdded: 3, LinesRemoved: 1, Area: "auth"}, in.Files[0])
	assert.Equal(t, change.FileChange{Path: "docs/old.md", LinesAdded: 0, LinesRemoved: 2}, in.Files[1])
	assert.Equal(t, change.FileChange{Path: "internal/billing/new.go", LinesAdded: 1, LinesRemoved: 0, Area: "billing"}, in.Files[2])
}

func TestFromUnifiedDiff_EmptyDiffRejected(t *testing.T) {
	t.Parallel()

	_, err := change.FromUnifiedDiff(strings.NewReader(""), "empty", nil)
	require.ErrorIs(t, err, change.ErrNoFiles)
}

func TestAreaMatcher_LongestPrefixWins(t *testing.T) {
	t.Parallel()

	matcher := change.NewAreaMatcher(map[string][]string{
		"platform":   {"/services/"},
		"migrations": {"services/db/migrations"},
	})

	assert.Equal(t, "migrations", matcher.Area("services/db/migrations/001.sql"))
	assert.Equal(t, "platform", matcher.Area("/services/api/main.go"))
	assert.Empty(t, matcher.Area("cmd/main.go"))

	var nilMatcher *change.AreaMatcher
	assert.Empty(t, nilMatcher.Area("anything"))
}

const nestedPrefixDiff = `diff --git a/a/auth.go b/a/auth.go
index 1111111..2222222 100644
--- a/a/auth.go
+++ b/a/auth.go
@@ -1,1 +1,2 @@
 package a
+// one
diff --git a/auth.go b/auth.go
index 3333333..4444444 100644
--- a/auth.go
+++ b/auth.go
@@ -1,1 +1,2 @@
 package auth
+// two
diff --git a/b/gone.go b/b/gone.go
deleted file mode 100644
index 5555555..0000000
--- a/b/gone.go
+++ /dev/null
@@ -1,1 +0,0 @@
-package b
`

func TestFromUnifiedDiff_KeepsTopLevelDirectoriesNamedLikePrefixes(t *testing.T) {
	t.Parallel()

	matcher := change.NewAreaMatcher(map[string][]string{"legacy": {"a/"}})

	in, err := change.FromUnifiedDiff(strings.NewReader(nestedPrefixDiff), "pr-7", matcher.Area)
	require.NoError(t, err)

	require.Len(t, in.Files, 3)
	assert.Equal(t, "a/auth.go", in.Files[0].Path)
	assert.Equal(t, "legacy", in.Files[0].Area)
	assert.Equal(t, "auth.go", in.Files[1].Path)
	assert.Empty(t, in.Files[1].Area)
	assert.Equal(t, "b/gone.go", in.Files[2].Path)
	assert.Equal(t, 1, in.Files[2].LinesRemoved)
	assert.Equal(t, 3, in.DistinctPaths())
}
