package change

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const (
	devNull         = "/dev/null"
	origPrefix      = "a/"
	newPrefix       = "b/"
	addedMarker     = '+'
	removedMarker   = '-'
	hunkLineSep     = "\n"
	areaPrefixSlash = "/"
)

// FromUnifiedDiff builds an Input from a unified diff such as the output of
// `git diff`. Each file in the diff becomes one FileChange in diff order.
// areaOf, when non-nil, assigns an area tag to each path.
func FromUnifiedDiff(r io.Reader, identifier string, areaOf func(path string) string) (Input, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(r).ReadAllFiles()
	if err != nil {
		return Input{}, fmt.Errorf("%w: parse unified diff: %w", ErrDecode, err)
	}

	in := Input{
		Identifier: identifier,
		Files:      make([]FileChange, 0, len(fileDiffs)),
	}

	for _, fd := range fileDiffs {
		path := diffPath(fd)
		if path == "" {
			continue
		}

		added, removed := countHunkLines(fd.Hunks)

		fc := FileChange{Path: path, LinesAdded: added, LinesRemoved: removed}
		if areaOf != nil {
			fc.Area = areaOf(path)
		}

		in.Files = append(in.Files, fc)
	}

	validateErr := in.Validate()
	if validateErr != nil {
		return Input{}, validateErr
	}

	return in, nil
}

// diffPath picks the post-change name, falling back to the original name
// for deletions. Only the prefix of the side the name came from is removed.
func diffPath(fd *diff.FileDiff) string {
	if fd.NewName != "" && fd.NewName != devNull {
		return strings.TrimPrefix(fd.NewName, newPrefix)
	}

	if fd.OrigName == "" || fd.OrigName == devNull {
		return ""
	}

	return strings.TrimPrefix(fd.OrigName, origPrefix)
}

func countHunkLines(hunks []*diff.Hunk) (int, int) {
	added, removed := 0, 0

	for _, hunk := range hunks {
		for line := range bytes.SplitSeq(hunk.Body, []byte(hunkLineSep)) {
			if len(line) == 0 {
				continue
			}

			switch line[0] {
			case addedMarker:
				added++
			case removedMarker:
				removed++
			}
		}
	}

	return added, removed
}

// AreaMatcher assigns area tags to paths by prefix. The longest matching
// prefix wins; ties go to the area name that sorts first.
type AreaMatcher struct {
	entries []areaPrefix
}

type areaPrefix struct {
	prefix string
	area   string
}

// NewAreaMatcher builds a matcher from area -> path prefixes.
func NewAreaMatcher(areas map[string][]string) *AreaMatcher {
	entries := make([]areaPrefix, 0, len(areas))

	for area, prefixes := range areas {
		for _, p := range prefixes {
			p = strings.TrimPrefix(strings.TrimSpace(p), areaPrefixSlash)
			if p == "" {
				continue
			}

			entries = append(entries, areaPrefix{prefix: p, area: area})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].prefix) != len(entries[j].prefix) {
			return len(entries[i].prefix) > len(entries[j].prefix)
		}

		return entries[i].area < entries[j].area
	})

	return &AreaMatcher{entries: entries}
}

// Area returns the area for path, or "" when no prefix matches.
func (m *AreaMatcher) Area(path string) string {
	if m == nil {
		return ""
	}

	path = strings.TrimPrefix(path, areaPrefixSlash)

	for _, e := range m.entries {
		if strings.HasPrefix(path, e.prefix) {
			return e.area
		}
	}

	return ""
}
