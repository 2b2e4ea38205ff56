package plugin

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions returns -1, 0 or 1 comparing two semantic versions. A
// leading "v" is tolerated. Unparseable versions compare as string
// equality: 0 when equal, -1 otherwise.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(strings.TrimPrefix(a, "v"))
	vb, errB := semver.NewVersion(strings.TrimPrefix(b, "v"))
	if errA != nil || errB != nil {
		if a == b {
			return 0
		}
		return -1
	}
	return va.Compare(vb)
}

// IsNewerVersion reports whether candidate is strictly newer than current.
func IsNewerVersion(candidate, current string) bool {
	return CompareVersions(candidate, current) > 0
}

// IsValidVersion reports whether v parses as a semantic version.
func IsValidVersion(v string) bool {
	_, err := semver.NewVersion(strings.TrimPrefix(v, "v"))
	return err == nil
}
