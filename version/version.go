package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the semver of the current build.
var Version = "0.2.1"

func GetCurrentVersion() string {
	return Version
}

// GetSchemaVersion returns the version used to stamp the database schema.
// Patch releases never change the schema, so the patch part is pinned to 0.
func GetSchemaVersion(version string) string {
	minorVersion := GetMinorVersion(version)
	return minorVersion + ".0"
}

func GetMinorVersion(version string) string {
	versionList := strings.Split(version, ".")
	if len(versionList) < 2 {
		return ""
	}
	return strings.Join(versionList[:2], ".")
}

func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) > -1
}

func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare(fmt.Sprintf("v%s", version), fmt.Sprintf("v%s", target)) > 0
}

// SortVersion sorts a version list in ascending semver order.
func SortVersion(versionList []string) func(i, j int) bool {
	return func(i, j int) bool {
		return semver.Compare(fmt.Sprintf("v%s", versionList[i]), fmt.Sprintf("v%s", versionList[j])) == -1
	}
}
