// Package roleclassifier implements the substring-based device-name →
// role heuristic shared by the device parser's device_overview.role
// field and the topology store's default node roles. Stored overrides
// always win over what this package derives.
package roleclassifier

import "strings"

// Role values the classifier can produce.
const (
	RoleCore         = "core"
	RoleDistribution = "distribution"
	RoleAccess       = "access"
	RoleRouter       = "router"
	RoleUnknown      = "unknown"
)

// Classify maps a device name to a role by substring match, first match
// wins: core, then dist/distribution, then access, then router.
func Classify(deviceName string) string {
	lower := strings.ToLower(deviceName)
	switch {
	case strings.Contains(lower, "core"):
		return RoleCore
	case strings.Contains(lower, "dist"):
		return RoleDistribution
	case strings.Contains(lower, "access"):
		return RoleAccess
	case strings.Contains(lower, "router"):
		return RoleRouter
	default:
		return RoleUnknown
	}
}
