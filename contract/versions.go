package contract

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/erraggy/oasguard/schemarepo"
)

// version is a parsed OpenAPI version string such as "3.0.3" or "3.1.0-rc1".
type version struct {
	major      int
	minor      int
	patch      int
	prerelease string
}

// parseVersion parses "major.minor[.patch][-prerelease]".
func parseVersion(s string) (*version, error) {
	var prerelease string
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		prerelease = s[idx+1:]
		s = s[:idx]
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid version format: %q", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 || major > math.MaxInt32 {
		return nil, fmt.Errorf("invalid major version: %q", parts[0])
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 || minor > math.MaxInt32 {
		return nil, fmt.Errorf("invalid minor version: %q", parts[1])
	}

	patch := 0
	if len(parts) == 3 {
		patch, err = strconv.Atoi(parts[2])
		if err != nil || patch < 0 || patch > math.MaxInt32 {
			return nil, fmt.Errorf("invalid patch version: %q", parts[2])
		}
	}

	return &version{major: major, minor: minor, patch: patch, prerelease: prerelease}, nil
}

// supportedSeries maps each accepted major.minor series to its schema dialect.
var supportedSeries = map[[2]int]schemarepo.Dialect{
	{3, 0}: schemarepo.DialectOAS30,
	{3, 1}: schemarepo.DialectOAS31,
}

// dialectFor validates the declared openapi version and returns the schema dialect for it.
func dialectFor(declared string) (schemarepo.Dialect, error) {
	if declared == "" {
		return 0, fmt.Errorf("missing openapi version field")
	}
	v, err := parseVersion(declared)
	if err != nil {
		return 0, err
	}
	d, ok := supportedSeries[[2]int{v.major, v.minor}]
	if !ok {
		return 0, fmt.Errorf("unsupported openapi version %q (supported: 3.0.x, 3.1.x)", declared)
	}
	return d, nil
}
