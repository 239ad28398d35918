package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var sizeRe = regexp.MustCompile(`^(\d+)(K|KB|G|GB|M|MB|T|TB)?$`)

// ParseSizeToMB converts strings like "10G", "500M", "1024" into Megabytes (int).
// Default unit is MB if no suffix is provided.
func ParseSizeToMB(sizeStr string) (int, error) {
	s := strings.TrimSpace(strings.ToUpper(sizeStr))

	matches := sizeRe.FindStringSubmatch(s)
	if len(matches) < 2 {
		return 0, fmt.Errorf("invalid size format: %s (expected '10G', '500M', etc.)", sizeStr)
	}

	val, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", matches[1])
	}

	switch matches[2] {
	case "K", "KB":
		return val / 1024, nil
	case "G", "GB":
		return val * 1024, nil
	case "T", "TB":
		return val * 1048576, nil
	default:
		return val, nil
	}
}

// ParseEnvAssignment splits "NAME=VALUE" into its parts.
// The value may be empty or contain further '=' characters.
func ParseEnvAssignment(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid environment assignment %q (expected NAME=VALUE)", s)
	}
	return name, value, nil
}

// SplitList splits a comma or whitespace separated list, dropping empty items.
// "gcc/12, openmpi/4.1" -> ["gcc/12", "openmpi/4.1"]
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
