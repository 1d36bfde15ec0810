package storage

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// sequencePattern matches "<group>_<n>.<ext>" with the group name taken literally
func sequencePattern(groupName string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(groupName) + `_(\d+)\.\w+$`)
}

// NextSequence scans dir for files named after groupName and returns the
// highest sequence found plus one. Nothing is persisted between calls, so
// files removed or added by hand are picked up on the next scan. A missing
// directory yields 1.
func NextSequence(groupName, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to scan group directory %s: %w", dir, err)
	}

	pattern := sequencePattern(groupName)
	highest := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			// more digits than an int holds
			continue
		}
		if n > highest {
			highest = n
		}
	}

	return highest + 1, nil
}

// SequentialName builds the on-disk name for sequence n
func SequentialName(groupName string, n int, ext string) string {
	return fmt.Sprintf("%s_%d.%s", groupName, n, ext)
}
