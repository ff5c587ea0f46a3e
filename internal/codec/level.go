package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// levelSpec describes a format's compression level range and its named
// shortcuts. Each format interprets the raw --level text against its own
// spec, so "best" means 9 for gzip but 22 for zstd.
type levelSpec struct {
	name     string
	min, max int
	def      int
	names    map[string]int
}

// parse resolves the raw flag text to a concrete level. Empty text means the
// format default. Integers must fall within the format range; out-of-range
// names are clamped since they express intent ("none" on a format without a
// no-compression level means the weakest one).
func (s levelSpec) parse(text string) (int, error) {
	if text == "" {
		return s.def, nil
	}

	if n, err := strconv.Atoi(text); err == nil {
		if n < s.min || n > s.max {
			return 0, fmt.Errorf("%s compression level must be %d to %d", s.name, s.min, s.max)
		}
		return n, nil
	}

	if n, ok := s.names[strings.ToLower(text)]; ok {
		return s.clamp(n), nil
	}

	return 0, fmt.Errorf("invalid compression level %q (expected a number, none, fast or best)", text)
}

func (s levelSpec) clamp(n int) int {
	if n < s.min {
		return s.min
	}
	if n > s.max {
		return s.max
	}
	return n
}

var (
	gzipLevels = levelSpec{
		name: "gzip", min: 0, max: 9, def: 6,
		names: map[string]int{"none": 0, "fast": 1, "best": 9},
	}

	xzLevels = levelSpec{
		name: "xz", min: 0, max: 9, def: 6,
		names: map[string]int{"none": 0, "fast": 1, "best": 9},
	}

	bzip2Levels = levelSpec{
		name: "bzip2", min: 1, max: 9, def: 9,
		names: map[string]int{"none": 1, "fast": 1, "best": 9},
	}

	zstdLevels = levelSpec{
		name: "zstd", min: -7, max: 22, def: 6,
		names: map[string]int{"none": -7, "fast": 1, "best": 22},
	}
)
