package firmware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version is a dotted numeric version such as 1.2.3.
type Version []int

// ParseVersion parses a dotted numeric version.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	v := make(Version, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		v[i] = n
	}
	return v, nil
}

// MustParseVersion is ParseVersion for constants. It panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1. Missing trailing components count as 0.
func (v Version) Compare(o Version) int {
	for i := 0; i < max(len(v), len(o)); i++ {
		a, b := 0, 0
		if i < len(v) {
			a = v[i]
		}
		if i < len(o) {
			b = o[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// String formats the version with dots.
func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

var imageNameRe = regexp.MustCompile(`Bifrost(?:_release_|-)(?P<type>.*?)(?:_software_|_)?(?P<version>\d+\.\d+\.\d+)\.bin`)

// Image is a parsed firmware file name.
type Image struct {
	Name    string
	Type    string
	Version Version
}

// ParseImageName extracts the component type and version from a firmware
// file name.
func ParseImageName(name string) (Image, error) {
	m := imageNameRe.FindStringSubmatch(name)
	if m == nil {
		return Image{}, fmt.Errorf("%w: %q", ErrUnrecognisedImage, name)
	}
	v, err := ParseVersion(m[imageNameRe.SubexpIndex("version")])
	if err != nil {
		return Image{}, err
	}
	return Image{
		Name:    name,
		Type:    m[imageNameRe.SubexpIndex("type")],
		Version: v,
	}, nil
}
