package effect

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Style selects the characters an effect applies to.
type Style int

const (
	// All selects every visible character.
	All Style = iota
	// AllOdd selects visible characters with an odd index.
	AllOdd
	// AllEven selects visible characters with an even index.
	AllEven
	// CustomIndices selects the effect's explicit index list.
	CustomIndices
)

var styleNames = map[Style]string{
	All:           "all",
	AllOdd:        "odd",
	AllEven:       "even",
	CustomIndices: "custom",
}

func (s Style) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle accepts the short names and the long upper-case forms
// (ALL_CHARACTERS, ALL_ODD_CHARACTERS, ALL_EVEN_CHARACTERS, CUSTOM_INDICES).
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "all_characters":
		return All, nil
	case "odd", "all_odd", "all_odd_characters":
		return AllOdd, nil
	case "even", "all_even", "all_even_characters":
		return AllEven, nil
	case "custom", "custom_indices":
		return CustomIndices, nil
	}
	return All, fmt.Errorf("unknown effect style %q", s)
}

// Selects reports whether the style picks index i on parity alone.
func (s Style) Selects(i int) bool {
	switch s {
	case All:
		return true
	case AllOdd:
		return i%2 == 1
	case AllEven:
		return i%2 == 0
	default:
		return false
	}
}

func (s Style) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Style) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseStyle(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
