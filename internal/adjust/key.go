package adjust

import (
	"fmt"
	"strings"

	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
)

// Side tags which face an adjustment belongs to.
type Side uint8

const (
	Front Side = iota + 1
	Back
)

func (s Side) String() string {
	switch s {
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return "unknown"
	}
}

// Key identifies one adjustment: a front face of a specific item, or the back
// face shared by every item of a series.
type Key struct {
	Side   Side
	Item   catalog.ItemID
	Series string
}

// FrontKey returns the key for an item's front face.
func FrontKey(id catalog.ItemID) Key {
	return Key{Side: Front, Item: id}
}

// BackKey returns the key for the back face of a series.
func BackKey(series string) Key {
	return Key{Side: Back, Series: series}
}

func (k Key) String() string {
	if k.Side == Back {
		return "back(" + k.Series + ")"
	}
	return "front(" + k.Item.Head + "," + k.Item.Tail + ")"
}

const legacyBackPrefix = "back-"

// Legacy returns the string key used by the saved-template format:
// "<head>-<tail>" for fronts and "back-<series>" for backs.
func (k Key) Legacy() string {
	if k.Side == Back {
		return legacyBackPrefix + k.Series
	}
	return k.Item.Head + "-" + k.Item.Tail
}

// ParseLegacyKey parses a saved-template adjustment key. Head and tail are
// hex strings, so a "back-" prefix is unambiguous.
func ParseLegacyKey(s string) (Key, error) {
	if series, ok := strings.CutPrefix(s, legacyBackPrefix); ok {
		if series == "" {
			return Key{}, fmt.Errorf("adjustment key %q has no series", s)
		}
		return BackKey(series), nil
	}
	head, tail, ok := strings.Cut(s, "-")
	if !ok || head == "" || tail == "" {
		return Key{}, fmt.Errorf("invalid adjustment key %q", s)
	}
	return FrontKey(catalog.ItemID{Head: head, Tail: tail}), nil
}
