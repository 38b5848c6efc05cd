package protoserde

import "strings"

// Presence is the bit flag collected by UnmarshalWithMeta.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Key appeared in the input.
	PresenceWasNull                             // Value was null.
	PresenceDefaultApplied                      // Missing field was filled with its zero value.
)

// PresenceMap maps JSON Pointers to Presence flags. The root object is "/".
type PresenceMap map[string]Presence

// Has reports whether all flags in p are set for path.
func (pm PresenceMap) Has(path string, p Presence) bool { return pm[path]&p == p }

// Decoded carries a decoded message along with presence metadata.
type Decoded struct {
	Value    *Message
	Presence PresenceMap
}

// PresenceOpt narrows the paths kept in a PresenceMap. Include and Exclude are
// JSON Pointer prefixes; an empty Include keeps everything.
type PresenceOpt struct {
	Include []string
	Exclude []string
}

func (o PresenceOpt) empty() bool { return len(o.Include) == 0 && len(o.Exclude) == 0 }

func applyPresenceOptions(pm PresenceMap, popt PresenceOpt) PresenceMap {
	if pm == nil || popt.empty() {
		return pm
	}
	shouldInclude := func(path string) bool {
		if len(popt.Include) > 0 {
			ok := false
			for _, p := range popt.Include {
				if strings.HasPrefix(path, p) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		for _, p := range popt.Exclude {
			if strings.HasPrefix(path, p) {
				return false
			}
		}
		return true
	}
	filtered := make(PresenceMap, len(pm))
	for k, v := range pm {
		if shouldInclude(k) {
			filtered[k] = v
		}
	}
	return filtered
}
