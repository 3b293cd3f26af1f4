// Package compare computes per-endpoint interface deficiencies across
// several enumerated endpoints.
package compare

import (
	"sort"

	"github.com/danmuck/compcheck/internal/registry"
)

// Endpoint is the input view of one enumerated endpoint.
type Endpoint struct {
	Label      string
	Interfaces registry.InterfaceSet
}

// Missing is an interface version some other endpoint advertises that this
// endpoint lacks or only has in an older version.
type Missing struct {
	Name     string
	Required uint32
	Owned    uint32
	HasOwned bool
}

type pair struct {
	name    string
	version uint32
}

// Diff returns, in input order, the deficiencies of each endpoint sorted
// by name and then required version. Inputs are not modified.
func Diff(endpoints []Endpoint) [][]Missing {
	union := make(map[pair]struct{})
	for _, ep := range endpoints {
		for name, version := range ep.Interfaces {
			union[pair{name, version}] = struct{}{}
		}
	}

	out := make([][]Missing, len(endpoints))
	for i, ep := range endpoints {
		out[i] = missingFrom(union, ep.Interfaces)
	}
	return out
}

func missingFrom(union map[pair]struct{}, own registry.InterfaceSet) []Missing {
	var missing []Missing
	for p := range union {
		owned, has := own[p.name]
		if has && owned >= p.version {
			continue
		}
		missing = append(missing, Missing{
			Name:     p.name,
			Required: p.version,
			Owned:    owned,
			HasOwned: has,
		})
	}
	sort.Slice(missing, func(a, b int) bool {
		if missing[a].Name != missing[b].Name {
			return missing[a].Name < missing[b].Name
		}
		return missing[a].Required < missing[b].Required
	})
	return missing
}
