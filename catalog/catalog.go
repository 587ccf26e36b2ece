package catalog

import (
	"fmt"
	"sort"
)

// Select returns the store and load entries whose name is listed, in catalogue order.
// An empty list selects everything. Unknown names are an error.
func Select(names []string) (stores []*Entry, loads []*Entry, err error) {
	stores, loads = Stores(), Loads()
	if len(names) == 0 {
		return stores, loads, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = false
	}
	keep := func(entries []*Entry) []*Entry {
		var out []*Entry
		for _, e := range entries {
			if _, ok := want[e.Name]; ok {
				want[e.Name] = true
				out = append(out, e)
			}
		}
		return out
	}
	stores, loads = keep(stores), keep(loads)
	var unknown []string
	for n, found := range want {
		if !found {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, nil, fmt.Errorf("unknown primitives %q", unknown)
	}
	return stores, loads, nil
}

// Lookup finds an entry by name across the store and load tables.
func Lookup(name string) (*Entry, bool) {
	for _, e := range append(Stores(), Loads()...) {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}
