package application

import (
	"sort"
	"strings"
)

// UnplacedQuery filters and shapes the unplaced listing.
type UnplacedQuery struct {
	SiteID   string `json:"site_id"`
	RoomID   string `json:"room_id"`
	Search   string `json:"search"`
	GroupBy  bool   `json:"group_by_type"`
	SortDesc bool   `json:"sort_desc"`
}

type UnplacedEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Kind string `json:"kind"`
}

type UnplacedGroup struct {
	Type    string          `json:"type"`
	Entries []UnplacedEntry `json:"entries"`
}

type UnplacedResult struct {
	Entries []UnplacedEntry `json:"entries,omitempty"`
	Groups  []UnplacedGroup `json:"groups,omitempty"`
	Total   int             `json:"total"`
}

// Unplaced lists items and containers that exist in the hierarchy but have
// no instance on any canvas. Containers that host instances are excluded
// even without an instance of their own, as are entities stored inside a
// container (only top-level clutter shows up).
func (s *LayoutService) Unplaced(q UnplacedQuery) (UnplacedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return UnplacedResult{}, ErrNotLoaded
	}

	placed := make(map[string]struct{}, len(s.ds.Instances))
	hostsInstances := make(map[string]struct{}, len(s.ds.Instances))
	for _, inst := range s.ds.Instances {
		if inst.ReferenceID != "" {
			placed[inst.ReferenceID] = struct{}{}
		}
		hostsInstances[inst.ParentID] = struct{}{}
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))
	var entries []UnplacedEntry

	for _, item := range s.ds.Items {
		if _, ok := placed[item.ID]; ok {
			continue
		}
		parent := s.index.ResolveEffectiveParentID(item)
		if _, isCont := s.index.Container(parent); isCont {
			continue
		}
		if !s.inScopeLocked(item.ID, parent, q) {
			continue
		}
		entry := UnplacedEntry{ID: item.ID, Name: item.Name, Type: item.Type, Kind: "item"}
		if !matchSearch(entry, search) {
			continue
		}
		entries = append(entries, entry)
	}

	for _, cont := range s.ds.Containers {
		if _, ok := placed[cont.ID]; ok {
			continue
		}
		if _, ok := hostsInstances[cont.ID]; ok {
			continue
		}
		if _, isCont := s.index.Container(cont.ParentID); isCont {
			continue
		}
		if !s.inScopeLocked(cont.ID, cont.ParentID, q) {
			continue
		}
		entry := UnplacedEntry{ID: cont.ID, Name: cont.Name, Type: cont.Type, Kind: "container"}
		if !matchSearch(entry, search) {
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if q.SortDesc {
			return a > b
		}
		return a < b
	})

	result := UnplacedResult{Total: len(entries)}
	if !q.GroupBy {
		result.Entries = entries
		return result, nil
	}

	byType := make(map[string][]UnplacedEntry)
	for _, e := range entries {
		key := e.Type
		if key == "" {
			key = "(untyped)"
		}
		byType[key] = append(byType[key], e)
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		result.Groups = append(result.Groups, UnplacedGroup{Type: t, Entries: byType[t]})
	}
	return result, nil
}

// inScopeLocked checks the site/room filters. Room scope means the
// effective parent is exactly that room; site scope means the entity's
// resolved path passes through the site.
func (s *LayoutService) inScopeLocked(id, effectiveParent string, q UnplacedQuery) bool {
	if q.RoomID != "" {
		return effectiveParent == q.RoomID
	}
	if q.SiteID != "" {
		return s.index.PathContains(id, q.SiteID)
	}
	return true
}

func matchSearch(e UnplacedEntry, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Name), search) ||
		strings.Contains(strings.ToLower(e.Type), search) ||
		strings.Contains(strings.ToLower(e.ID), search)
}
