package hierarchy

import (
	"strings"

	"github.com/roomlayout/inventorymap/internal/domain"
)

type NodeKind string

const (
	KindSite      NodeKind = "site"
	KindRoom      NodeKind = "room"
	KindContainer NodeKind = "container"
)

// Node is one resolved ancestor in a containment chain.
type Node struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Kind NodeKind `json:"kind"`
}

// Index holds identity-keyed lookup maps over one dataset snapshot. Build
// it once per snapshot and throw it away with the snapshot; all lookups are
// O(1) and read-only.
type Index struct {
	version    uint64
	sites      map[string]domain.Site
	rooms      map[string]domain.Room
	containers map[string]domain.Container
	items      map[string]domain.Item
	instances  map[string]domain.Instance

	sitesByName map[string]string            // lower(name) -> id
	roomsBySite map[string]map[string]string // siteID -> lower(name) -> id
	contsByRoom map[string]map[string]string // roomID -> lower(name) -> id
}

func NewIndex(ds *domain.Dataset) *Index {
	ix := &Index{
		version:     ds.Version,
		sites:       make(map[string]domain.Site, len(ds.Sites)),
		rooms:       make(map[string]domain.Room, len(ds.Rooms)),
		containers:  make(map[string]domain.Container, len(ds.Containers)),
		items:       make(map[string]domain.Item, len(ds.Items)),
		instances:   make(map[string]domain.Instance, len(ds.Instances)),
		sitesByName: make(map[string]string, len(ds.Sites)),
		roomsBySite: make(map[string]map[string]string),
		contsByRoom: make(map[string]map[string]string),
	}
	for _, s := range ds.Sites {
		ix.sites[s.ID] = s
		ix.sitesByName[strings.ToLower(s.Name)] = s.ID
	}
	for _, r := range ds.Rooms {
		ix.rooms[r.ID] = r
		byName := ix.roomsBySite[r.SiteID]
		if byName == nil {
			byName = make(map[string]string)
			ix.roomsBySite[r.SiteID] = byName
		}
		byName[strings.ToLower(r.Name)] = r.ID
	}
	for _, c := range ds.Containers {
		ix.containers[c.ID] = c
		byName := ix.contsByRoom[c.ParentID]
		if byName == nil {
			byName = make(map[string]string)
			ix.contsByRoom[c.ParentID] = byName
		}
		byName[strings.ToLower(c.Name)] = c.ID
	}
	for _, it := range ds.Items {
		ix.items[it.ID] = it
	}
	for _, in := range ds.Instances {
		ix.instances[in.ID] = in
	}
	return ix
}

func (ix *Index) Version() uint64 { return ix.version }

func (ix *Index) Site(id string) (domain.Site, bool) {
	s, ok := ix.sites[id]
	return s, ok
}

func (ix *Index) Room(id string) (domain.Room, bool) {
	r, ok := ix.rooms[id]
	return r, ok
}

func (ix *Index) Container(id string) (domain.Container, bool) {
	c, ok := ix.containers[id]
	return c, ok
}

func (ix *Index) Item(id string) (domain.Item, bool) {
	it, ok := ix.items[id]
	return it, ok
}

func (ix *Index) Instance(id string) (domain.Instance, bool) {
	in, ok := ix.instances[id]
	return in, ok
}

// ResolveParent returns the direct parent node of a room, container, item
// or instance id: ParentID for containers and instances, SiteID for rooms,
// the effective parent for items. Sites have no parent.
func (ix *Index) ResolveParent(id string) (Node, bool) {
	if c, ok := ix.containers[id]; ok {
		return ix.nodeByID(c.ParentID)
	}
	if r, ok := ix.rooms[id]; ok {
		return ix.nodeByID(r.SiteID)
	}
	if in, ok := ix.instances[id]; ok {
		return ix.nodeByID(in.ParentID)
	}
	if it, ok := ix.items[id]; ok {
		return ix.nodeByID(ix.ResolveEffectiveParentID(it))
	}
	return Node{}, false
}

// FullPath returns the ancestors of id ordered Site first, the entity
// itself excluded. Chains through containers end at the containing room's
// site. The walk stops at the first unresolved parent and returns the
// partial path; a visited set breaks parent cycles in malformed data.
func (ix *Index) FullPath(id string) []Node {
	var reversed []Node
	visited := map[string]struct{}{id: {}}
	current := id
	for {
		parent, ok := ix.ResolveParent(current)
		if !ok {
			break
		}
		if _, seen := visited[parent.ID]; seen {
			break
		}
		visited[parent.ID] = struct{}{}
		reversed = append(reversed, parent)
		if parent.Kind == KindSite {
			break
		}
		current = parent.ID
	}
	path := make([]Node, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// ResolveLegacyParent matches an item's stored site/room/container names
// against the current collections: site by name, then room by name within
// that site, then optionally container by name within that room. New data
// must not depend on this path.
func (ix *Index) ResolveLegacyParent(item domain.Item) string {
	siteID, ok := ix.sitesByName[strings.ToLower(strings.TrimSpace(item.SiteName))]
	if !ok {
		return ""
	}
	roomID, ok := ix.roomsBySite[siteID][strings.ToLower(strings.TrimSpace(item.RoomName))]
	if !ok {
		return ""
	}
	if name := strings.ToLower(strings.TrimSpace(item.ContainerName)); name != "" {
		if contID, ok := ix.contsByRoom[roomID][name]; ok {
			return contID
		}
	}
	return roomID
}

// ResolveEffectiveParentID prefers the modern ParentObjectID and falls back
// to legacy name matching only when it is absent. Empty means unresolvable.
func (ix *Index) ResolveEffectiveParentID(item domain.Item) string {
	if strings.TrimSpace(item.ParentObjectID) != "" {
		return item.ParentObjectID
	}
	return ix.ResolveLegacyParent(item)
}

// PathContains reports whether the full path of id passes through ancestorID.
func (ix *Index) PathContains(id, ancestorID string) bool {
	for _, node := range ix.FullPath(id) {
		if node.ID == ancestorID {
			return true
		}
	}
	return false
}

func (ix *Index) nodeByID(id string) (Node, bool) {
	if id == "" {
		return Node{}, false
	}
	if s, ok := ix.sites[id]; ok {
		return Node{ID: s.ID, Name: s.Name, Kind: KindSite}, true
	}
	if r, ok := ix.rooms[id]; ok {
		return Node{ID: r.ID, Name: r.Name, Kind: KindRoom}, true
	}
	if c, ok := ix.containers[id]; ok {
		return Node{ID: c.ID, Name: c.Name, Kind: KindContainer}, true
	}
	return Node{}, false
}
