package domain

import "strings"

type Site struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
	RowPos  int    `json:"-"`
}

type Room struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SiteID     string `json:"site_id"`
	Dimensions string `json:"dimensions"`
	GridWidth  int    `json:"grid_width"`
	GridHeight int    `json:"grid_height"`
	RowPos     int    `json:"-"`
}

type Container struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parent_id"`
	Notes    string `json:"notes"`
	RowPos   int    `json:"-"`
}

type Item struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	ParentObjectID string `json:"parent_object_id"`
	// Legacy placement fields, resolved by name only when ParentObjectID
	// is absent.
	SiteName      string `json:"site_name,omitempty"`
	RoomName      string `json:"room_name,omitempty"`
	ContainerName string `json:"container_name,omitempty"`
	RowPos        int    `json:"-"`
}

type GeometryKind string

const (
	KindRect GeometryKind = "rect"
	KindWall GeometryKind = "wall"
)

// Instance places a referenced Item or Container (or a free-standing wall
// segment) inside a parent Room or Container. Rect fields are grid cells,
// wall endpoints are physical feet.
type Instance struct {
	ID          string       `json:"id"`
	ParentID    string       `json:"parent_id"`
	ReferenceID string       `json:"reference_id,omitempty"`
	Kind        GeometryKind `json:"kind"`
	PosX        int          `json:"pos_x"`
	PosY        int          `json:"pos_y"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	Orientation Orientation  `json:"orientation,omitempty"`
	ShelfRows   int          `json:"shelf_rows,omitempty"`
	ShelfCols   int          `json:"shelf_cols,omitempty"`
	X1          float64      `json:"x1,omitempty"`
	Y1          float64      `json:"y1,omitempty"`
	X2          float64      `json:"x2,omitempty"`
	Y2          float64      `json:"y2,omitempty"`
	RowPos      int          `json:"-"`
}

type Orientation string

const (
	OrientationHorizontal Orientation = "Horizontal"
	OrientationVertical   Orientation = "Vertical"
	OrientationEast       Orientation = "East"
	OrientationSouth      Orientation = "South"
	OrientationWest       Orientation = "West"
	OrientationNorth      Orientation = "North"
)

// ObjectType is the closed set of behaviors an instance's backing type can
// select. The stored type string stays free-form; classification is total.
type ObjectType int

const (
	TypeGenericItem ObjectType = iota
	TypeShelf
	TypeContainer
	TypeDoor
	TypeWall
	TypeFloorPatch
)

func (t ObjectType) String() string {
	switch t {
	case TypeShelf:
		return "Shelf"
	case TypeContainer:
		return "Container"
	case TypeDoor:
		return "Door"
	case TypeWall:
		return "Wall"
	case TypeFloorPatch:
		return "FloorPatch"
	default:
		return "GenericItem"
	}
}

var floorPatchMaterials = map[string]struct{}{
	"floor":    {},
	"tile":     {},
	"carpet":   {},
	"hardwood": {},
	"concrete": {},
	"rug":      {},
}

// ObjectTypeOf classifies a stored AssetType/ContainerType string. Unknown
// strings are generic items.
func ObjectTypeOf(typeName string) ObjectType {
	name := strings.ToLower(strings.TrimSpace(typeName))
	switch name {
	case "shelf", "shelving":
		return TypeShelf
	case "container", "bin", "cabinet":
		return TypeContainer
	case "door":
		return TypeDoor
	case "wall":
		return TypeWall
	}
	if _, ok := floorPatchMaterials[name]; ok {
		return TypeFloorPatch
	}
	return TypeGenericItem
}

// Structural types duplicate by instance only: paste reuses the backing
// entity instead of cloning it.
func (t ObjectType) Structural() bool {
	switch t {
	case TypeShelf, TypeContainer, TypeDoor, TypeWall, TypeFloorPatch:
		return true
	default:
		return false
	}
}

// ContainerLike reports whether instances of this type accept child
// placements of their own.
func (t ObjectType) ContainerLike() bool {
	return t == TypeShelf || t == TypeContainer
}

type Breadcrumb struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Dataset is one immutable snapshot of every collection, rebuilt in full
// after each committed mutation. Version increases on every rebuild so
// derived indexes can be memoized against it.
type Dataset struct {
	Version    uint64
	Sites      []Site
	Rooms      []Room
	Containers []Container
	Items      []Item
	Instances  []Instance
}
