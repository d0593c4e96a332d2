package application

import (
	"errors"

	"github.com/roomlayout/inventorymap/internal/domain"
	"github.com/roomlayout/inventorymap/internal/geometry"
)

// RenderedInstance is one canvas object projected into render pixels.
type RenderedInstance struct {
	ID          string              `json:"id"`
	ReferenceID string              `json:"reference_id,omitempty"`
	Kind        domain.GeometryKind `json:"kind"`
	Name        string              `json:"name,omitempty"`
	Type        string              `json:"type"`
	Orientation domain.Orientation  `json:"orientation,omitempty"`
	Selected    bool                `json:"selected"`
	Enterable   bool                `json:"enterable"`
	Rect        *geometry.Rect      `json:"rect,omitempty"`
	Line        *geometry.Line      `json:"line,omitempty"`
	PosX        int                 `json:"pos_x"`
	PosY        int                 `json:"pos_y"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
	ShelfRows   int                 `json:"shelf_rows,omitempty"`
	ShelfCols   int                 `json:"shelf_cols,omitempty"`
}

// StateView is the full canvas state for the current navigation context.
type StateView struct {
	Version     uint64              `json:"version"`
	Breadcrumbs []domain.Breadcrumb `json:"breadcrumbs"`
	ActiveID    string              `json:"active_id,omitempty"`
	Selection   []string            `json:"selection"`
	Canvas      *geometry.Canvas    `json:"canvas,omitempty"`
	Instances   []RenderedInstance  `json:"instances"`
}

// State projects the active parent's children onto the canvas at the given
// scale. Instances whose reference no longer resolves are skipped rather
// than rendered broken; walls never have a reference and always render.
func (s *LayoutService) State(scale, viewportW, viewportH float64) (StateView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return StateView{}, ErrNotLoaded
	}
	if scale <= 0 {
		scale = geometry.DefaultScale
	}

	view := StateView{
		Version:   s.version,
		Selection: s.selectionLocked(),
	}
	view.Breadcrumbs = make([]domain.Breadcrumb, len(s.crumbs))
	copy(view.Breadcrumbs, s.crumbs)
	if len(s.crumbs) == 0 {
		view.Instances = []RenderedInstance{}
		return view, nil
	}
	view.ActiveID = s.activeParentLocked()

	room, ok := s.index.Room(s.crumbs[0].ID)
	if !ok {
		return StateView{}, errors.New("active room no longer exists")
	}
	canvas := geometry.RoomCanvas(room, scale, viewportW, viewportH)
	view.Canvas = &canvas

	view.Instances = make([]RenderedInstance, 0)
	for _, inst := range s.ds.Instances {
		if inst.ParentID != view.ActiveID {
			continue
		}
		ri := RenderedInstance{
			ID:          inst.ID,
			ReferenceID: inst.ReferenceID,
			Kind:        inst.Kind,
			Orientation: inst.Orientation,
			PosX:        inst.PosX,
			PosY:        inst.PosY,
			Width:       inst.Width,
			Height:      inst.Height,
			ShelfRows:   inst.ShelfRows,
			ShelfCols:   inst.ShelfCols,
		}
		_, ri.Selected = s.selection[inst.ID]

		if inst.Kind == domain.KindWall {
			ri.Type = domain.TypeWall.String()
			line := geometry.WallLine(inst, scale)
			ri.Line = &line
			view.Instances = append(view.Instances, ri)
			continue
		}

		var objType domain.ObjectType
		if item, ok := s.index.Item(inst.ReferenceID); ok {
			objType = domain.ObjectTypeOf(item.Type)
			ri.Name = item.Name
			ri.Type = item.Type
		} else if cont, ok := s.index.Container(inst.ReferenceID); ok {
			objType = domain.ObjectTypeOf(cont.Type)
			ri.Name = cont.Name
			ri.Type = cont.Type
			ri.Enterable = objType.ContainerLike()
		} else {
			continue
		}
		rect := geometry.InstanceRect(inst, objType, canvas)
		ri.Rect = &rect
		view.Instances = append(view.Instances, ri)
	}
	return view, nil
}
