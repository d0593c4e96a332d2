package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/roomlayout/inventorymap/internal/domain"
	"github.com/roomlayout/inventorymap/internal/geometry"
	"github.com/roomlayout/inventorymap/internal/hierarchy"
	"github.com/roomlayout/inventorymap/internal/metrics"
	"github.com/rs/zerolog"
)

var (
	ErrNoActiveContext = errors.New("no active room or container selected")
	ErrConfirmRequired = errors.New("destructive operation requires confirmation")
	ErrNotLoaded       = errors.New("dataset not loaded")
)

// Observer is invoked after every committed mutation, once the full
// dataset has been reloaded.
type Observer func()

// LayoutService owns the in-memory placement tables and every lifecycle
// operation over them. Mutations write to the row store first, then the
// whole dataset is refetched and derived state rebuilt; there is no
// incremental patch path.
type LayoutService struct {
	store domain.RowStore
	log   zerolog.Logger

	mu        sync.Mutex
	ds        *domain.Dataset
	index     *hierarchy.Index
	version   uint64
	crumbs    []domain.Breadcrumb
	selection map[string]struct{}
	clipboard []clipboardEntry
	observers []Observer
}

func NewLayoutService(store domain.RowStore, log zerolog.Logger) *LayoutService {
	return &LayoutService{
		store:     store,
		log:       log,
		selection: make(map[string]struct{}),
	}
}

// Init performs the initial full load. The layout engine is unusable until
// the hierarchy collections have been read once.
func (s *LayoutService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

// Reload refetches every sheet and rebuilds all derived structures.
func (s *LayoutService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

// OnDataChanged registers an observer for the datachanged notification.
func (s *LayoutService) OnDataChanged(fn Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *LayoutService) reloadLocked(ctx context.Context) error {
	start := time.Now()
	ds := &domain.Dataset{Version: s.version + 1}

	var err error
	if ds.Sites, err = readSheet(ctx, s.store, SheetSites, decodeSite); err != nil {
		return fmt.Errorf("load sites: %w", err)
	}
	if ds.Rooms, err = readSheet(ctx, s.store, SheetRooms, decodeRoom); err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	if ds.Containers, err = readSheet(ctx, s.store, SheetContainers, decodeContainer); err != nil {
		return fmt.Errorf("load containers: %w", err)
	}
	if ds.Items, err = readSheet(ctx, s.store, SheetItems, decodeItem); err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	if ds.Instances, err = readSheet(ctx, s.store, SheetInstances, decodeInstance); err != nil {
		return fmt.Errorf("load instances: %w", err)
	}

	s.version = ds.Version
	s.ds = ds
	s.index = hierarchy.NewIndex(ds)
	s.pruneNavigationLocked()
	s.pruneSelectionLocked()
	metrics.Reloads.Inc()
	metrics.ReloadDuration.Observe(time.Since(start).Seconds())
	s.log.Debug().
		Uint64("version", ds.Version).
		Int("instances", len(ds.Instances)).
		Msg("dataset reloaded")
	return nil
}

func readSheet[T any](ctx context.Context, store domain.RowStore, sheet string, decode func(domain.Row, int) T) ([]T, error) {
	rows, err := store.Read(ctx, sheet)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		out = append(out, decode(row, i+1))
	}
	return out, nil
}

func (s *LayoutService) notifyLocked() {
	for _, fn := range s.observers {
		fn()
	}
}

// Dataset returns the current snapshot. Callers must treat it as
// read-only; it is replaced wholesale on the next reload.
func (s *LayoutService) Dataset() *domain.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds
}

// Index returns the hierarchy index over the current snapshot.
func (s *LayoutService) Index() *hierarchy.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// --- entity management -------------------------------------------------

func (s *LayoutService) CreateSite(ctx context.Context, name, address, notes string) (domain.Site, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Site{}, errors.New("site name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	site := domain.Site{ID: uuid.NewString(), Name: strings.TrimSpace(name), Address: address, Notes: notes}
	if _, err := s.store.Append(ctx, SheetSites, encodeSite(site)); err != nil {
		metrics.MutationErrors.WithLabelValues("site.create").Inc()
		return domain.Site{}, fmt.Errorf("append site row: %w", err)
	}
	return site, s.commitLocked(ctx, "site.create")
}

func (s *LayoutService) CreateRoom(ctx context.Context, siteID, name, dimensions string, gridW, gridH int) (domain.Room, error) {
	if strings.TrimSpace(siteID) == "" || strings.TrimSpace(name) == "" {
		return domain.Room{}, errors.New("site_id and name are required")
	}
	if gridW <= 0 {
		gridW = geometry.DefaultGridWidth
	}
	if gridH <= 0 {
		gridH = geometry.DefaultGridHeight
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return domain.Room{}, ErrNotLoaded
	}
	if _, ok := s.index.Site(siteID); !ok {
		return domain.Room{}, errors.New("site not found")
	}
	room := domain.Room{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		SiteID:     siteID,
		Dimensions: strings.TrimSpace(dimensions),
		GridWidth:  gridW,
		GridHeight: gridH,
	}
	if _, err := s.store.Append(ctx, SheetRooms, encodeRoom(room)); err != nil {
		metrics.MutationErrors.WithLabelValues("room.create").Inc()
		return domain.Room{}, fmt.Errorf("append room row: %w", err)
	}
	return room, s.commitLocked(ctx, "room.create")
}

func (s *LayoutService) CreateItem(ctx context.Context, name, typeName, parentObjectID string) (domain.Item, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Item{}, errors.New("item name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item := domain.Item{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(name),
		Type:           strings.TrimSpace(typeName),
		ParentObjectID: strings.TrimSpace(parentObjectID),
	}
	if _, err := s.store.Append(ctx, SheetItems, encodeItem(item)); err != nil {
		metrics.MutationErrors.WithLabelValues("item.create").Inc()
		return domain.Item{}, fmt.Errorf("append item row: %w", err)
	}
	return item, s.commitLocked(ctx, "item.create")
}

// DeleteSite removes only the site's own row. Descendant rooms, containers
// and items are left in place and become unresolvable orphans.
func (s *LayoutService) DeleteSite(ctx context.Context, siteID string, confirm bool) error {
	if !confirm {
		return ErrConfirmRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	site, ok := s.index.Site(siteID)
	if !ok {
		return errors.New("site not found")
	}
	if err := s.store.DeleteRows(ctx, SheetSites, site.RowPos, site.RowPos); err != nil {
		metrics.MutationErrors.WithLabelValues("site.delete").Inc()
		return fmt.Errorf("delete site row: %w", err)
	}
	return s.commitLocked(ctx, "site.delete")
}

// DeleteRoom mirrors DeleteSite: one row, no cascade.
func (s *LayoutService) DeleteRoom(ctx context.Context, roomID string, confirm bool) error {
	if !confirm {
		return ErrConfirmRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	room, ok := s.index.Room(roomID)
	if !ok {
		return errors.New("room not found")
	}
	if err := s.store.DeleteRows(ctx, SheetRooms, room.RowPos, room.RowPos); err != nil {
		metrics.MutationErrors.WithLabelValues("room.delete").Inc()
		return fmt.Errorf("delete room row: %w", err)
	}
	return s.commitLocked(ctx, "room.delete")
}

// --- placement lifecycle -----------------------------------------------

type PlaceRequest struct {
	TypeName    string `json:"type"`
	Name        string `json:"name"`
	ReferenceID string `json:"reference_id"`
	PosX        int    `json:"pos_x"`
	PosY        int    `json:"pos_y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ShelfRows   int    `json:"shelf_rows"`
	ShelfCols   int    `json:"shelf_cols"`
}

// PlaceNew drops a toolbar object into the active parent context. A drop
// without a reference lazily creates a backing Container of the dropped
// type; a drop with one relocates the referenced Item or Container here.
func (s *LayoutService) PlaceNew(ctx context.Context, req PlaceRequest) (domain.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return domain.Instance{}, ErrNotLoaded
	}
	parentID := s.activeParentLocked()
	if parentID == "" {
		metrics.MutationErrors.WithLabelValues("place").Inc()
		return domain.Instance{}, ErrNoActiveContext
	}

	objType := domain.ObjectTypeOf(req.TypeName)
	refID := strings.TrimSpace(req.ReferenceID)
	switch {
	case refID == "":
		name := strings.TrimSpace(req.Name)
		if name == "" {
			name = strings.TrimSpace(req.TypeName)
		}
		backing := domain.Container{
			ID:       uuid.NewString(),
			Name:     name,
			Type:     strings.TrimSpace(req.TypeName),
			ParentID: parentID,
		}
		if _, err := s.store.Append(ctx, SheetContainers, encodeContainer(backing)); err != nil {
			metrics.MutationErrors.WithLabelValues("place").Inc()
			return domain.Instance{}, fmt.Errorf("create backing container: %w", err)
		}
		refID = backing.ID
	default:
		if item, ok := s.index.Item(refID); ok {
			item.ParentObjectID = parentID
			if err := s.store.Update(ctx, SheetItems, item.RowPos, encodeItem(item)); err != nil {
				metrics.MutationErrors.WithLabelValues("place").Inc()
				return domain.Instance{}, fmt.Errorf("relocate item: %w", err)
			}
			objType = domain.ObjectTypeOf(item.Type)
		} else if cont, ok := s.index.Container(refID); ok {
			cont.ParentID = parentID
			if err := s.store.Update(ctx, SheetContainers, cont.RowPos, encodeContainer(cont)); err != nil {
				metrics.MutationErrors.WithLabelValues("place").Inc()
				return domain.Instance{}, fmt.Errorf("relocate container: %w", err)
			}
			objType = domain.ObjectTypeOf(cont.Type)
		} else {
			metrics.MutationErrors.WithLabelValues("place").Inc()
			return domain.Instance{}, errors.New("reference does not resolve to an item or container")
		}
	}

	inst := domain.Instance{
		ID:          uuid.NewString(),
		ParentID:    parentID,
		ReferenceID: refID,
		Kind:        domain.KindRect,
		PosX:        req.PosX,
		PosY:        req.PosY,
		Width:       max(req.Width, 1),
		Height:      max(req.Height, 1),
		Orientation: geometry.DefaultOrientation(objType),
	}
	if objType.ContainerLike() {
		inst.ShelfRows = req.ShelfRows
		inst.ShelfCols = req.ShelfCols
	}
	if _, err := s.store.Append(ctx, SheetInstances, encodeInstance(inst)); err != nil {
		metrics.MutationErrors.WithLabelValues("place").Inc()
		return domain.Instance{}, fmt.Errorf("append instance row: %w", err)
	}
	return inst, s.commitLocked(ctx, "place")
}

// DrawWall records a fixed wall segment in the active room. Endpoints are
// physical feet; walls have no backing entity and cannot be moved later.
func (s *LayoutService) DrawWall(ctx context.Context, x1, y1, x2, y2 float64) (domain.Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return domain.Instance{}, ErrNotLoaded
	}
	parentID := s.activeParentLocked()
	if parentID == "" {
		metrics.MutationErrors.WithLabelValues("wall.draw").Inc()
		return domain.Instance{}, ErrNoActiveContext
	}
	inst := domain.Instance{
		ID:       uuid.NewString(),
		ParentID: parentID,
		Kind:     domain.KindWall,
		X1:       x1, Y1: y1, X2: x2, Y2: y2,
	}
	if _, err := s.store.Append(ctx, SheetInstances, encodeInstance(inst)); err != nil {
		metrics.MutationErrors.WithLabelValues("wall.draw").Inc()
		return domain.Instance{}, fmt.Errorf("append wall row: %w", err)
	}
	return inst, s.commitLocked(ctx, "wall.draw")
}

// Move commits a snapped cell position. No other field changes.
func (s *LayoutService) Move(ctx context.Context, instanceID string, posX, posY int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, err := s.rectInstanceLocked(instanceID, "move")
	if err != nil {
		return err
	}
	if t, ok := s.refTypeLocked(inst); ok && !geometry.Draggable(t) {
		metrics.MutationErrors.WithLabelValues("move").Inc()
		return fmt.Errorf("%s objects are fixed in place", t)
	}
	inst.PosX = posX
	inst.PosY = posY
	if err := s.store.Update(ctx, SheetInstances, inst.RowPos, encodeInstance(inst)); err != nil {
		metrics.MutationErrors.WithLabelValues("move").Inc()
		return fmt.Errorf("update instance row: %w", err)
	}
	return s.commitLocked(ctx, "move")
}

// MoveSelection shifts every movable selected instance by a cell delta in
// one batch write. Walls and fixed types in the selection are skipped.
func (s *LayoutService) MoveSelection(ctx context.Context, dx, dy int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	if len(s.selection) == 0 {
		return errors.New("nothing is selected")
	}
	updates := make([]domain.RowUpdate, 0, len(s.selection))
	for _, id := range s.selectionLocked() {
		inst, ok := s.index.Instance(id)
		if !ok || inst.Kind != domain.KindRect {
			continue
		}
		if t, ok := s.refTypeLocked(inst); ok && !geometry.Draggable(t) {
			continue
		}
		inst.PosX += dx
		inst.PosY += dy
		updates = append(updates, domain.RowUpdate{Position: inst.RowPos, Row: encodeInstance(inst)})
	}
	if len(updates) == 0 {
		return errors.New("selection has no movable instances")
	}
	if err := s.store.BatchUpdate(ctx, SheetInstances, updates); err != nil {
		metrics.MutationErrors.WithLabelValues("move.selection").Inc()
		return fmt.Errorf("batch update instance rows: %w", err)
	}
	return s.commitLocked(ctx, "move.selection")
}

// Rotate advances the instance's orientation by one step for its type.
func (s *LayoutService) Rotate(ctx context.Context, instanceID string) (domain.Orientation, error) {
	return s.reorient(ctx, instanceID, "rotate", geometry.Rotate)
}

// Flip mirrors a door's orientation.
func (s *LayoutService) Flip(ctx context.Context, instanceID string) (domain.Orientation, error) {
	return s.reorient(ctx, instanceID, "flip", geometry.Flip)
}

func (s *LayoutService) reorient(ctx context.Context, instanceID, op string, apply func(domain.ObjectType, domain.Orientation) (domain.Orientation, error)) (domain.Orientation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, err := s.rectInstanceLocked(instanceID, op)
	if err != nil {
		return "", err
	}
	objType, ok := s.refTypeLocked(inst)
	if !ok {
		metrics.MutationErrors.WithLabelValues(op).Inc()
		return "", errors.New("instance reference does not resolve")
	}
	next, err := apply(objType, inst.Orientation)
	if err != nil {
		metrics.MutationErrors.WithLabelValues(op).Inc()
		return "", err
	}
	inst.Orientation = next
	if err := s.store.Update(ctx, SheetInstances, inst.RowPos, encodeInstance(inst)); err != nil {
		metrics.MutationErrors.WithLabelValues(op).Inc()
		return "", fmt.Errorf("update instance row: %w", err)
	}
	return next, s.commitLocked(ctx, op)
}

// Resize persists the width/height the interaction layer reports, bounded
// to positive cells.
func (s *LayoutService) Resize(ctx context.Context, instanceID string, width, height int) error {
	if width < 1 || height < 1 {
		return errors.New("width and height must be at least 1 cell")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, err := s.rectInstanceLocked(instanceID, "resize")
	if err != nil {
		return err
	}
	inst.Width = width
	inst.Height = height
	if err := s.store.Update(ctx, SheetInstances, inst.RowPos, encodeInstance(inst)); err != nil {
		metrics.MutationErrors.WithLabelValues("resize").Inc()
		return fmt.Errorf("update instance row: %w", err)
	}
	return s.commitLocked(ctx, "resize")
}

// UpdateWall replaces a wall segment's endpoints (redraw).
func (s *LayoutService) UpdateWall(ctx context.Context, instanceID string, x1, y1, x2, y2 float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	inst, ok := s.index.Instance(instanceID)
	if !ok {
		metrics.MutationErrors.WithLabelValues("wall.update").Inc()
		return errors.New("instance not found")
	}
	if inst.Kind != domain.KindWall {
		metrics.MutationErrors.WithLabelValues("wall.update").Inc()
		return errors.New("instance is not a wall segment")
	}
	inst.X1, inst.Y1, inst.X2, inst.Y2 = x1, y1, x2, y2
	if err := s.store.Update(ctx, SheetInstances, inst.RowPos, encodeInstance(inst)); err != nil {
		metrics.MutationErrors.WithLabelValues("wall.update").Inc()
		return fmt.Errorf("update wall row: %w", err)
	}
	return s.commitLocked(ctx, "wall.update")
}

// DeleteInstance removes the instance and, when its reference resolves to
// a Container, that container with it. Items are never deleted here.
func (s *LayoutService) DeleteInstance(ctx context.Context, instanceID string, confirm bool) error {
	if !confirm {
		return ErrConfirmRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return ErrNotLoaded
	}
	inst, ok := s.index.Instance(instanceID)
	if !ok {
		metrics.MutationErrors.WithLabelValues("delete").Inc()
		return errors.New("instance not found")
	}
	if err := s.store.DeleteRows(ctx, SheetInstances, inst.RowPos, inst.RowPos); err != nil {
		metrics.MutationErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("delete instance row: %w", err)
	}
	if cont, ok := s.index.Container(inst.ReferenceID); ok {
		if err := s.store.DeleteRows(ctx, SheetContainers, cont.RowPos, cont.RowPos); err != nil {
			metrics.MutationErrors.WithLabelValues("delete").Inc()
			return fmt.Errorf("delete backing container row: %w", err)
		}
	}
	delete(s.selection, instanceID)
	return s.commitLocked(ctx, "delete")
}

// --- helpers -----------------------------------------------------------

func (s *LayoutService) commitLocked(ctx context.Context, op string) error {
	if err := s.reloadLocked(ctx); err != nil {
		return fmt.Errorf("reload after %s: %w", op, err)
	}
	metrics.Mutations.WithLabelValues(op).Inc()
	s.log.Info().Str("op", op).Uint64("version", s.version).Msg("layout mutation committed")
	s.notifyLocked()
	return nil
}

func (s *LayoutService) rectInstanceLocked(instanceID, op string) (domain.Instance, error) {
	if s.index == nil {
		return domain.Instance{}, ErrNotLoaded
	}
	inst, ok := s.index.Instance(instanceID)
	if !ok {
		metrics.MutationErrors.WithLabelValues(op).Inc()
		return domain.Instance{}, errors.New("instance not found")
	}
	if inst.Kind != domain.KindRect {
		metrics.MutationErrors.WithLabelValues(op).Inc()
		return domain.Instance{}, errors.New("wall segments only support delete and redraw")
	}
	return inst, nil
}

// refTypeLocked resolves the object type behind an instance via its
// reference. Walls have no reference and report TypeWall.
func (s *LayoutService) refTypeLocked(inst domain.Instance) (domain.ObjectType, bool) {
	if inst.Kind == domain.KindWall {
		return domain.TypeWall, true
	}
	if item, ok := s.index.Item(inst.ReferenceID); ok {
		return domain.ObjectTypeOf(item.Type), true
	}
	if cont, ok := s.index.Container(inst.ReferenceID); ok {
		return domain.ObjectTypeOf(cont.Type), true
	}
	return domain.TypeGenericItem, false
}
