package application_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/roomlayout/inventorymap/internal/adapters/db/sqlite"
	"github.com/roomlayout/inventorymap/internal/application"
	"github.com/roomlayout/inventorymap/internal/domain"
)

func newTestService(t *testing.T) (*application.LayoutService, context.Context) {
	t.Helper()
	ctx := context.Background()

	db, err := sqliteadapter.Open(filepath.Join(t.TempDir(), "layout_test.db"))
	require.NoError(t, err)
	require.NoError(t, sqliteadapter.RunMigrations(ctx, db))

	svc := application.NewLayoutService(sqliteadapter.NewRowStore(db), zerolog.Nop())
	require.NoError(t, svc.Init(ctx))
	return svc, ctx
}

// newRoomContext sets up a site with one selected room and returns both.
func newRoomContext(t *testing.T, svc *application.LayoutService, ctx context.Context) (domain.Site, domain.Room) {
	t.Helper()
	site, err := svc.CreateSite(ctx, "Warehouse", "12 Dock Rd", "")
	require.NoError(t, err)
	room, err := svc.CreateRoom(ctx, site.ID, "Storage", "20ft x 15ft", 0, 0)
	require.NoError(t, err)
	require.NoError(t, svc.SelectRoom(room.ID))
	return site, room
}

func TestPlaceRequiresActiveContext(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf"})
	require.ErrorIs(t, err, application.ErrNoActiveContext)
}

func TestPlaceCreatesBackingContainer(t *testing.T) {
	svc, ctx := newTestService(t)
	_, room := newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf", Name: "Shelf A", PosX: 2, PosY: 3})
	require.NoError(t, err)
	require.Equal(t, room.ID, inst.ParentID)
	require.Equal(t, domain.KindRect, inst.Kind)
	require.Equal(t, domain.OrientationHorizontal, inst.Orientation)

	cont, ok := svc.Index().Container(inst.ReferenceID)
	require.True(t, ok)
	require.Equal(t, "Shelf A", cont.Name)
	require.Equal(t, "shelf", cont.Type)
	require.Equal(t, room.ID, cont.ParentID)
}

func TestPlaceDoorDefaultsToEast(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "door"})
	require.NoError(t, err)
	require.Equal(t, domain.OrientationEast, inst.Orientation)
}

func TestPlaceExistingItemRelocatesIt(t *testing.T) {
	svc, ctx := newTestService(t)
	_, room := newRoomContext(t, svc, ctx)

	item, err := svc.CreateItem(ctx, "Drill", "tool", "")
	require.NoError(t, err)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "tool", ReferenceID: item.ID, PosX: 1, PosY: 1})
	require.NoError(t, err)
	require.Equal(t, item.ID, inst.ReferenceID)

	relocated, ok := svc.Index().Item(item.ID)
	require.True(t, ok)
	require.Equal(t, room.ID, relocated.ParentObjectID)
}

func TestPlaceUnknownReferenceFails(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	_, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "tool", ReferenceID: "no-such-id"})
	require.Error(t, err)
}

func TestMoveUpdatesOnlyPosition(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate", PosX: 2, PosY: 3, Width: 2, Height: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Move(ctx, inst.ID, 5, 7))

	moved, ok := svc.Index().Instance(inst.ID)
	require.True(t, ok)
	require.Equal(t, 5, moved.PosX)
	require.Equal(t, 7, moved.PosY)
	require.Equal(t, 2, moved.Width)
	require.Equal(t, 2, moved.Height)
	require.Equal(t, inst.ReferenceID, moved.ReferenceID)
}

func TestMoveSelectionShiftsAllMovable(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	a, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate", PosX: 1, PosY: 1})
	require.NoError(t, err)
	b, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate", PosX: 4, PosY: 4})
	require.NoError(t, err)
	fixed, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "carpet", PosX: 0, PosY: 0})
	require.NoError(t, err)

	require.NoError(t, svc.Click(a.ID, false))
	require.NoError(t, svc.Click(b.ID, true))
	require.NoError(t, svc.Click(fixed.ID, true))

	require.NoError(t, svc.MoveSelection(ctx, 2, -1))

	movedA, _ := svc.Index().Instance(a.ID)
	require.Equal(t, 3, movedA.PosX)
	require.Equal(t, 0, movedA.PosY)
	movedB, _ := svc.Index().Instance(b.ID)
	require.Equal(t, 6, movedB.PosX)
	require.Equal(t, 3, movedB.PosY)

	// the floor patch stays where it is
	patch, _ := svc.Index().Instance(fixed.ID)
	require.Equal(t, 0, patch.PosX)
}

func TestMoveSelectionRequiresSelection(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	require.Error(t, svc.MoveSelection(ctx, 1, 0))
}

func TestMoveFloorPatchRejected(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "carpet"})
	require.NoError(t, err)

	require.Error(t, svc.Move(ctx, inst.ID, 1, 1))
}

func TestRotateAndFlipDoor(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "door"})
	require.NoError(t, err)

	o, err := svc.Rotate(ctx, inst.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrientationSouth, o)

	o, err = svc.Rotate(ctx, inst.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrientationWest, o)

	o, err = svc.Flip(ctx, inst.ID)
	require.NoError(t, err)
	require.Equal(t, domain.OrientationEast, o)
}

func TestFlipShelfFails(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf"})
	require.NoError(t, err)

	_, err = svc.Flip(ctx, inst.ID)
	require.Error(t, err)
}

func TestResizeRejectsNonPositive(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate"})
	require.NoError(t, err)

	require.Error(t, svc.Resize(ctx, inst.ID, 0, 2))
	require.NoError(t, svc.Resize(ctx, inst.ID, 3, 2))

	resized, _ := svc.Index().Instance(inst.ID)
	require.Equal(t, 3, resized.Width)
	require.Equal(t, 2, resized.Height)
}

func TestWallLifecycle(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	wall, err := svc.DrawWall(ctx, 0, 0, 10, 0)
	require.NoError(t, err)
	require.Equal(t, domain.KindWall, wall.Kind)

	// walls cannot be moved or rotated, only redrawn or deleted
	require.Error(t, svc.Move(ctx, wall.ID, 1, 1))
	_, err = svc.Rotate(ctx, wall.ID)
	require.Error(t, err)

	require.NoError(t, svc.UpdateWall(ctx, wall.ID, 0, 0, 10, 5))
	updated, _ := svc.Index().Instance(wall.ID)
	require.Equal(t, 5.0, updated.Y2)

	require.NoError(t, svc.DeleteInstance(ctx, wall.ID, true))
	_, ok := svc.Index().Instance(wall.ID)
	require.False(t, ok)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteInstance(ctx, inst.ID, false), application.ErrConfirmRequired)
	_, ok := svc.Index().Instance(inst.ID)
	require.True(t, ok)
}

func TestDeleteCascadesToBackingContainer(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInstance(ctx, inst.ID, true))
	_, ok := svc.Index().Instance(inst.ID)
	require.False(t, ok)
	_, ok = svc.Index().Container(inst.ReferenceID)
	require.False(t, ok)
}

func TestDeleteKeepsReferencedItem(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	item, err := svc.CreateItem(ctx, "Drill", "tool", "")
	require.NoError(t, err)
	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "tool", ReferenceID: item.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteInstance(ctx, inst.ID, true))
	_, ok := svc.Index().Item(item.ID)
	require.True(t, ok)
}

func TestSiteDeleteDoesNotCascade(t *testing.T) {
	svc, ctx := newTestService(t)
	site, room := newRoomContext(t, svc, ctx)

	require.ErrorIs(t, svc.DeleteSite(ctx, site.ID, false), application.ErrConfirmRequired)
	require.NoError(t, svc.DeleteSite(ctx, site.ID, true))

	_, ok := svc.Index().Site(site.ID)
	require.False(t, ok)
	orphan, ok := svc.Index().Room(room.ID)
	require.True(t, ok)
	require.Equal(t, site.ID, orphan.SiteID)
}

func TestNavigationStack(t *testing.T) {
	svc, ctx := newTestService(t)
	_, room := newRoomContext(t, svc, ctx)

	shelf, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf", Name: "Shelf A"})
	require.NoError(t, err)

	require.NoError(t, svc.NavigateInto(shelf.ID))
	crumbs := svc.Breadcrumbs()
	require.Len(t, crumbs, 2)
	require.Equal(t, room.ID, crumbs[0].ID)
	require.Equal(t, shelf.ReferenceID, crumbs[1].ID)
	require.Equal(t, shelf.ReferenceID, svc.ActiveParentID())

	// placements inside the shelf attach to its backing container
	inner, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "bin", Name: "Bin 1"})
	require.NoError(t, err)
	require.Equal(t, shelf.ReferenceID, inner.ParentID)

	require.NoError(t, svc.NavigateTo(room.ID))
	require.Len(t, svc.Breadcrumbs(), 1)
	require.Equal(t, room.ID, svc.ActiveParentID())
}

func TestNavigateIntoGenericItemFails(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	item, err := svc.CreateItem(ctx, "Drill", "tool", "")
	require.NoError(t, err)
	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "tool", ReferenceID: item.ID})
	require.NoError(t, err)

	require.Error(t, svc.NavigateInto(inst.ID))
}

func TestSelectRoomResetsStack(t *testing.T) {
	svc, ctx := newTestService(t)
	site, room := newRoomContext(t, svc, ctx)

	shelf, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf"})
	require.NoError(t, err)
	require.NoError(t, svc.NavigateInto(shelf.ID))

	other, err := svc.CreateRoom(ctx, site.ID, "Office", "", 10, 10)
	require.NoError(t, err)
	require.NoError(t, svc.SelectRoom(other.ID))

	crumbs := svc.Breadcrumbs()
	require.Len(t, crumbs, 1)
	require.Equal(t, other.ID, crumbs[0].ID)
	require.NotEqual(t, room.ID, crumbs[0].ID)
}

func TestClickSelection(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	a, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate", Name: "A"})
	require.NoError(t, err)
	b, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate", Name: "B"})
	require.NoError(t, err)

	require.NoError(t, svc.Click(a.ID, false))
	require.Equal(t, []string{a.ID}, svc.Selection())

	// plain click replaces
	require.NoError(t, svc.Click(b.ID, false))
	require.Equal(t, []string{b.ID}, svc.Selection())

	// multi click toggles
	require.NoError(t, svc.Click(a.ID, true))
	require.Len(t, svc.Selection(), 2)
	require.NoError(t, svc.Click(a.ID, true))
	require.Equal(t, []string{b.ID}, svc.Selection())

	svc.ClearSelection()
	require.Empty(t, svc.Selection())
}

func TestDeletePrunesSelection(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate"})
	require.NoError(t, err)
	require.NoError(t, svc.Click(inst.ID, false))

	require.NoError(t, svc.DeleteInstance(ctx, inst.ID, true))
	require.Empty(t, svc.Selection())
}

func TestCopyPasteDuplicatesItem(t *testing.T) {
	svc, ctx := newTestService(t)
	_, room := newRoomContext(t, svc, ctx)

	item, err := svc.CreateItem(ctx, "Drill", "tool", "")
	require.NoError(t, err)
	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "tool", ReferenceID: item.ID, PosX: 2, PosY: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Click(inst.ID, false))
	count, err := svc.Copy()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	pasted, err := svc.Paste(ctx)
	require.NoError(t, err)
	require.Len(t, pasted, 1)

	copyInst, ok := svc.Index().Instance(pasted[0])
	require.True(t, ok)
	require.Equal(t, 3, copyInst.PosX)
	require.Equal(t, 4, copyInst.PosY)
	require.NotEqual(t, item.ID, copyInst.ReferenceID)

	dup, ok := svc.Index().Item(copyInst.ReferenceID)
	require.True(t, ok)
	require.Equal(t, "Drill (Copy)", dup.Name)
	require.Equal(t, room.ID, dup.ParentObjectID)

	// the pasted instances become the new selection
	require.Equal(t, pasted, svc.Selection())
}

func TestCopyPasteStructuralItemReusesReference(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	door, err := svc.CreateItem(ctx, "Front Door", "door", "")
	require.NoError(t, err)
	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "door", ReferenceID: door.ID, PosX: 0, PosY: 0})
	require.NoError(t, err)

	itemsBefore := len(svc.Dataset().Items)

	require.NoError(t, svc.Click(inst.ID, false))
	_, err = svc.Copy()
	require.NoError(t, err)

	pasted, err := svc.Paste(ctx)
	require.NoError(t, err)

	copyInst, ok := svc.Index().Instance(pasted[0])
	require.True(t, ok)
	require.Equal(t, door.ID, copyInst.ReferenceID)
	require.Len(t, svc.Dataset().Items, itemsBefore)
}

func TestCopySkipsContainerBackedInstances(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	shelf, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf", PosX: 0, PosY: 0})
	require.NoError(t, err)

	require.NoError(t, svc.Click(shelf.ID, false))
	_, err = svc.Copy()
	require.EqualError(t, err, "nothing copyable is selected")
}

func TestCopyWithEmptySelectionFails(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	_, err := svc.Copy()
	require.Error(t, err)
}

func TestUnplacedMembership(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	placed, err := svc.CreateItem(ctx, "Placed Drill", "tool", "")
	require.NoError(t, err)
	_, err = svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "tool", ReferenceID: placed.ID})
	require.NoError(t, err)

	loose, err := svc.CreateItem(ctx, "Loose Ladder", "tool", "")
	require.NoError(t, err)

	result, err := svc.Unplaced(application.UnplacedQuery{})
	require.NoError(t, err)

	ids := make([]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		ids = append(ids, e.ID)
	}
	require.Contains(t, ids, loose.ID)
	require.NotContains(t, ids, placed.ID)
}

func TestUnplacedExcludesItemsInsideContainers(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	shelf, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf"})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, "Stored Drill", "tool", shelf.ReferenceID)
	require.NoError(t, err)

	result, err := svc.Unplaced(application.UnplacedQuery{})
	require.NoError(t, err)
	for _, e := range result.Entries {
		require.NotEqual(t, "Stored Drill", e.Name)
	}
}

func TestUnplacedSiteScopeAndSearch(t *testing.T) {
	svc, ctx := newTestService(t)
	site, room := newRoomContext(t, svc, ctx)

	other, err := svc.CreateSite(ctx, "Annex", "", "")
	require.NoError(t, err)
	otherRoom, err := svc.CreateRoom(ctx, other.ID, "Spare", "", 10, 10)
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, "Warehouse Drill", "tool", room.ID)
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, "Annex Drill", "tool", otherRoom.ID)
	require.NoError(t, err)

	result, err := svc.Unplaced(application.UnplacedQuery{SiteID: site.ID})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, "Warehouse Drill", result.Entries[0].Name)

	result, err = svc.Unplaced(application.UnplacedQuery{Search: "annex"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, "Annex Drill", result.Entries[0].Name)
}

func TestUnplacedRoomScopeMatchesEffectiveParentExactly(t *testing.T) {
	svc, ctx := newTestService(t)
	site, room := newRoomContext(t, svc, ctx)

	sibling, err := svc.CreateRoom(ctx, site.ID, "Spare", "", 10, 10)
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, "Storage Drill", "tool", room.ID)
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, "Spare Drill", "tool", sibling.ID)
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, "Homeless Drill", "tool", "")
	require.NoError(t, err)

	result, err := svc.Unplaced(application.UnplacedQuery{RoomID: room.ID})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, "Storage Drill", result.Entries[0].Name)
}

func TestUnplacedSortAndGroup(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	for _, tc := range []struct{ name, typ string }{
		{"zebra print", "decor"},
		{"Anvil", "tool"},
		{"mallet", "tool"},
	} {
		_, err := svc.CreateItem(ctx, tc.name, tc.typ, "")
		require.NoError(t, err)
	}

	result, err := svc.Unplaced(application.UnplacedQuery{})
	require.NoError(t, err)
	require.Equal(t, []string{"Anvil", "mallet", "zebra print"}, entryNames(result.Entries))

	result, err = svc.Unplaced(application.UnplacedQuery{SortDesc: true})
	require.NoError(t, err)
	require.Equal(t, []string{"zebra print", "mallet", "Anvil"}, entryNames(result.Entries))

	result, err = svc.Unplaced(application.UnplacedQuery{GroupBy: true})
	require.NoError(t, err)
	require.Len(t, result.Groups, 2)
	require.Equal(t, "decor", result.Groups[0].Type)
	require.Equal(t, "tool", result.Groups[1].Type)
	require.Equal(t, 3, result.Total)
}

func entryNames(entries []application.UnplacedEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func TestStateViewRendersRoom(t *testing.T) {
	svc, ctx := newTestService(t)
	newRoomContext(t, svc, ctx)

	inst, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "crate", Name: "Crate", PosX: 2, PosY: 3})
	require.NoError(t, err)
	_, err = svc.DrawWall(ctx, 0, 0, 20, 0)
	require.NoError(t, err)

	view, err := svc.State(20, 0, 0)
	require.NoError(t, err)
	require.NotNil(t, view.Canvas)
	require.Equal(t, 400.0, view.Canvas.WidthPx)
	require.Equal(t, 300.0, view.Canvas.HeightPx)
	require.Len(t, view.Instances, 2)

	for _, ri := range view.Instances {
		if ri.ID != inst.ID {
			continue
		}
		require.NotNil(t, ri.Rect)
		require.Equal(t, 40.0, ri.Rect.X)
		require.Equal(t, 60.0, ri.Rect.Y)
	}
}

func TestStateViewSkipsUnresolvedReferences(t *testing.T) {
	ctx := context.Background()
	db, err := sqliteadapter.Open(filepath.Join(t.TempDir(), "layout_test.db"))
	require.NoError(t, err)
	require.NoError(t, sqliteadapter.RunMigrations(ctx, db))
	store := sqliteadapter.NewRowStore(db)
	svc := application.NewLayoutService(store, zerolog.Nop())
	require.NoError(t, svc.Init(ctx))
	newRoomContext(t, svc, ctx)

	shelf, err := svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "shelf"})
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, "Ghost", "tool", "")
	require.NoError(t, err)
	_, err = svc.PlaceNew(ctx, application.PlaceRequest{TypeName: "tool", ReferenceID: item.ID})
	require.NoError(t, err)

	// pull the item row out from underneath its instance
	ghost, ok := svc.Index().Item(item.ID)
	require.True(t, ok)
	require.NoError(t, store.DeleteRows(ctx, application.SheetItems, ghost.RowPos, ghost.RowPos))
	require.NoError(t, svc.Reload(ctx))

	view, err := svc.State(20, 0, 0)
	require.NoError(t, err)
	require.Len(t, view.Instances, 1)
	require.Equal(t, shelf.ID, view.Instances[0].ID)
}

func TestStateWithoutRoomIsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	view, err := svc.State(20, 0, 0)
	require.NoError(t, err)
	require.Nil(t, view.Canvas)
	require.Empty(t, view.Breadcrumbs)
	require.Empty(t, view.Instances)
}

func TestObserverFiresAfterMutation(t *testing.T) {
	svc, ctx := newTestService(t)

	fired := 0
	svc.OnDataChanged(func() { fired++ })

	_, err := svc.CreateSite(ctx, "Warehouse", "", "")
	require.NoError(t, err)
	require.Equal(t, 1, fired)
}

func TestVersionAdvancesOnReload(t *testing.T) {
	svc, ctx := newTestService(t)

	before := svc.Dataset().Version
	require.NoError(t, svc.Reload(ctx))
	require.Greater(t, svc.Dataset().Version, before)
}
