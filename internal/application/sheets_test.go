package application

import (
	"testing"

	"github.com/roomlayout/inventorymap/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoomDefaults(t *testing.T) {
	room := decodeRoom(domain.Row{"RoomID": "r1", "RoomName": "Storage"}, 4)
	require.Equal(t, 20, room.GridWidth)
	require.Equal(t, 15, room.GridHeight)
	require.Equal(t, 4, room.RowPos)

	room = decodeRoom(domain.Row{"GridWidth": "8", "GridHeight": "junk"}, 1)
	require.Equal(t, 8, room.GridWidth)
	require.Equal(t, 15, room.GridHeight)
}

func TestDecodeInstanceInfersWallKind(t *testing.T) {
	inst := decodeInstance(domain.Row{"InstanceID": "i1", "ParentID": "r1", "X1": "0", "Y1": "0", "X2": "10", "Y2": "0"}, 1)
	require.Equal(t, domain.KindWall, inst.Kind)

	inst = decodeInstance(domain.Row{"InstanceID": "i2", "ParentID": "r1", "ReferenceID": "item-1"}, 2)
	require.Equal(t, domain.KindRect, inst.Kind)
	require.Equal(t, domain.OrientationHorizontal, inst.Orientation)
	require.Equal(t, 1, inst.Width)
	require.Equal(t, 1, inst.Height)
}

func TestEncodeInstanceWallOmitsGridFields(t *testing.T) {
	row := encodeInstance(domain.Instance{ID: "i1", ParentID: "r1", Kind: domain.KindWall, X1: 1.5, Y2: 3})
	require.Equal(t, "1.5", row["X1"])
	require.Equal(t, "3", row["Y2"])
	_, hasPos := row["PosX"]
	require.False(t, hasPos)
}

func TestNotesSurviveRoundTrip(t *testing.T) {
	notes := "fragile!\nkeep \"dry\", temp < 20C"
	site := decodeSite(encodeSite(domain.Site{ID: "s1", Notes: notes}), 1)
	require.Equal(t, notes, site.Notes)
}

func TestDecodeNotesKeepsLegacyPlainText(t *testing.T) {
	// rows written before notes were encoded hold raw text that is not
	// valid base64
	require.Equal(t, "plain ol' note!", decodeNotes("plain ol' note!"))
}
