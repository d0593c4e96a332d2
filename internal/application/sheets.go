package application

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/roomlayout/inventorymap/internal/domain"
)

const (
	SheetSites      = "Sites"
	SheetRooms      = "Rooms"
	SheetContainers = "Containers"
	SheetItems      = "Items"
	SheetInstances  = "Instances"
)

// Row codecs. The store only carries flat string records; all typed
// parsing, numeric defaulting and notes decoding happens here.

func decodeSite(row domain.Row, pos int) domain.Site {
	return domain.Site{
		ID:      row["SiteID"],
		Name:    row["SiteName"],
		Address: row["Address"],
		Notes:   decodeNotes(row["Notes"]),
		RowPos:  pos,
	}
}

func encodeSite(s domain.Site) domain.Row {
	return domain.Row{
		"SiteID":   s.ID,
		"SiteName": s.Name,
		"Address":  s.Address,
		"Notes":    encodeNotes(s.Notes),
	}
}

func decodeRoom(row domain.Row, pos int) domain.Room {
	return domain.Room{
		ID:         row["RoomID"],
		Name:       row["RoomName"],
		SiteID:     row["SiteID"],
		Dimensions: row["Dimensions"],
		GridWidth:  atoiDefault(row["GridWidth"], 20),
		GridHeight: atoiDefault(row["GridHeight"], 15),
		RowPos:     pos,
	}
}

func encodeRoom(r domain.Room) domain.Row {
	return domain.Row{
		"RoomID":     r.ID,
		"RoomName":   r.Name,
		"SiteID":     r.SiteID,
		"Dimensions": r.Dimensions,
		"GridWidth":  strconv.Itoa(r.GridWidth),
		"GridHeight": strconv.Itoa(r.GridHeight),
	}
}

func decodeContainer(row domain.Row, pos int) domain.Container {
	return domain.Container{
		ID:       row["ContainerID"],
		Name:     row["ContainerName"],
		Type:     row["ContainerType"],
		ParentID: row["ParentID"],
		Notes:    decodeNotes(row["Notes"]),
		RowPos:   pos,
	}
}

func encodeContainer(c domain.Container) domain.Row {
	return domain.Row{
		"ContainerID":   c.ID,
		"ContainerName": c.Name,
		"ContainerType": c.Type,
		"ParentID":      c.ParentID,
		"Notes":         encodeNotes(c.Notes),
	}
}

func decodeItem(row domain.Row, pos int) domain.Item {
	return domain.Item{
		ID:             row["AssetID"],
		Name:           row["AssetName"],
		Type:           row["AssetType"],
		ParentObjectID: row["ParentObjectID"],
		SiteName:       row["Site"],
		RoomName:       row["Location"],
		ContainerName:  row["Container"],
		RowPos:         pos,
	}
}

func encodeItem(it domain.Item) domain.Row {
	return domain.Row{
		"AssetID":        it.ID,
		"AssetName":      it.Name,
		"AssetType":      it.Type,
		"ParentObjectID": it.ParentObjectID,
		"Site":           it.SiteName,
		"Location":       it.RoomName,
		"Container":      it.ContainerName,
	}
}

// Wall rows carry no ReferenceID by construction, so the geometry kind is
// recoverable even from rows written before the Kind header existed.
func decodeInstance(row domain.Row, pos int) domain.Instance {
	inst := domain.Instance{
		ID:          row["InstanceID"],
		ParentID:    row["ParentID"],
		ReferenceID: row["ReferenceID"],
		Kind:        domain.GeometryKind(row["Kind"]),
		PosX:        atoiDefault(row["PosX"], 0),
		PosY:        atoiDefault(row["PosY"], 0),
		Width:       atoiDefault(row["Width"], 1),
		Height:      atoiDefault(row["Height"], 1),
		Orientation: domain.Orientation(row["Orientation"]),
		ShelfRows:   atoiDefault(row["ShelfRows"], 0),
		ShelfCols:   atoiDefault(row["ShelfCols"], 0),
		X1:          atofDefault(row["X1"], 0),
		Y1:          atofDefault(row["Y1"], 0),
		X2:          atofDefault(row["X2"], 0),
		Y2:          atofDefault(row["Y2"], 0),
		RowPos:      pos,
	}
	if inst.Kind == "" {
		if inst.ReferenceID == "" {
			inst.Kind = domain.KindWall
		} else {
			inst.Kind = domain.KindRect
		}
	}
	if inst.Kind == domain.KindRect && inst.Orientation == "" {
		inst.Orientation = domain.OrientationHorizontal
	}
	if inst.Width < 1 {
		inst.Width = 1
	}
	if inst.Height < 1 {
		inst.Height = 1
	}
	return inst
}

func encodeInstance(in domain.Instance) domain.Row {
	row := domain.Row{
		"InstanceID":  in.ID,
		"ParentID":    in.ParentID,
		"ReferenceID": in.ReferenceID,
		"Kind":        string(in.Kind),
	}
	if in.Kind == domain.KindWall {
		row["X1"] = ftoa(in.X1)
		row["Y1"] = ftoa(in.Y1)
		row["X2"] = ftoa(in.X2)
		row["Y2"] = ftoa(in.Y2)
		return row
	}
	row["PosX"] = strconv.Itoa(in.PosX)
	row["PosY"] = strconv.Itoa(in.PosY)
	row["Width"] = strconv.Itoa(in.Width)
	row["Height"] = strconv.Itoa(in.Height)
	row["Orientation"] = string(in.Orientation)
	if in.ShelfRows > 0 {
		row["ShelfRows"] = strconv.Itoa(in.ShelfRows)
	}
	if in.ShelfCols > 0 {
		row["ShelfCols"] = strconv.Itoa(in.ShelfCols)
	}
	return row
}

func atoiDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func atofDefault(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Notes travel base64-encoded so free text cannot corrupt the flat row
// encoding. Rows predating the encoding are kept verbatim.
func encodeNotes(s string) string {
	if s == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeNotes(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return string(decoded)
}
