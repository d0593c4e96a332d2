package geometry

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/roomlayout/inventorymap/internal/domain"
)

// DefaultScale is the global pixels-per-foot view parameter.
const DefaultScale = 20.0

const (
	DefaultGridWidth  = 20
	DefaultGridHeight = 15
)

// Canvas is the pixel-space framing of one room. When the room's physical
// Dimensions parse, one grid cell is one square foot; otherwise the
// GridWidth x GridHeight fallback grid is stretched to the viewport width,
// so cells may be rectangular in fallback mode only.
type Canvas struct {
	WidthPx    float64 `json:"width_px"`
	HeightPx   float64 `json:"height_px"`
	CellWidth  float64 `json:"cell_width"`
	CellHeight float64 `json:"cell_height"`
	FromFeet   bool    `json:"from_feet"`
}

// Accepts "20ft x 15ft", "20' x 15'", `12'6" x 9'3"`, "20 x 15".
var dimensionsRe = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*(?:ft|')?\s*(?:(\d+(?:\.\d+)?)\s*(?:in|"))?\s*x\s*(\d+(?:\.\d+)?)\s*(?:ft|')?\s*(?:(\d+(?:\.\d+)?)\s*(?:in|"))?\s*$`)

// ParseDimensions parses a physical room-size string into feet.
func ParseDimensions(s string) (widthFt, lengthFt float64, ok bool) {
	m := dimensionsRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	widthFt = feetOf(m[1], m[2])
	lengthFt = feetOf(m[3], m[4])
	if widthFt <= 0 || lengthFt <= 0 {
		return 0, 0, false
	}
	return widthFt, lengthFt, true
}

func feetOf(feet, inches string) float64 {
	ft, _ := strconv.ParseFloat(feet, 64)
	if strings.TrimSpace(inches) != "" {
		in, _ := strconv.ParseFloat(inches, 64)
		ft += in / 12
	}
	return ft
}

// RoomCanvas sizes the drawing surface for a room at the given scale
// (pixels per foot). viewportW and viewportH bound the fallback grid;
// viewportH of zero keeps fallback cells square.
func RoomCanvas(room domain.Room, scale, viewportW, viewportH float64) Canvas {
	if scale <= 0 {
		scale = DefaultScale
	}
	if w, l, ok := ParseDimensions(room.Dimensions); ok {
		return Canvas{
			WidthPx:    w * scale,
			HeightPx:   l * scale,
			CellWidth:  scale,
			CellHeight: scale,
			FromFeet:   true,
		}
	}
	cols := room.GridWidth
	if cols <= 0 {
		cols = DefaultGridWidth
	}
	rows := room.GridHeight
	if rows <= 0 {
		rows = DefaultGridHeight
	}
	if viewportW <= 0 {
		viewportW = float64(cols) * scale
	}
	cellW := viewportW / float64(cols)
	cellH := cellW
	if viewportH > 0 {
		cellH = viewportH / float64(rows)
	}
	return Canvas{
		WidthPx:    cellW * float64(cols),
		HeightPx:   cellH * float64(rows),
		CellWidth:  cellW,
		CellHeight: cellH,
		FromFeet:   false,
	}
}

// SnapToCell commits a free-form pixel coordinate to the nearest whole
// grid cell. This rounding is the only placement-validity rule; overlap is
// permitted.
func SnapToCell(pixel, cellSize float64) int {
	if cellSize <= 0 {
		return 0
	}
	return int(math.Round(pixel / cellSize))
}

// CellToPixel is the inverse projection of a committed cell coordinate.
func CellToPixel(cell int, cellSize float64) float64 {
	return float64(cell) * cellSize
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// InstanceRect projects a rect instance into canvas pixels. The Vertical
// orientation swaps the rendered width and height without touching the
// logical footprint; doors keep their stored footprint under compass
// orientations.
func InstanceRect(inst domain.Instance, objType domain.ObjectType, c Canvas) Rect {
	w, h := inst.Width, inst.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if inst.Orientation == domain.OrientationVertical && objType != domain.TypeDoor {
		w, h = h, w
	}
	return Rect{
		X: CellToPixel(inst.PosX, c.CellWidth),
		Y: CellToPixel(inst.PosY, c.CellHeight),
		W: float64(w) * c.CellWidth,
		H: float64(h) * c.CellHeight,
	}
}

// WallLine projects wall endpoints (feet) into pixels. Walls ignore the
// grid entirely.
func WallLine(inst domain.Instance, scale float64) Line {
	if scale <= 0 {
		scale = DefaultScale
	}
	return Line{
		X1: inst.X1 * scale,
		Y1: inst.Y1 * scale,
		X2: inst.X2 * scale,
		Y2: inst.Y2 * scale,
	}
}

// Draggable reports whether instances of this type may be repositioned
// after placement. Walls are fixed once drawn and floor patches are
// background.
func Draggable(t domain.ObjectType) bool {
	return t != domain.TypeWall && t != domain.TypeFloorPatch
}

// DefaultOrientation is the orientation assigned on drop.
func DefaultOrientation(t domain.ObjectType) domain.Orientation {
	if t == domain.TypeDoor {
		return domain.OrientationEast
	}
	return domain.OrientationHorizontal
}

var ErrNotRotatable = errors.New("object cannot be rotated")

// Rotate advances an orientation one step: doors cycle the compass
// East-South-West-North, every other rect object toggles
// Horizontal-Vertical. Walls and floor patches are not rotatable.
func Rotate(t domain.ObjectType, o domain.Orientation) (domain.Orientation, error) {
	switch t {
	case domain.TypeWall, domain.TypeFloorPatch:
		return o, ErrNotRotatable
	case domain.TypeDoor:
		switch o {
		case domain.OrientationEast:
			return domain.OrientationSouth, nil
		case domain.OrientationSouth:
			return domain.OrientationWest, nil
		case domain.OrientationWest:
			return domain.OrientationNorth, nil
		case domain.OrientationNorth:
			return domain.OrientationEast, nil
		default:
			return domain.OrientationEast, nil
		}
	case domain.TypeGenericItem, domain.TypeShelf, domain.TypeContainer:
		if o == domain.OrientationHorizontal {
			return domain.OrientationVertical, nil
		}
		return domain.OrientationHorizontal, nil
	default:
		return o, ErrNotRotatable
	}
}

var ErrNotFlippable = errors.New("only doors can be flipped")

// Flip mirrors a door: East-West and North-South swap. Independent of
// Rotate but acting on the same orientation field.
func Flip(t domain.ObjectType, o domain.Orientation) (domain.Orientation, error) {
	if t != domain.TypeDoor {
		return o, ErrNotFlippable
	}
	switch o {
	case domain.OrientationEast:
		return domain.OrientationWest, nil
	case domain.OrientationWest:
		return domain.OrientationEast, nil
	case domain.OrientationNorth:
		return domain.OrientationSouth, nil
	case domain.OrientationSouth:
		return domain.OrientationNorth, nil
	default:
		return o, nil
	}
}
