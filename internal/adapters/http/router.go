package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/roomlayout/inventorymap/internal/application"
	"github.com/roomlayout/inventorymap/internal/geometry"
)

type Handler struct {
	service *application.LayoutService
}

func NewRouter(service *application.LayoutService) http.Handler {
	h := &Handler{service: service}
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/sites", h.handleListSites)
		api.Post("/sites", h.handleCreateSite)
		api.Delete("/sites/{id}", h.handleDeleteSite)
		api.Get("/rooms", h.handleListRooms)
		api.Post("/rooms", h.handleCreateRoom)
		api.Delete("/rooms/{id}", h.handleDeleteRoom)
		api.Get("/items", h.handleListItems)
		api.Post("/items", h.handleCreateItem)
		api.Post("/reload", h.handleReload)

		api.Route("/layout", func(layout chi.Router) {
			layout.Get("/state", h.handleState)
			layout.Post("/room", h.handleSelectRoom)
			layout.Post("/navigate", h.handleNavigate)
			layout.Post("/place", h.handlePlace)
			layout.Post("/wall", h.handleDrawWall)
			layout.Post("/move", h.handleMove)
			layout.Post("/move-selection", h.handleMoveSelection)
			layout.Post("/rotate", h.handleRotate)
			layout.Post("/flip", h.handleFlip)
			layout.Post("/resize", h.handleResize)
			layout.Post("/delete", h.handleDelete)
			layout.Post("/select", h.handleSelect)
			layout.Post("/select/clear", h.handleClearSelection)
			layout.Post("/copy", h.handleCopy)
			layout.Post("/paste", h.handlePaste)
			layout.Get("/unplaced", h.handleUnplaced)
		})
	})

	return r
}

func (h *Handler) handleListSites(w http.ResponseWriter, r *http.Request) {
	ds := h.service.Dataset()
	if ds == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "dataset not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, ds.Sites)
}

type apiCreateSiteRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func (h *Handler) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	var req apiCreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	site, err := h.service.CreateSite(r.Context(), req.Name, req.Address, req.Notes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, site)
}

func (h *Handler) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteSite(r.Context(), chi.URLParam(r, "id"), parseBool(r.URL.Query().Get("confirm")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	ds := h.service.Dataset()
	if ds == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "dataset not loaded"})
		return
	}
	siteID := strings.TrimSpace(r.URL.Query().Get("site_id"))
	if siteID == "" {
		writeJSON(w, http.StatusOK, ds.Rooms)
		return
	}
	rooms := ds.Rooms[:0:0]
	for _, room := range ds.Rooms {
		if room.SiteID == siteID {
			rooms = append(rooms, room)
		}
	}
	writeJSON(w, http.StatusOK, rooms)
}

type apiCreateRoomRequest struct {
	SiteID     string `json:"site_id"`
	Name       string `json:"name"`
	Dimensions string `json:"dimensions"`
	GridWidth  int    `json:"grid_width"`
	GridHeight int    `json:"grid_height"`
}

func (h *Handler) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req apiCreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	room, err := h.service.CreateRoom(r.Context(), req.SiteID, req.Name, req.Dimensions, req.GridWidth, req.GridHeight)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handler) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteRoom(r.Context(), chi.URLParam(r, "id"), parseBool(r.URL.Query().Get("confirm")))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) handleListItems(w http.ResponseWriter, r *http.Request) {
	ds := h.service.Dataset()
	if ds == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "dataset not loaded"})
		return
	}
	writeJSON(w, http.StatusOK, ds.Items)
}

type apiCreateItemRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parent_id"`
}

func (h *Handler) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req apiCreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	item, err := h.service.CreateItem(r.Context(), req.Name, req.Type, req.ParentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reload(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": true})
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.service.State(parseFloat(q.Get("scale")), parseFloat(q.Get("viewport_w")), parseFloat(q.Get("viewport_h")))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type apiSelectRoomRequest struct {
	RoomID string `json:"room_id"`
}

func (h *Handler) handleSelectRoom(w http.ResponseWriter, r *http.Request) {
	var req apiSelectRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if err := h.service.SelectRoom(req.RoomID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"breadcrumbs": h.service.Breadcrumbs()})
}

type apiNavigateRequest struct {
	InstanceID string `json:"instance_id"`
	CrumbID    string `json:"crumb_id"`
}

func (h *Handler) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req apiNavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	var err error
	switch {
	case req.InstanceID != "":
		err = h.service.NavigateInto(req.InstanceID)
	case req.CrumbID != "":
		err = h.service.NavigateTo(req.CrumbID)
	default:
		err = errInstanceOrCrumbRequired
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"breadcrumbs": h.service.Breadcrumbs()})
}

func (h *Handler) handlePlace(w http.ResponseWriter, r *http.Request) {
	var req application.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	inst, err := h.service.PlaceNew(r.Context(), req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

type apiWallRequest struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (h *Handler) handleDrawWall(w http.ResponseWriter, r *http.Request) {
	var req apiWallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	inst, err := h.service.DrawWall(r.Context(), req.X1, req.Y1, req.X2, req.Y2)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

type apiMoveRequest struct {
	InstanceID string   `json:"instance_id"`
	PosX       *int     `json:"pos_x"`
	PosY       *int     `json:"pos_y"`
	PixelX     *float64 `json:"pixel_x"`
	PixelY     *float64 `json:"pixel_y"`
	CellSize   float64  `json:"cell_size"`
}

// handleMove accepts either already-snapped cells or a raw pixel drop
// point with the cell size the canvas was rendered at.
func (h *Handler) handleMove(w http.ResponseWriter, r *http.Request) {
	var req apiMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	var posX, posY int
	switch {
	case req.PosX != nil && req.PosY != nil:
		posX, posY = *req.PosX, *req.PosY
	case req.PixelX != nil && req.PixelY != nil && req.CellSize > 0:
		posX = geometry.SnapToCell(*req.PixelX, req.CellSize)
		posY = geometry.SnapToCell(*req.PixelY, req.CellSize)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "pos_x/pos_y or pixel_x/pixel_y with cell_size are required"})
		return
	}
	if err := h.service.Move(r.Context(), req.InstanceID, posX, posY); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pos_x": posX, "pos_y": posY})
}

type apiMoveSelectionRequest struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

func (h *Handler) handleMoveSelection(w http.ResponseWriter, r *http.Request) {
	var req apiMoveSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if err := h.service.MoveSelection(r.Context(), req.DX, req.DY); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"moved": true})
}

type apiInstanceRequest struct {
	InstanceID string `json:"instance_id"`
}

func (h *Handler) handleRotate(w http.ResponseWriter, r *http.Request) {
	var req apiInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	next, err := h.service.Rotate(r.Context(), req.InstanceID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orientation": next})
}

func (h *Handler) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req apiInstanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	next, err := h.service.Flip(r.Context(), req.InstanceID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orientation": next})
}

type apiResizeRequest struct {
	InstanceID string   `json:"instance_id"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	X1         *float64 `json:"x1"`
	Y1         *float64 `json:"y1"`
	X2         *float64 `json:"x2"`
	Y2         *float64 `json:"y2"`
}

func (h *Handler) handleResize(w http.ResponseWriter, r *http.Request) {
	var req apiResizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	var err error
	if req.X1 != nil && req.Y1 != nil && req.X2 != nil && req.Y2 != nil {
		err = h.service.UpdateWall(r.Context(), req.InstanceID, *req.X1, *req.Y1, *req.X2, *req.Y2)
	} else {
		err = h.service.Resize(r.Context(), req.InstanceID, req.Width, req.Height)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resized": true})
}

type apiDeleteRequest struct {
	InstanceID string `json:"instance_id"`
	Confirm    bool   `json:"confirm"`
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req apiDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if err := h.service.DeleteInstance(r.Context(), req.InstanceID, req.Confirm); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

type apiSelectRequest struct {
	InstanceID string `json:"instance_id"`
	Multi      bool   `json:"multi"`
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req apiSelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid payload"})
		return
	}
	if err := h.service.Click(req.InstanceID, req.Multi); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": h.service.Selection()})
}

func (h *Handler) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.service.ClearSelection()
	writeJSON(w, http.StatusOK, map[string]any{"selection": []string{}})
}

func (h *Handler) handleCopy(w http.ResponseWriter, _ *http.Request) {
	count, err := h.service.Copy()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"copied": count})
}

func (h *Handler) handlePaste(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Paste(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pasted": ids})
}

func (h *Handler) handleUnplaced(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.service.Unplaced(application.UnplacedQuery{
		SiteID:   q.Get("site_id"),
		RoomID:   q.Get("room_id"),
		Search:   q.Get("search"),
		GroupBy:  parseBool(q.Get("group")),
		SortDesc: parseBool(q.Get("desc")),
	})
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

var errInstanceOrCrumbRequired = errors.New("instance_id or crumb_id is required")

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && v
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
