package rpcjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/roomlayout/inventorymap/internal/application"
	"github.com/roomlayout/inventorymap/internal/geometry"
)

type Server struct {
	service  *application.LayoutService
	listener net.Listener
	path     string
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      any             `json:"id"`
}

type response struct {
	JSONRPC string    `json:"jsonrpc"`
	Result  any       `json:"result,omitempty"`
	Error   *rpcError `json:"error,omitempty"`
	ID      any       `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func Start(path string, service *application.LayoutService) (*Server, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("rpc socket path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Server{service: service, listener: ln, path: path}
	go s.serve()
	return s, nil
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Close() error {
	err := s.listener.Close()
	_ = os.Remove(s.path)
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			_ = enc.Encode(response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}, ID: nil})
			return
		}

		resp := s.dispatch(context.Background(), req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req request) response {
	if req.JSONRPC != "2.0" || strings.TrimSpace(req.Method) == "" {
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32600, Message: "invalid request"}, ID: req.ID}
	}

	switch req.Method {
	case "sites.list":
		ds := s.service.Dataset()
		if ds == nil {
			return internalError(req.ID, application.ErrNotLoaded)
		}
		return result(req.ID, ds.Sites)
	case "sites.create":
		var p struct {
			Name    string `json:"name"`
			Address string `json:"address"`
			Notes   string `json:"notes"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateSite(ctx, p.Name, p.Address, p.Notes)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "sites.delete":
		var p struct {
			SiteID  string `json:"site_id"`
			Confirm bool   `json:"confirm"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteSite(ctx, p.SiteID, p.Confirm); err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"deleted": true})
	case "rooms.list":
		var p struct {
			SiteID string `json:"site_id"`
		}
		if len(req.Params) > 0 && !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		ds := s.service.Dataset()
		if ds == nil {
			return internalError(req.ID, application.ErrNotLoaded)
		}
		if p.SiteID == "" {
			return result(req.ID, ds.Rooms)
		}
		rooms := ds.Rooms[:0:0]
		for _, room := range ds.Rooms {
			if room.SiteID == p.SiteID {
				rooms = append(rooms, room)
			}
		}
		return result(req.ID, rooms)
	case "rooms.create":
		var p struct {
			SiteID     string `json:"site_id"`
			Name       string `json:"name"`
			Dimensions string `json:"dimensions"`
			GridWidth  int    `json:"grid_width"`
			GridHeight int    `json:"grid_height"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateRoom(ctx, p.SiteID, p.Name, p.Dimensions, p.GridWidth, p.GridHeight)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "rooms.delete":
		var p struct {
			RoomID  string `json:"room_id"`
			Confirm bool   `json:"confirm"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteRoom(ctx, p.RoomID, p.Confirm); err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"deleted": true})
	case "items.list":
		ds := s.service.Dataset()
		if ds == nil {
			return internalError(req.ID, application.ErrNotLoaded)
		}
		return result(req.ID, ds.Items)
	case "items.create":
		var p struct {
			Name     string `json:"name"`
			Type     string `json:"type"`
			ParentID string `json:"parent_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.CreateItem(ctx, p.Name, p.Type, p.ParentID)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "layout.state":
		var p struct {
			Scale     float64 `json:"scale"`
			ViewportW float64 `json:"viewport_w"`
			ViewportH float64 `json:"viewport_h"`
		}
		if len(req.Params) > 0 && !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.State(p.Scale, p.ViewportW, p.ViewportH)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "layout.select_room":
		var p struct {
			RoomID string `json:"room_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.SelectRoom(p.RoomID); err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"breadcrumbs": s.service.Breadcrumbs()})
	case "layout.navigate":
		var p struct {
			InstanceID string `json:"instance_id"`
			CrumbID    string `json:"crumb_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		var err error
		switch {
		case p.InstanceID != "":
			err = s.service.NavigateInto(p.InstanceID)
		case p.CrumbID != "":
			err = s.service.NavigateTo(p.CrumbID)
		default:
			return invalidParams(req.ID)
		}
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"breadcrumbs": s.service.Breadcrumbs()})
	case "layout.place":
		var p application.PlaceRequest
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.PlaceNew(ctx, p)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "layout.wall":
		var p struct {
			X1 float64 `json:"x1"`
			Y1 float64 `json:"y1"`
			X2 float64 `json:"x2"`
			Y2 float64 `json:"y2"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.DrawWall(ctx, p.X1, p.Y1, p.X2, p.Y2)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "layout.move":
		var p struct {
			InstanceID string   `json:"instance_id"`
			PosX       *int     `json:"pos_x"`
			PosY       *int     `json:"pos_y"`
			PixelX     *float64 `json:"pixel_x"`
			PixelY     *float64 `json:"pixel_y"`
			CellSize   float64  `json:"cell_size"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		var posX, posY int
		switch {
		case p.PosX != nil && p.PosY != nil:
			posX, posY = *p.PosX, *p.PosY
		case p.PixelX != nil && p.PixelY != nil && p.CellSize > 0:
			posX = geometry.SnapToCell(*p.PixelX, p.CellSize)
			posY = geometry.SnapToCell(*p.PixelY, p.CellSize)
		default:
			return invalidParams(req.ID)
		}
		if err := s.service.Move(ctx, p.InstanceID, posX, posY); err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"pos_x": posX, "pos_y": posY})
	case "layout.move_selection":
		var p struct {
			DX int `json:"dx"`
			DY int `json:"dy"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.MoveSelection(ctx, p.DX, p.DY); err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"moved": true})
	case "layout.rotate":
		var p struct {
			InstanceID string `json:"instance_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		next, err := s.service.Rotate(ctx, p.InstanceID)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"orientation": next})
	case "layout.flip":
		var p struct {
			InstanceID string `json:"instance_id"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		next, err := s.service.Flip(ctx, p.InstanceID)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"orientation": next})
	case "layout.resize":
		var p struct {
			InstanceID string   `json:"instance_id"`
			Width      int      `json:"width"`
			Height     int      `json:"height"`
			X1         *float64 `json:"x1"`
			Y1         *float64 `json:"y1"`
			X2         *float64 `json:"x2"`
			Y2         *float64 `json:"y2"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		var err error
		if p.X1 != nil && p.Y1 != nil && p.X2 != nil && p.Y2 != nil {
			err = s.service.UpdateWall(ctx, p.InstanceID, *p.X1, *p.Y1, *p.X2, *p.Y2)
		} else {
			err = s.service.Resize(ctx, p.InstanceID, p.Width, p.Height)
		}
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"resized": true})
	case "layout.delete":
		var p struct {
			InstanceID string `json:"instance_id"`
			Confirm    bool   `json:"confirm"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.DeleteInstance(ctx, p.InstanceID, p.Confirm); err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"deleted": true})
	case "layout.select":
		var p struct {
			InstanceID string `json:"instance_id"`
			Multi      bool   `json:"multi"`
		}
		if !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		if err := s.service.Click(p.InstanceID, p.Multi); err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"selection": s.service.Selection()})
	case "layout.select_clear":
		s.service.ClearSelection()
		return result(req.ID, map[string]any{"selection": []string{}})
	case "layout.copy":
		count, err := s.service.Copy()
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"copied": count})
	case "layout.paste":
		ids, err := s.service.Paste(ctx)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, map[string]any{"pasted": ids})
	case "layout.unplaced":
		var p application.UnplacedQuery
		if len(req.Params) > 0 && !decodeParams(req.Params, &p) {
			return invalidParams(req.ID)
		}
		out, err := s.service.Unplaced(p)
		if err != nil {
			return appError(req.ID, err)
		}
		return result(req.ID, out)
	case "reload":
		if err := s.service.Reload(ctx); err != nil {
			return internalError(req.ID, err)
		}
		return result(req.ID, map[string]any{"reloaded": true})
	default:
		return response{JSONRPC: "2.0", Error: &rpcError{Code: -32601, Message: "method not found"}, ID: req.ID}
	}
}

func decodeParams(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func result(id any, payload any) response {
	return response{JSONRPC: "2.0", Result: payload, ID: id}
}

func invalidParams(id any) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: -32602, Message: "invalid params"}, ID: id}
}

func appError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: 40000, Message: err.Error()}, ID: id}
}

func internalError(id any, err error) response {
	return response{JSONRPC: "2.0", Error: &rpcError{Code: 50000, Message: fmt.Sprintf("internal error: %v", err)}, ID: id}
}
