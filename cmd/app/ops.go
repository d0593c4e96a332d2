package main

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/roomlayout/inventorymap/internal/application"
)

func doSitesList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "sites.list", map[string]any{}, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, "/api/sites", nil, out)
}

func doSiteCreate(ctx context.Context, cfg cliConfig, name, address, notes string, out any) error {
	in := map[string]any{"name": name, "address": address, "notes": notes}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "sites.create", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/sites", in, out)
}

func doSiteDelete(ctx context.Context, cfg cliConfig, siteID string, confirm bool) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "sites.delete", map[string]any{"site_id": siteID, "confirm": confirm}, nil)
	}
	path := "/api/sites/" + url.PathEscape(siteID) + "?confirm=" + strconv.FormatBool(confirm)
	return newAPIClient(cfg.Server).request(ctx, http.MethodDelete, path, nil, nil)
}

func doRoomsList(ctx context.Context, cfg cliConfig, siteID string, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "rooms.list", map[string]any{"site_id": siteID}, out)
	}
	path := "/api/rooms"
	if siteID != "" {
		path += "?site_id=" + url.QueryEscape(siteID)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, path, nil, out)
}

func doRoomCreate(ctx context.Context, cfg cliConfig, siteID, name, dimensions string, gridW, gridH int, out any) error {
	in := map[string]any{
		"site_id":     siteID,
		"name":        name,
		"dimensions":  dimensions,
		"grid_width":  gridW,
		"grid_height": gridH,
	}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "rooms.create", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/rooms", in, out)
}

func doRoomDelete(ctx context.Context, cfg cliConfig, roomID string, confirm bool) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "rooms.delete", map[string]any{"room_id": roomID, "confirm": confirm}, nil)
	}
	path := "/api/rooms/" + url.PathEscape(roomID) + "?confirm=" + strconv.FormatBool(confirm)
	return newAPIClient(cfg.Server).request(ctx, http.MethodDelete, path, nil, nil)
}

func doItemsList(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "items.list", map[string]any{}, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, "/api/items", nil, out)
}

func doItemCreate(ctx context.Context, cfg cliConfig, name, typeName, parentID string, out any) error {
	in := map[string]any{"name": name, "type": typeName, "parent_id": parentID}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "items.create", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/items", in, out)
}

func doLayoutState(ctx context.Context, cfg cliConfig, scale float64, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.state", map[string]any{"scale": scale}, out)
	}
	path := "/api/layout/state"
	if scale > 0 {
		path += "?scale=" + strconv.FormatFloat(scale, 'f', -1, 64)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, path, nil, out)
}

func doSelectRoom(ctx context.Context, cfg cliConfig, roomID string, out any) error {
	in := map[string]any{"room_id": roomID}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.select_room", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/room", in, out)
}

func doNavigate(ctx context.Context, cfg cliConfig, instanceID, crumbID string, out any) error {
	in := map[string]any{"instance_id": instanceID, "crumb_id": crumbID}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.navigate", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/navigate", in, out)
}

func doPlace(ctx context.Context, cfg cliConfig, req application.PlaceRequest, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.place", req, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/place", req, out)
}

func doDrawWall(ctx context.Context, cfg cliConfig, x1, y1, x2, y2 float64, out any) error {
	in := map[string]any{"x1": x1, "y1": y1, "x2": x2, "y2": y2}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.wall", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/wall", in, out)
}

func doMove(ctx context.Context, cfg cliConfig, instanceID string, posX, posY int, out any) error {
	in := map[string]any{"instance_id": instanceID, "pos_x": posX, "pos_y": posY}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.move", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/move", in, out)
}

func doMovePixels(ctx context.Context, cfg cliConfig, instanceID string, pixelX, pixelY, cellSize float64, out any) error {
	in := map[string]any{"instance_id": instanceID, "pixel_x": pixelX, "pixel_y": pixelY, "cell_size": cellSize}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.move", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/move", in, out)
}

func doMoveSelection(ctx context.Context, cfg cliConfig, dx, dy int) error {
	in := map[string]any{"dx": dx, "dy": dy}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.move_selection", in, nil)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/move-selection", in, nil)
}

func doRotate(ctx context.Context, cfg cliConfig, instanceID string, out any) error {
	in := map[string]any{"instance_id": instanceID}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.rotate", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/rotate", in, out)
}

func doFlip(ctx context.Context, cfg cliConfig, instanceID string, out any) error {
	in := map[string]any{"instance_id": instanceID}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.flip", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/flip", in, out)
}

func doResize(ctx context.Context, cfg cliConfig, instanceID string, width, height int, out any) error {
	in := map[string]any{"instance_id": instanceID, "width": width, "height": height}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.resize", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/resize", in, out)
}

func doDeleteInstance(ctx context.Context, cfg cliConfig, instanceID string, confirm bool) error {
	in := map[string]any{"instance_id": instanceID, "confirm": confirm}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.delete", in, nil)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/delete", in, nil)
}

func doSelect(ctx context.Context, cfg cliConfig, instanceID string, multi bool, out any) error {
	in := map[string]any{"instance_id": instanceID, "multi": multi}
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.select", in, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/select", in, out)
}

func doClearSelection(ctx context.Context, cfg cliConfig) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.select_clear", map[string]any{}, nil)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/select/clear", nil, nil)
}

func doCopy(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.copy", map[string]any{}, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/copy", nil, out)
}

func doPaste(ctx context.Context, cfg cliConfig, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.paste", map[string]any{}, out)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/layout/paste", nil, out)
}

func doUnplaced(ctx context.Context, cfg cliConfig, q application.UnplacedQuery, out any) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "layout.unplaced", q, out)
	}
	values := url.Values{}
	if q.SiteID != "" {
		values.Set("site_id", q.SiteID)
	}
	if q.RoomID != "" {
		values.Set("room_id", q.RoomID)
	}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.GroupBy {
		values.Set("group", "true")
	}
	if q.SortDesc {
		values.Set("desc", "true")
	}
	path := "/api/layout/unplaced"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodGet, path, nil, out)
}

func doReload(ctx context.Context, cfg cliConfig) error {
	if cfg.Transport == "uds" {
		return newRPCClient(cfg.Socket).call(ctx, "reload", map[string]any{}, nil)
	}
	return newAPIClient(cfg.Server).request(ctx, http.MethodPost, "/api/reload", nil, nil)
}
