package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	sqliteadapter "github.com/roomlayout/inventorymap/internal/adapters/db/sqlite"
	httpadapter "github.com/roomlayout/inventorymap/internal/adapters/http"
	rpcadapter "github.com/roomlayout/inventorymap/internal/adapters/rpcjson"
	"github.com/roomlayout/inventorymap/internal/application"
	"github.com/roomlayout/inventorymap/internal/domain"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "inventorymap",
		Usage: "Spatial inventory layout server and CLI",
		Commands: []*cli.Command{
			serverCommand(),
			sitesCommand(),
			roomsCommand(),
			itemsCommand(),
			layoutCommand(),
			reloadCommand(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, ":8080", "/tmp/inventorymap.sock", "inventorymap.db")
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Run HTTP and JSON-RPC servers",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address"},
			&cli.StringFlag{Name: "rpc-socket", Value: "/tmp/inventorymap.sock", Usage: "JSON-RPC unix socket path"},
			&cli.StringFlag{Name: "db-path", Value: "inventorymap.db", Usage: "SQLite database path"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServer(ctx, c.String("addr"), c.String("rpc-socket"), c.String("db-path"))
		},
	}
}

func runServer(ctx context.Context, addr, rpcSocket, dbPath string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	db, err := sqliteadapter.Open(dbPath)
	if err != nil {
		return err
	}
	if err := sqliteadapter.RunMigrations(ctx, db); err != nil {
		return err
	}

	store := sqliteadapter.NewRowStore(db)
	service := application.NewLayoutService(store, logger)
	if err := service.Init(ctx); err != nil {
		return err
	}

	router := httpadapter.NewRouter(service)
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	rpcSrv, err := rpcadapter.Start(rpcSocket, service)
	if err != nil {
		return err
	}
	defer func() {
		_ = rpcSrv.Close()
	}()
	logger.Info().Str("socket", rpcSocket).Msg("json-rpc listening")

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http listening")
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sitesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sites",
		Usage: "Manage sites",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all sites",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Site
					if err := doSitesList(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printSites(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a site",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "address"},
					&cli.StringFlag{Name: "notes"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Site
					if err := doSiteCreate(ctx, cfg, c.String("name"), c.String("address"), c.String("notes"), &out); err != nil {
						return err
					}
					fmt.Printf("created site %s (%s)\n", out.Name, out.ID)
					return nil
				},
			},
			{
				Name:  "use",
				Usage: "Remember a site as the default scope",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					cfg.LastSiteID = c.String("id")
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("default site saved")
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a site row (descendants are kept)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "yes", Usage: "confirm the deletion"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doSiteDelete(ctx, cfg, c.String("id"), c.Bool("yes")); err != nil {
						return err
					}
					fmt.Println("site deleted")
					return nil
				},
			},
		},
	}
}

func roomsCommand() *cli.Command {
	return &cli.Command{
		Name:  "rooms",
		Usage: "Manage rooms",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List rooms, optionally scoped to a site",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "site", Usage: "site id filter"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					siteID := c.String("site")
					if siteID == "" {
						siteID = cfg.LastSiteID
					}
					var out []domain.Room
					if err := doRoomsList(ctx, cfg, siteID, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printRooms(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create a room inside a site",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "site", Required: true, Usage: "site id"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "dimensions", Usage: `physical size, e.g. "20ft x 15ft"`},
					&cli.IntFlag{Name: "grid-width", Usage: "grid columns when no dimensions"},
					&cli.IntFlag{Name: "grid-height", Usage: "grid rows when no dimensions"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Room
					err = doRoomCreate(ctx, cfg, c.String("site"), c.String("name"), c.String("dimensions"),
						int(c.Int("grid-width")), int(c.Int("grid-height")), &out)
					if err != nil {
						return err
					}
					fmt.Printf("created room %s (%s)\n", out.Name, out.ID)
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a room row (contents are kept)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.BoolFlag{Name: "yes", Usage: "confirm the deletion"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doRoomDelete(ctx, cfg, c.String("id"), c.Bool("yes")); err != nil {
						return err
					}
					fmt.Println("room deleted")
					return nil
				},
			},
		},
	}
}

func itemsCommand() *cli.Command {
	return &cli.Command{
		Name:  "items",
		Usage: "Manage inventory items",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all items",
				Flags: []cli.Flag{&cli.BoolFlag{Name: "json", Usage: "output raw JSON"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out []domain.Item
					if err := doItemsList(ctx, cfg, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printItems(out)
					return nil
				},
			},
			{
				Name:  "create",
				Usage: "Create an item",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "type"},
					&cli.StringFlag{Name: "parent", Usage: "parent room or container id"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Item
					if err := doItemCreate(ctx, cfg, c.String("name"), c.String("type"), c.String("parent"), &out); err != nil {
						return err
					}
					fmt.Printf("created item %s (%s)\n", out.Name, out.ID)
					return nil
				},
			},
		},
	}
}

func layoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "layout",
		Usage: "Canvas navigation and placement",
		Commands: []*cli.Command{
			{
				Name:  "room",
				Usage: "Select the active room",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doSelectRoom(ctx, cfg, c.String("id"), nil); err != nil {
						return err
					}
					cfg.LastRoomID = c.String("id")
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Println("room selected")
					return nil
				},
			},
			{
				Name:  "state",
				Usage: "Show the rendered canvas state",
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "scale", Usage: "pixels per foot"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					scale := c.Float("scale")
					if scale <= 0 {
						scale = cfg.Scale
					}
					var out application.StateView
					if err := doLayoutState(ctx, cfg, scale, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printState(out)
					return nil
				},
			},
			{
				Name:  "scale",
				Usage: "Store the preferred render scale",
				Flags: []cli.Flag{&cli.FloatFlag{Name: "value", Required: true, Usage: "pixels per foot"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					cfg.Scale = c.Float("value")
					if err := saveConfig(cfg); err != nil {
						return err
					}
					fmt.Printf("scale set to %.1f px/ft\n", cfg.Scale)
					return nil
				},
			},
			{
				Name:  "enter",
				Usage: "Navigate into a container instance",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true, Usage: "instance id"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						Breadcrumbs []domain.Breadcrumb `json:"breadcrumbs"`
					}
					if err := doNavigate(ctx, cfg, c.String("id"), "", &out); err != nil {
						return err
					}
					printBreadcrumbs(out.Breadcrumbs)
					return nil
				},
			},
			{
				Name:  "back",
				Usage: "Jump back to a breadcrumb",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true, Usage: "crumb id"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						Breadcrumbs []domain.Breadcrumb `json:"breadcrumbs"`
					}
					if err := doNavigate(ctx, cfg, "", c.String("id"), &out); err != nil {
						return err
					}
					printBreadcrumbs(out.Breadcrumbs)
					return nil
				},
			},
			{
				Name:  "place",
				Usage: "Drop an object into the active context",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Required: true, Usage: "object type, e.g. shelf, door, crate"},
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "ref", Usage: "existing item or container id to place"},
					&cli.IntFlag{Name: "x"},
					&cli.IntFlag{Name: "y"},
					&cli.IntFlag{Name: "width", Value: 1},
					&cli.IntFlag{Name: "height", Value: 1},
					&cli.IntFlag{Name: "shelf-rows"},
					&cli.IntFlag{Name: "shelf-cols"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					req := application.PlaceRequest{
						TypeName:    c.String("type"),
						Name:        c.String("name"),
						ReferenceID: c.String("ref"),
						PosX:        int(c.Int("x")),
						PosY:        int(c.Int("y")),
						Width:       int(c.Int("width")),
						Height:      int(c.Int("height")),
						ShelfRows:   int(c.Int("shelf-rows")),
						ShelfCols:   int(c.Int("shelf-cols")),
					}
					var out domain.Instance
					if err := doPlace(ctx, cfg, req, &out); err != nil {
						return err
					}
					fmt.Printf("placed %s at (%d,%d)\n", out.ID, out.PosX, out.PosY)
					return nil
				},
			},
			{
				Name:  "wall",
				Usage: "Draw a wall segment in feet",
				Flags: []cli.Flag{
					&cli.FloatFlag{Name: "x1", Required: true},
					&cli.FloatFlag{Name: "y1", Required: true},
					&cli.FloatFlag{Name: "x2", Required: true},
					&cli.FloatFlag{Name: "y2", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out domain.Instance
					if err := doDrawWall(ctx, cfg, c.Float("x1"), c.Float("y1"), c.Float("x2"), c.Float("y2"), &out); err != nil {
						return err
					}
					fmt.Printf("wall %s drawn\n", out.ID)
					return nil
				},
			},
			{
				Name:  "move",
				Usage: "Move an instance to a cell or a pixel drop point",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "instance id"},
					&cli.IntFlag{Name: "x", Value: -1},
					&cli.IntFlag{Name: "y", Value: -1},
					&cli.FloatFlag{Name: "px", Value: -1, Usage: "pixel x"},
					&cli.FloatFlag{Name: "py", Value: -1, Usage: "pixel y"},
					&cli.FloatFlag{Name: "cell", Usage: "cell size in pixels, required with --px/--py"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						PosX int `json:"pos_x"`
						PosY int `json:"pos_y"`
					}
					if c.Float("px") >= 0 && c.Float("py") >= 0 {
						err = doMovePixels(ctx, cfg, c.String("id"), c.Float("px"), c.Float("py"), c.Float("cell"), &out)
					} else {
						err = doMove(ctx, cfg, c.String("id"), int(c.Int("x")), int(c.Int("y")), &out)
					}
					if err != nil {
						return err
					}
					fmt.Printf("moved to (%d,%d)\n", out.PosX, out.PosY)
					return nil
				},
			},
			{
				Name:  "nudge",
				Usage: "Shift the whole selection by a cell delta",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "dx"},
					&cli.IntFlag{Name: "dy"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doMoveSelection(ctx, cfg, int(c.Int("dx")), int(c.Int("dy"))); err != nil {
						return err
					}
					fmt.Println("selection moved")
					return nil
				},
			},
			{
				Name:  "rotate",
				Usage: "Rotate an instance",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true, Usage: "instance id"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						Orientation string `json:"orientation"`
					}
					if err := doRotate(ctx, cfg, c.String("id"), &out); err != nil {
						return err
					}
					fmt.Printf("orientation: %s\n", out.Orientation)
					return nil
				},
			},
			{
				Name:  "flip",
				Usage: "Flip a door instance",
				Flags: []cli.Flag{&cli.StringFlag{Name: "id", Required: true, Usage: "instance id"}},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						Orientation string `json:"orientation"`
					}
					if err := doFlip(ctx, cfg, c.String("id"), &out); err != nil {
						return err
					}
					fmt.Printf("orientation: %s\n", out.Orientation)
					return nil
				},
			},
			{
				Name:  "resize",
				Usage: "Resize an instance in cells",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "instance id"},
					&cli.IntFlag{Name: "width", Required: true},
					&cli.IntFlag{Name: "height", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doResize(ctx, cfg, c.String("id"), int(c.Int("width")), int(c.Int("height")), nil); err != nil {
						return err
					}
					fmt.Println("resized")
					return nil
				},
			},
			{
				Name:  "delete",
				Usage: "Delete an instance (and its backing container)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "instance id"},
					&cli.BoolFlag{Name: "yes", Usage: "confirm the deletion"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doDeleteInstance(ctx, cfg, c.String("id"), c.Bool("yes")); err != nil {
						return err
					}
					fmt.Println("instance deleted")
					return nil
				},
			},
			{
				Name:  "select",
				Usage: "Select an instance on the canvas",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true, Usage: "instance id"},
					&cli.BoolFlag{Name: "multi", Usage: "toggle instead of replace"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						Selection []string `json:"selection"`
					}
					if err := doSelect(ctx, cfg, c.String("id"), c.Bool("multi"), &out); err != nil {
						return err
					}
					fmt.Printf("%d selected\n", len(out.Selection))
					return nil
				},
			},
			{
				Name:  "unselect",
				Usage: "Clear the selection",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					if err := doClearSelection(ctx, cfg); err != nil {
						return err
					}
					fmt.Println("selection cleared")
					return nil
				},
			},
			{
				Name:  "copy",
				Usage: "Copy the selected instances",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						Copied int `json:"copied"`
					}
					if err := doCopy(ctx, cfg, &out); err != nil {
						return err
					}
					fmt.Printf("%d copied\n", out.Copied)
					return nil
				},
			},
			{
				Name:  "paste",
				Usage: "Paste the clipboard into the active context",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					var out struct {
						Pasted []string `json:"pasted"`
					}
					if err := doPaste(ctx, cfg, &out); err != nil {
						return err
					}
					fmt.Printf("%d pasted\n", len(out.Pasted))
					return nil
				},
			},
			{
				Name:  "unplaced",
				Usage: "List entities without a canvas placement",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "site", Usage: "site id filter"},
					&cli.StringFlag{Name: "room", Usage: "room id filter"},
					&cli.StringFlag{Name: "search"},
					&cli.BoolFlag{Name: "group", Usage: "group by type"},
					&cli.BoolFlag{Name: "desc", Usage: "sort descending"},
					&cli.BoolFlag{Name: "json", Usage: "output raw JSON"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, err := loadConfig()
					if err != nil {
						return err
					}
					q := application.UnplacedQuery{
						SiteID:   c.String("site"),
						RoomID:   c.String("room"),
						Search:   c.String("search"),
						GroupBy:  c.Bool("group"),
						SortDesc: c.Bool("desc"),
					}
					var out application.UnplacedResult
					if err := doUnplaced(ctx, cfg, q, &out); err != nil {
						return err
					}
					if c.Bool("json") {
						return printJSON(out)
					}
					printUnplaced(out)
					return nil
				},
			},
		},
	}
}

func reloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "reload",
		Usage: "Force a full dataset reload on the server",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := doReload(ctx, cfg); err != nil {
				return err
			}
			fmt.Println("reloaded")
			return nil
		},
	}
}

func printBreadcrumbs(crumbs []domain.Breadcrumb) {
	if len(crumbs) == 0 {
		fmt.Println("(no room selected)")
		return
	}
	parts := make([]string, 0, len(crumbs))
	for _, c := range crumbs {
		parts = append(parts, c.DisplayName)
	}
	fmt.Println(strings.Join(parts, " > "))
}
