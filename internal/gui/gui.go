// Package gui implements the FileDrive picker window: one tab per configured
// account, each with a debounced search box, plus a shared transfers panel.
package gui

import (
	"context"
	"fmt"
	nethttp "net/http"
	"os"
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"github.com/jodinathan/filedrive/internal/accounts"
	"github.com/jodinathan/filedrive/internal/config"
	"github.com/jodinathan/filedrive/internal/events"
	"github.com/jodinathan/filedrive/internal/httpclient"
	"github.com/jodinathan/filedrive/internal/logging"
	"github.com/jodinathan/filedrive/internal/transfer"
)

// Engine bundles the headless core handed to every tab. It is explicit
// configuration, not a global.
type Engine struct {
	Config    *config.Config
	Bus       *events.EventBus
	Accounts  *accounts.Manager
	Transfers *transfer.Manager

	// HTTPClient is the transfer-tuned client handed to storage providers.
	HTTPClient *nethttp.Client
}

// NewEngine assembles the core from a loaded configuration. Token refresh
// uses the base HTTP client; providers get the transfer-tuned one.
func NewEngine(cfg *config.Config) (*Engine, error) {
	bus := events.NewEventBus(0)

	httpClient, err := httpclient.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	transferClient, err := httpclient.NewTransferClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer HTTP client: %w", err)
	}

	var secrets accounts.SecretStore = accounts.NewKeyringStore()
	if !secrets.(*accounts.KeyringStore).Available() {
		secrets = accounts.NewMemoryStore()
	}

	mgr := accounts.NewManager(cfg, secrets, httpClient, bus)
	transfers := transfer.NewManager(bus, cfg.ParallelTransfers)

	return &Engine{
		Config:     cfg,
		Bus:        bus,
		Accounts:   mgr,
		Transfers:  transfers,
		HTTPClient: transferClient,
	}, nil
}

// Stop shuts down the engine's background workers.
func (e *Engine) Stop() {
	e.Transfers.Stop()
	e.Bus.Close()
}

// Launch opens the picker window and blocks until it is closed.
func Launch(configPath string) error {
	guiLogger := logging.NewLogger("gui", nil)

	if os.Getenv("FILEDRIVE_DEBUG") != "" {
		logging.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		logging.SetGlobalLevel(zerolog.WarnLevel)
	}

	if runtime.GOOS == "linux" {
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return fmt.Errorf("picker window requires a display; DISPLAY and WAYLAND_DISPLAY are not set")
		}
	}

	if configPath == "" {
		var err error
		configPath, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		return err
	}
	engine.Transfers.Start(context.Background())

	myApp := app.NewWithID("com.jodinathan.filedrive")
	myApp.Settings().SetTheme(&filedriveTheme{})

	window := myApp.NewWindow("FileDrive")
	window.SetMaster()

	ui := NewUI(engine, window)
	ui.Start()

	window.SetContent(ui.Build())
	window.Resize(fyne.NewSize(900, 620))
	window.CenterOnScreen()
	window.SetOnClosed(func() {
		ui.Stop()
	})

	guiLogger.Infof("picker ready with %d account(s)", len(cfg.Accounts))
	window.ShowAndRun()
	return nil
}

// UI is the picker window: account tabs above a shared transfers panel.
type UI struct {
	engine *Engine
	window fyne.Window

	tabs      []*AccountTab
	transfers *TransfersPanel

	ctx    context.Context
	cancel context.CancelFunc
}

// NewUI creates the picker UI for the engine's configured accounts.
func NewUI(engine *Engine, window fyne.Window) *UI {
	ctx, cancel := context.WithCancel(context.Background())
	return &UI{
		engine:    engine,
		window:    window,
		transfers: NewTransfersPanel(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Build creates the window layout.
func (ui *UI) Build() fyne.CanvasObject {
	if len(ui.engine.Config.Accounts) == 0 {
		empty := widget.NewLabel("No accounts configured.\nAdd one with: filedrive accounts add")
		empty.Alignment = fyne.TextAlignCenter
		return container.NewCenter(empty)
	}

	items := make([]*container.TabItem, 0, len(ui.engine.Config.Accounts))
	for _, id := range ui.engine.Config.AccountIDs() {
		acct := ui.engine.Config.Accounts[id]
		tab := NewAccountTab(ui.engine, acct, ui.window)
		ui.tabs = append(ui.tabs, tab)
		items = append(items, container.NewTabItem(acct.DisplayName, tab.Build()))
	}

	return container.NewBorder(nil, ui.transfers, nil, nil, container.NewAppTabs(items...))
}

// Start begins event monitoring.
func (ui *UI) Start() {
	go ui.monitorTransfers()
}

// Stop tears down the tabs and the engine. Every tab's search coordinator is
// closed first so no callback touches a dead window.
func (ui *UI) Stop() {
	for _, tab := range ui.tabs {
		tab.Close()
	}
	ui.cancel()
	ui.engine.Stop()
}

func (ui *UI) monitorTransfers() {
	ch := ui.engine.Bus.SubscribeAll()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if te, isTransfer := ev.(*events.TransferEvent); isTransfer {
				ui.transfers.Handle(te)
			}
		case <-ui.ctx.Done():
			return
		}
	}
}
