// Package bot adapts the inspection workflow to Telegram. It decodes updates
// into workflow events, renders prompts into messages and keyboards, and owns
// the wiring of commands, callbacks, and FSM text routes.
package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"depotbot/core/bootstrap"
	coretelegram "depotbot/core/telegram"
	"depotbot/core/telegram/commands"
	"depotbot/core/telegram/router"
	"depotbot/core/telegram/state"
	"depotbot/internal/identity"
	"depotbot/internal/report"
	"depotbot/internal/storage"
	"depotbot/internal/workflow"
)

// App aggregates the bot's services and implements the runner interfaces.
type App struct {
	cfg *Config
	db  *sqlx.DB

	sessions  state.Manager
	store     storage.Store
	identity  *identity.Service
	machine   *workflow.Machine
	assembler *report.Assembler
	exporter  report.Exporter
}

// Bootstrap initializes infrastructure and constructs the application.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
		Seeders: []bootstrap.Seeder{identity.AdminSeed{
			TelegramID: cfg.Core.Telegram.AdminID,
			FullName:   cfg.Admin.FullName,
			Position:   cfg.Admin.Position,
			Railway:    cfg.Admin.Railway,
			Branch:     cfg.Admin.Branch,
		}},
	})
	if err != nil {
		return nil, err
	}

	exporter, err := report.NewXLSXExporter(cfg.Reports.Dir)
	if err != nil {
		_ = res.DB.Close()
		return nil, fmt.Errorf("bot: report exporter init failed: %w", err)
	}

	store := storage.NewPostgresStore(res.DB)
	ident := identity.NewService(res.DB)

	return &App{
		cfg:       cfg,
		db:        res.DB,
		sessions:  state.NewMemoryManager(),
		store:     store,
		identity:  ident,
		machine:   workflow.NewMachine(store),
		assembler: report.NewAssembler(store, ident),
		exporter:  exporter,
	}, nil
}

// TelegramRunOptions assembles registry, middleware, and routes for the runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Начать работу с ботом",
	})

	for key, h := range map[string]tele.HandlerFunc{
		cbBlockPass:    a.onVerdict(workflow.ActionPass),
		cbBlockFail:    a.onVerdict(workflow.ActionFail),
		cbViewReport:   a.onViewReport,
		cbExportReport: a.onExportReport,
	} {
		if err := reg.RegisterCallback(key, h); err != nil {
			return coretelegram.RunOptions{}, err
		}
	}

	reg.SetTextFallback(a.UnknownText())
	reg.SetCallbackNotFound(a.UnknownCallback())
	a.registerStates()

	cfg := &a.cfg.Core
	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: cfg.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: a.UnknownCallback()}))
	routes = append(routes, router.TextRoutes(a.sessions, reg, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)

	return coretelegram.RunOptions{
		Config:      cfg,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(cfg, nil),
		Routes:      routes,
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}

// Every conversation state funnels into the same text handler; the decode
// step differentiates them by the session's current state.
func (a *App) registerStates() {
	for _, st := range []workflow.State{
		workflow.StateChooseAction,
		workflow.StateEnterTrainNumber,
		workflow.StateChooseCategory,
		workflow.StateChooseType,
		workflow.StateCheckBlock,
		workflow.StateEnterNotes,
	} {
		state.RegisterHandler(state.State(st), a.onWorkflowText)
	}
}
