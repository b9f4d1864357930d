package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gosheetlab/sheetcore/internal/config"
	"github.com/gosheetlab/sheetcore/internal/notify"
	"github.com/gosheetlab/sheetcore/internal/persistence"
)

// App is the wired HTTP application: store, dispatcher, registry, and
// router assembled together.
type App struct {
	Store      *persistence.Store
	Dispatcher *notify.Dispatcher
	Registry   *Registry
	Router     *gin.Engine
}

func Build(cfg config.Config) (*App, error) {
	store, err := persistence.Open(cfg.DatabaseFilePath)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	dispatcher := notify.NewDispatcher(cfg.WebhookWorkerCount)
	controller := NewController(registry, store, dispatcher)

	return &App{
		Store:      store,
		Dispatcher: dispatcher,
		Registry:   registry,
		Router:     NewRouter(controller),
	}, nil
}

func (a *App) Run(addr string) error {
	a.Dispatcher.Start()
	defer a.Dispatcher.Close()
	defer a.Store.Close()

	return http.ListenAndServe(addr, a.Router)
}
