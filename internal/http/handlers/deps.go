package handlers

import (
	"github.com/jmoiron/sqlx"

	"swiftkart/internal/config"
	"swiftkart/internal/courier"
	"swiftkart/internal/notify"
	"swiftkart/internal/repos"
	"swiftkart/internal/services"
)

type Deps struct {
	CatalogHandler *CatalogHandler
	OrderHandler   *OrderHandler
	ReturnHandler  *ReturnHandler
	AdminHandler   *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	returnRepo := repos.NewReturnRepo(db)
	cancelRepo := repos.NewCancellationRepo(db)
	settingsRepo := repos.NewSettingsRepo(db)

	courierGW := courier.New(cfg.CourierBaseURL, cfg.CourierAPIKey)
	notifier := notify.LogNotifier{}

	catalogSvc := services.NewCatalogService(catRepo, prodRepo)
	orderSvc := services.NewOrderService(prodRepo, orderRepo)
	lifecycleSvc := services.NewLifecycleService(orderRepo, prodRepo, cancelRepo, courierGW, notifier)
	returnSvc := services.NewReturnService(orderRepo, returnRepo, prodRepo, notifier)

	return &Deps{
		CatalogHandler: &CatalogHandler{Catalog: catalogSvc},
		OrderHandler: &OrderHandler{
			Order:     orderSvc,
			Lifecycle: lifecycleSvc,
			Orders:    orderRepo,
			Settings:  settingsRepo,
		},
		ReturnHandler: &ReturnHandler{Returns: returnSvc},
		AdminHandler: &AdminHandler{
			Lifecycle:  lifecycleSvc,
			Returns:    returnSvc,
			ReturnRepo: returnRepo,
			OrderRepo:  orderRepo,
			Products:   prodRepo,
			Settings:   settingsRepo,
		},
	}
}
