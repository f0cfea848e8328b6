// Package api exposes the inventory operations as a JSON REST API
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/spares/pkg/application/services"
	"github.com/vsinha/spares/pkg/domain/entities"
)

// Config holds the API settings
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Server routes HTTP requests to the service
type Server struct {
	svc    *services.Service
	tokens *TokenIssuer
}

// NewServer creates a Server
func NewServer(svc *services.Service, cfg Config) *Server {
	return &Server{svc: svc, tokens: NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the API routes to router
func (s *Server) RegisterRoutes(router *gin.Engine) {
	svc := s.svc

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/api/auth/login", s.login)

	api := router.Group("/api", requireAuth(s.tokens))
	approvers := requireRole(entities.RoleApprover, entities.RoleAdmin)

	api.POST("/users", requireRole(entities.RoleAdmin), create(svc.CreateUser))
	api.POST("/gst", s.computeGST)

	// master data
	api.GET("/spare-parts", s.listSpareParts)
	api.POST("/spare-parts", create(svc.CreateSparePart))
	api.GET("/spare-parts/:id", byID(svc.GetSparePart))
	api.PUT("/spare-parts/:id", action(svc.UpdateSparePart))

	api.GET("/locations", all(svc.ListLocations))
	api.POST("/locations", create(svc.CreateLocation))
	api.GET("/locations/:id", byID(svc.GetLocation))

	api.GET("/suppliers", s.listSuppliers)
	api.POST("/suppliers", create(svc.CreateSupplier))
	api.GET("/suppliers/:id", byID(svc.GetSupplier))

	api.GET("/taxes", all(svc.ListTaxes))
	api.POST("/taxes", create(svc.CreateTax))

	api.GET("/categories", all(svc.ListCategories))
	api.POST("/categories", create(svc.CreateCategory))
	api.GET("/units", all(svc.ListUnits))
	api.POST("/units", create(svc.CreateUnit))

	api.GET("/machines", all(svc.ListMachines))
	api.POST("/machines", create(svc.CreateMachine))
	api.GET("/machines/:id", byID(svc.GetMachine))
	api.GET("/machines/:id/parts", s.machineParts)
	api.POST("/machines/:id/parts", s.installPart)
	api.POST("/machine-parts/:id/remove", s.removePart)

	// stock
	api.GET("/stock", s.stockLevels)
	api.POST("/stock/adjustments", create(svc.AdjustStock))
	api.POST("/stock/import", s.importStock)
	api.GET("/stock/movements", s.movements)
	api.GET("/reports/low-stock", s.lowStock)
	api.GET("/reports/valuation", s.valuation)
	api.GET("/replenishment", all(svc.PlanReplenishment))
	api.POST("/replenishment", s.raiseReplenishment)

	// procurement
	api.GET("/indents", list(svc.ListIndents))
	api.POST("/indents", create(svc.CreateIndent))
	api.GET("/indents/:id", byID(svc.GetIndent))
	api.POST("/indents/:id/submit", byID(svc.SubmitIndent))
	api.POST("/indents/:id/approve", approvers, s.approveIndent)
	api.POST("/indents/:id/reject", approvers, s.rejectIndent)
	api.POST("/indents/:id/cancel", byID(svc.CancelIndent))
	api.POST("/indents/:id/convert", action(svc.ConvertIndentToPO))

	api.GET("/purchase-orders", list(svc.ListPurchaseOrders))
	api.POST("/purchase-orders", create(svc.CreatePurchaseOrder))
	api.GET("/purchase-orders/:id", byID(svc.GetPurchaseOrder))
	api.PUT("/purchase-orders/:id/items", action(svc.UpdatePurchaseOrderItems))
	api.POST("/purchase-orders/:id/send", byID(svc.SendPurchaseOrder))
	api.POST("/purchase-orders/:id/acknowledge", byID(svc.AcknowledgePurchaseOrder))
	api.POST("/purchase-orders/:id/cancel", byID(svc.CancelPurchaseOrder))

	api.GET("/grns", list(svc.ListGRNs))
	api.POST("/grns", create(svc.CreateGRN))
	api.GET("/grns/:id", byID(svc.GetGRN))
	api.POST("/grns/:id/post", action(svc.PostGRN))

	api.GET("/credit-notes", list(svc.ListCreditNotes))
	api.POST("/credit-notes", create(svc.CreateCreditNote))
	api.GET("/credit-notes/:id", byID(svc.GetCreditNote))
	api.POST("/credit-notes/:id/issue", byID(svc.IssueCreditNote))
	api.POST("/credit-notes/:id/adjust", action(svc.AdjustCreditNote))
	api.POST("/credit-notes/:id/cancel", byID(svc.CancelCreditNote))

	// dispatch and rework
	api.GET("/delivery-challans", list(svc.ListDeliveryChallans))
	api.GET("/delivery-challans/overdue", all(svc.OverdueChallans))
	api.POST("/delivery-challans", create(svc.CreateDeliveryChallan))
	api.GET("/delivery-challans/:id", byID(svc.GetDeliveryChallan))
	api.POST("/delivery-challans/:id/dispatch", action(svc.DispatchDeliveryChallan))
	api.POST("/delivery-challans/:id/receive", byID(svc.ReceiveDeliveryChallan))
	api.POST("/delivery-challans/:id/return", action(svc.ReturnDeliveryChallan))
	api.POST("/delivery-challans/:id/cancel", byID(svc.CancelDeliveryChallan))

	api.GET("/reworks", list(svc.ListReworks))
	api.POST("/reworks", create(svc.CreateRework))
	api.GET("/reworks/:id", byID(svc.GetRework))
	api.POST("/reworks/:id/challan", byID(svc.GenerateReworkDC))
	api.POST("/reworks/:id/send", action(svc.SendRework))
	api.POST("/reworks/:id/in-service", byID(svc.MarkReworkInService))
	api.POST("/reworks/:id/receive", action(svc.ReceiveRework))
	api.POST("/reworks/:id/complete", byID(svc.CompleteRework))

	// production
	api.GET("/production-issues", list(svc.ListProductionIssues))
	api.POST("/production-issues", create(svc.CreateProductionIssue))
	api.GET("/production-issues/:id", byID(svc.GetProductionIssue))
	api.POST("/production-issues/:id/issue", action(svc.IssueProduction))
	api.POST("/production-issues/:id/return", action(svc.ReturnProduction))
	api.POST("/production-issues/:id/close", byID(svc.CloseProductionIssue))
	api.POST("/production-issues/:id/cancel", byID(svc.CancelProductionIssue))

	// transfers
	api.GET("/stock-transfers", list(svc.ListStockTransfers))
	api.POST("/stock-transfers", create(svc.CreateStockTransfer))
	api.GET("/stock-transfers/:id", byID(svc.GetStockTransfer))
	api.POST("/stock-transfers/:id/submit", byID(svc.SubmitStockTransfer))
	api.POST("/stock-transfers/:id/dispatch", action(svc.DispatchStockTransfer))
	api.POST("/stock-transfers/:id/receive", action(svc.ReceiveStockTransfer))
	api.POST("/stock-transfers/:id/complete", byID(svc.CompleteStockTransfer))
	api.POST("/stock-transfers/:id/cancel", byID(svc.CancelStockTransfer))

	// sales
	api.GET("/sale-invoices", list(svc.ListSaleInvoices))
	api.POST("/sale-invoices", create(svc.CreateSaleInvoice))
	api.GET("/sale-invoices/:id", byID(svc.GetSaleInvoice))
	api.POST("/sale-invoices/:id/generate", byID(svc.GenerateSaleInvoice))
	api.POST("/sale-invoices/:id/einvoice", byID(svc.RegisterEInvoice))
	api.POST("/sale-invoices/:id/cancel", byID(svc.CancelSaleInvoice))
}
