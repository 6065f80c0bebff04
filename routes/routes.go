package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/projetojaiba/corrida-system/draw"
	"github.com/projetojaiba/corrida-system/handlers"
	"github.com/projetojaiba/corrida-system/middleware"
	"github.com/projetojaiba/corrida-system/models"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes монтирует публичные и админские маршруты.
// Админская зона закрыта JWT-мидлварью; отдельные группы дополнительно
// ограничены правами роли.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	inscricaoHandler *handlers.InscricaoHandler,
	loteHandler *handlers.LoteHandler,
	sorteioHandler *handlers.SorteioHandler,
	exportHandler *handlers.ExportHandler,
	fileHandler *handlers.FileHandler,
	wsHub *draw.Hub,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	// Публичная зона: форма регистрации и просмотр лотов.
	router.Post("/inscricoes", inscricaoHandler.Create)
	router.Get("/lotes", loteHandler.List)
	router.Post("/auth/login", authHandler.Login)

	// Зрители розыгрыша подключаются без авторизации.
	router.Get("/ws/sorteios/{token}", func(w http.ResponseWriter, r *http.Request) {
		handlers.ServeDrawWs(wsHub, w, r)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/auth/session", authHandler.ValidateSession)

		r.Route("/inscricoes", func(r chi.Router) {
			r.Get("/", inscricaoHandler.List)
			r.Get("/stats", inscricaoHandler.Stats)
			r.Get("/{id}", inscricaoHandler.Get)
			r.Put("/{id}/status", inscricaoHandler.UpdateStatus)
			r.Post("/{id}/comprovante", inscricaoHandler.ReplaceComprovante)
			r.Get("/{id}/comprovante", fileHandler.Comprovante)
		})

		r.Route("/lotes", func(r chi.Router) {
			r.Use(middleware.RequirePermission(func(p models.AdminPermissions) bool { return p.CanManageLotes }))

			r.Post("/", loteHandler.Create)
			r.Get("/{id}", loteHandler.Get)
			r.Put("/{id}", loteHandler.Update)
			r.Put("/{id}/activate", loteHandler.Activate)
		})

		r.Route("/sorteios", func(r chi.Router) {
			r.Get("/", sorteioHandler.List)
			r.Post("/", sorteioHandler.Save)
			r.Get("/inscricoes-confirmadas", sorteioHandler.ListEligible)
			r.Get("/{id}", sorteioHandler.Get)
			r.Delete("/{id}", sorteioHandler.Cancel)

			r.Route("/sessao", func(r chi.Router) {
				r.Post("/", sorteioHandler.StartSession)
				r.Get("/{token}", sorteioHandler.GetSession)
				r.Post("/{token}/draw", sorteioHandler.Draw)
				r.Post("/{token}/preview", sorteioHandler.Preview)
				r.Post("/{token}/reset", sorteioHandler.ResetSession)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(func(p models.AdminPermissions) bool { return p.CanExportData }))
			r.Get("/export/inscricoes", exportHandler.InscricoesCSV)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequirePermission(func(p models.AdminPermissions) bool { return p.CanManageUsers }))

			r.Get("/", authHandler.ListAdmins)
			r.Post("/", authHandler.CreateAdmin)
		})
	})
}
