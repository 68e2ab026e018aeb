package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aidar/project-tracker/internal/config"
	"github.com/aidar/project-tracker/internal/handler"
	"github.com/aidar/project-tracker/internal/middleware"
	"github.com/aidar/project-tracker/internal/repository"
	"github.com/aidar/project-tracker/internal/service"
)

// Services объединяет сервисы, которые нужны HTTP слою
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Projects *service.ProjectService
}

// NewServices собирает сервисы поверх репозиториев
func NewServices(userRepo repository.UserRepository, projectRepo repository.ProjectRepository, cfg *config.Config) Services {
	userService := service.NewUserService(userRepo)
	tokens := service.NewTokenManager(cfg.JWT.Secret, cfg.JWT.GetExpiration())
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	return Services{
		Auth:     service.NewAuthService(userService, hasher, tokens),
		Users:    userService,
		Projects: service.NewProjectService(projectRepo, userRepo),
	}
}

// NewRouter настраивает маршруты и middleware
func NewRouter(s Services) http.Handler {
	// Инициализируем HTTP обработчики
	authHandler := handler.NewAuthHandler(s.Auth)
	userHandler := handler.NewUserHandler(s.Users)
	projectHandler := handler.NewProjectHandler(s.Projects)

	// Middleware для JWT авторизации
	authMiddleware := middleware.AuthMiddleware(s.Auth)

	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		handler.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Публичные эндпоинты (без авторизации)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/register", authHandler.Register)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", projectHandler.ListProjects)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Post("/", projectHandler.CreateProject)
			r.Get("/user", projectHandler.ListUserProjects)
			r.Put("/{id}", projectHandler.UpdateProject)
			r.Delete("/{id}", projectHandler.DeleteProject)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.ListUsers)
		r.Get("/{id}", userHandler.GetUser)
		r.With(authMiddleware).Delete("/{id}", userHandler.DeleteUser)
	})

	return r
}
