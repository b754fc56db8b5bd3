package provider

import (
	"github.com/smartskincare/api/internal/authz"
	"github.com/smartskincare/api/internal/cache"
	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"
	"github.com/smartskincare/api/internal/queue"
	"github.com/smartskincare/api/internal/repository"
	"github.com/smartskincare/api/internal/service"
)

// Container wires repositories and services for the HTTP and worker
// processes. Construction order matters: repositories first, then
// services, since services hold repository interfaces.
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	ProductRepo      repository.ProductRepository
	CartRepo         repository.CartRepository
	OrderRepo        repository.OrderRepository
	AppointmentRepo  repository.AppointmentRepository
	AvailabilityRepo repository.AvailabilityRepository
	DashboardRepo    repository.DashboardRepository

	// Services
	AuthzService       *authz.Service
	AuthService        *service.AuthService
	UserAuthService    *service.UserAuthService
	EmailService       *service.EmailService
	ProductService     *service.ProductService
	CartService        *service.CartService
	CheckoutService    *service.CheckoutService
	OrderService       *service.OrderService
	AppointmentService *service.AppointmentService
	UserAdminService   *service.UserAdminService
	DashboardService   *service.DashboardService
	RecommendService   *service.RecommendService
}

// NewContainer builds the dependency container.
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}
	if queueClient == nil {
		// A disabled client keeps enqueue call sites branch-free.
		qc, err := queue.NewClient(nil)
		if err != nil {
			logger.Errorw("provider_init_noop_queue_client_failed", "error", err)
		}
		queueClient = qc
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.AppointmentRepo = repository.NewAppointmentRepository(db)
	c.AvailabilityRepo = repository.NewAvailabilityRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.QueueClient)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.Config, c.CartRepo, c.ProductRepo)
	c.CheckoutService = service.NewCheckoutService(c.Config, c.CartRepo, c.ProductRepo, c.OrderRepo, c.UserRepo, c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo)
	c.AppointmentService = service.NewAppointmentService(c.Config, c.AppointmentRepo, c.AvailabilityRepo, c.UserRepo, c.QueueClient)
	c.UserAdminService = service.NewUserAdminService(c.UserRepo)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo, c.OrderRepo)
	c.RecommendService = service.NewRecommendService(&c.Config.Recommender, c.ProductRepo)
}
