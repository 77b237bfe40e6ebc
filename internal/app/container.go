package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/291e/bogofit-verify/domain"
	"github.com/291e/bogofit-verify/internal/config"
	"github.com/291e/bogofit-verify/internal/infrastructure/auth"
	"github.com/291e/bogofit-verify/internal/infrastructure/database"
	"github.com/291e/bogofit-verify/internal/infrastructure/notifications"
	"github.com/291e/bogofit-verify/internal/infrastructure/repositories"
	"github.com/291e/bogofit-verify/internal/infrastructure/store"
	"github.com/291e/bogofit-verify/internal/services"
)

// Container holds all dependencies
type Container struct {
	// Config
	Config *config.Config

	// Infrastructure
	DB          *gorm.DB
	RedisClient *database.RedisClient
	memStore    *store.MemoryStore

	// Repositories
	AccountRepo domain.AccountRepository

	// Services
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	CodeGen         domain.CodeGenerator
	Store           domain.ChallengeStore
	VerificationSvc domain.VerificationService
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	if err := container.initStore(); err != nil {
		return nil, err
	}
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	c.DB = db
	c.AccountRepo = repositories.NewAccountRepository(db)
	return nil
}

func (c *Container) initStore() error {
	storeCfg := store.Config{
		TTL:           c.Config.CodeTTL,
		MaxAttempts:   c.Config.MaxAttempts,
		SweepInterval: c.Config.SweepInterval,
		DebugCodes:    c.Config.DebugCodes,
	}

	switch c.Config.StoreBackend {
	case "redis":
		c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
		c.Store = store.NewRedisStore(c.RedisClient.Client, storeCfg)
	case "memory":
		c.memStore = store.NewMemoryStore(storeCfg)
		c.memStore.StartSweeper()
		c.Store = c.memStore
	default:
		return fmt.Errorf("unknown verification backend %q", c.Config.StoreBackend)
	}
	return nil
}

func (c *Container) initServices() {
	c.TokenSvc = auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTIssuer, c.Config.AccessTTL)
	c.NotificationSvc = notifications.NewNotifier(
		notifications.TwilioParams{
			AccountSID: c.Config.TwilioSID,
			AuthToken:  c.Config.TwilioToken,
			FromNumber: c.Config.TwilioFrom,
		},
		notifications.SMTPParams{
			Host:     c.Config.SMTPHost,
			Port:     c.Config.SMTPPort,
			Username: c.Config.SMTPUsername,
			Password: c.Config.SMTPPassword,
			From:     c.Config.SMTPFrom,
		},
	)
	c.CodeGen = services.NewCodeGenerator(c.Config.CodeLength)
	c.VerificationSvc = services.NewVerificationService(c.CodeGen, c.Store)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.memStore != nil {
		c.memStore.Stop()
	}

	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
