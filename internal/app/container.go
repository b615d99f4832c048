package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/config"
	httpx "github.com/kcczz8xx/JumpRope-App-sub000/internal/http"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/handlers"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/http/middleware"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/auth"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/database"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/idgen"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/logging"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/notifications"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/ratelimit"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/repositories"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService

	// Repositories
	UserRepo       domain.UserRepository
	OTPRepo        domain.OTPRepository
	ResetTokenRepo domain.ResetTokenRepository
	ContactFlows   domain.ContactFlowRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        *auth.JWTServiceImpl
	NotificationSvc domain.NotificationService
	MemberGen       domain.MemberNumberGenerator
	Limiter         domain.RateLimiter
	OTPSvc          domain.OTPService
	IdentitySvc     domain.IdentityService

	Router *gin.Engine
}

// openDatabase and dialRedis are replaced in tests
var (
	openDatabase = database.Open
	dialRedis    = database.NewRedis
)

// NewContainer connects to Postgres and Redis and wires everything on top.
// On failure every connection opened so far is closed.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	db, err := openDatabase(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		closeDB(db, logger)
		return nil, err
	}

	rdb, err := dialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		closeDB(db, logger)
		return nil, err
	}

	container, err := Build(cfg, db, rdb, logger)
	if err != nil {
		rdb.Close()
		closeDB(db, logger)
		return nil, err
	}
	return container, nil
}

func closeDB(db *gorm.DB, logger *zap.Logger) {
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Warn("failed to close database", zap.Error(err))
	}
}

// Build wires the container over already opened stores. db must be migrated.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) (*Container, error) {
	c := &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		RedisClient: rdb,
	}

	c.initRepositories()
	if err := c.initServices(); err != nil {
		return nil, err
	}
	if err := c.initHTTP(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.OTPRepo = repositories.NewOTPRepository(c.DB)
	c.ResetTokenRepo = repositories.NewResetTokenRepository(c.DB)
	// an abandoned flow cannot outlive the codes it is waiting for
	c.ContactFlows = repositories.NewContactFlowRepository(c.RedisClient, c.Config.RegistrationWindow)
}

func (c *Container) initServices() error {
	var err error
	c.PasswordSvc, err = auth.NewPasswordService(c.Config.PasswordAlgorithm)
	if err != nil {
		return err
	}
	c.TokenSvc = auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTIssuer)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Logger,
	)
	c.MemberGen, err = idgen.NewSnowflakeGenerator(c.Config.SnowflakeNode)
	if err != nil {
		return err
	}
	c.Limiter = ratelimit.NewRedisLimiter(c.RedisClient, "rl")

	otpSvc := services.NewOTPService(c.OTPRepo, c.UserRepo, c.NotificationSvc, services.OTPConfig{
		TTL:         c.Config.OTP_TTL,
		MaxAttempts: c.Config.OTP_MaxAttempts,
	}, c.Logger)
	c.OTPSvc = otpSvc

	resetSvc := services.NewResetTokenService(c.ResetTokenRepo, c.OTPRepo, c.PasswordSvc, services.ResetTokenConfig{
		TTL: c.Config.ResetTokenTTL,
	}, c.Logger)
	registrationSvc := services.NewRegistrationService(c.UserRepo, c.OTPRepo, c.PasswordSvc, c.MemberGen, services.RegistrationConfig{
		FreshnessWindow: c.Config.RegistrationWindow,
	}, c.Logger)
	contactSvc := services.NewContactChangeService(c.UserRepo, c.OTPRepo, otpSvc, services.ContactChangeConfig{
		FreshnessWindow: c.Config.RegistrationWindow,
	}, c.Logger)

	c.IdentitySvc = services.NewIdentityService(services.IdentityDeps{
		Limiter:      c.Limiter,
		OTP:          otpSvc,
		ResetTokens:  resetSvc,
		Registration: registrationSvc,
		Contact:      contactSvc,
		ContactFlows: c.ContactFlows,
		Users:        c.UserRepo,
		Passwords:    c.PasswordSvc,
		Normalizer:   services.NewContactNormalizer(c.Config.DefaultRegion),
		Audit:        logging.NewAuditLogger(c.Logger),
	}, services.IdentityConfig{
		RateLimits:        RateLimitPolicies(c.Config.RateLimits),
		PasswordMinLength: c.Config.PasswordMinLength,
	}, c.Logger)

	return nil
}

func (c *Container) initHTTP() error {
	cas, err := auth.NewCasbinService(c.DB, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}
	if err := cas.SeedDefaults(); err != nil {
		return err
	}
	c.Casbin = cas

	c.Router = httpx.BuildRouter(
		handlers.NewAuthHandlers(c.IdentitySvc, c.Logger),
		handlers.NewAccountHandlers(c.IdentitySvc, c.Logger),
		middleware.NewAuthMW(c.TokenSvc, c.Logger),
		middleware.NewCasbinMW(cas, c.Logger),
		middleware.NewIPThrottle(c.Config.RequestsPerMinute),
		c.Logger,
	)
	return nil
}

// RateLimitPolicies converts configured budgets into limiter policies
func RateLimitPolicies(limits map[string]config.RateLimit) map[string]domain.RateLimitPolicy {
	policies := make(map[string]domain.RateLimitPolicy, len(limits))
	for action, rl := range limits {
		policies[action] = domain.RateLimitPolicy{Window: rl.Window, MaxAttempts: rl.Max}
	}
	return policies
}

// Close closes all connections
func (c *Container) Close() error {
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
