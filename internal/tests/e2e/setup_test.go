package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kcczz8xx/JumpRope-App-sub000/domain"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/app"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/config"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/database"
	"github.com/kcczz8xx/JumpRope-App-sub000/internal/infrastructure/repositories"
)

const (
	testPassword = "Secret123!"
	clientAddr   = "198.51.100.20:40000"
)

// testApp is the fully wired service over SQLite and miniredis
type testApp struct {
	t         *testing.T
	container *app.Container
	router    *gin.Engine
	db        *gorm.DB
	redis     *miniredis.Miniredis
}

func testConfigFile() *config.ConfigFile {
	return &config.ConfigFile{
		App:      config.AppConfig{GinMode: gin.TestMode, LogLevel: "debug"},
		JWT:      config.JWTConfig{Secret: "e2e-secret", Issuer: "jumprope"},
		OTP:      config.OTPConfig{TTL: "5m", MaxAttempts: 5, RegistrationWindow: "30m", DefaultRegion: "HK"},
		Reset:    config.ResetConfig{TokenTTL: "15m"},
		Password: config.PasswordConfig{Algorithm: "bcrypt", MinLength: 8},
		RateLimits: map[string]config.RateLimitConfig{
			domain.ActionOTPSend: {Window: "1h", Max: 20},
		},
		Casbin:    config.CasbinConfig{ModelPath: "../../../config/rbac_model.conf"},
		Snowflake: config.SnowflakeConfig{Node: 1},
	}
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWith(t, testConfigFile())
}

func newTestAppWith(t *testing.T, file *config.ConfigFile) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.FromFile(file)
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	// every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	container, err := app.Build(cfg, db, rdb, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	return &testApp{
		t:         t,
		container: container,
		router:    container.Router,
		db:        db,
		redis:     mr,
	}
}

// do sends a JSON request and decodes the response envelope
func (a *testApp) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = clientAddr
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	}
	return w, envelope
}

// pendingCode reads the live code for target straight from the store
func (a *testApp) pendingCode(target string, purpose domain.OTPPurpose) string {
	a.t.Helper()

	var record repositories.DBOTPRecord
	require.NoError(a.t, a.db.
		Where("target = ? AND purpose = ? AND verified = ?", target, string(purpose), false).
		Order("id DESC").
		First(&record).Error)
	return record.Code
}

func (a *testApp) user(phone string) *domain.User {
	a.t.Helper()

	user, err := a.container.UserRepo.FindByPhone(context.Background(), phone)
	require.NoError(a.t, err)
	return user
}

func (a *testApp) accessToken(userID uint, role string) string {
	a.t.Helper()

	token, err := a.container.TokenSvc.GenerateAccessToken(userID, role, time.Minute)
	require.NoError(a.t, err)
	return token
}

// register runs send, verify and register for phone and returns the new user
func (a *testApp) register(phone, email string) *domain.User {
	a.t.Helper()

	w, _ := a.do(http.MethodPost, "/auth/otp/send", "", map[string]string{
		"phone": phone, "email": email, "purpose": "register",
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	w, _ = a.do(http.MethodPost, "/auth/otp/verify", "", map[string]string{
		"phone": phone, "code": a.pendingCode(phone, domain.PurposeRegister), "purpose": "register",
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	w, _ = a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"phone": phone, "email": email, "password": testPassword,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	return a.user(phone)
}

func errorCode(envelope map[string]interface{}) string {
	e, _ := envelope["error"].(map[string]interface{})
	code, _ := e["code"].(string)
	return code
}

func data(envelope map[string]interface{}) map[string]interface{} {
	d, _ := envelope["data"].(map[string]interface{})
	return d
}
