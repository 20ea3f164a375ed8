package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	appidentity "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/identity"
	applending "github.com/thamonwanpho67-art/PMJinventory-sub001/internal/application/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/identity"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/domain/lending"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/auth"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/config"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/infrastructure/persistence/models"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/dto"
	"github.com/thamonwanpho67-art/PMJinventory-sub001/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const testPassword = "s3cret-pass"

func init() {
	gin.SetMode(gin.TestMode)
}

// apiFixture wires the real services over an in-memory SQLite database
type apiFixture struct {
	t          *testing.T
	router     *gin.Engine
	database   *persistence.Database
	userRepo   *persistence.GormUserRepository
	assetRepo  *persistence.GormAssetRepository
	jwtService *auth.JWTService
	admin      *identity.User
	user       *identity.User
	adminToken string
	userToken  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.DB.AutoMigrate(models.AllModels()...))

	db := database.DB
	log := zap.NewNop()
	userRepo := persistence.NewGormUserRepository(db)
	assetRepo := persistence.NewGormAssetRepository(db)
	loanRepo := persistence.NewGormLoanRepository(db)
	txScope := persistence.NewGormTransactionScope(db)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-32-characters!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "asset-lending-test",
	})

	authService := appidentity.NewAuthService(userRepo, jwtService, log)
	userService := appidentity.NewUserService(userRepo, log)
	assetService := applending.NewAssetService(assetRepo, loanRepo, txScope, log)
	loanService := applending.NewLoanService(assetRepo, loanRepo, txScope, lending.NewEngine(), log)
	loanService.SetBorrowerDirectory(appidentity.NewUserDirectory(userRepo))

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	loanHandler := NewLoanHandler(loanService)
	assetHandler := NewAssetHandler(assetService)
	assetHandler.now = func() time.Time { return time.Date(2026, 5, 12, 8, 0, 0, 0, time.UTC) }
	systemHandler := NewSystemHandler("asset-lending", database)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/health", systemHandler.Health)

	api := router.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.RefreshToken)

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(jwtService, nil))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/system/info", systemHandler.GetSystemInfo)
	protected.GET("/users/:id", userHandler.Get)
	protected.POST("/loans", loanHandler.Create)
	protected.GET("/loans", loanHandler.List)
	protected.GET("/loans/:id", loanHandler.Get)
	protected.GET("/assets", assetHandler.List)
	protected.GET("/assets/:id", assetHandler.Get)

	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/users", userHandler.Create)
	admin.PATCH("/loans/:id", loanHandler.Transition)
	admin.POST("/assets", assetHandler.Create)
	admin.PATCH("/assets/:id", assetHandler.Update)
	admin.DELETE("/assets/:id", assetHandler.Delete)
	admin.PUT("/assets/stock", assetHandler.SetStock)
	admin.POST("/assets/stock", assetHandler.AdjustStock)
	admin.GET("/assets/export", assetHandler.Export)

	f := &apiFixture{
		t:          t,
		router:     router,
		database:   database,
		userRepo:   userRepo,
		assetRepo:  assetRepo,
		jwtService: jwtService,
	}
	f.admin = f.seedUser("admin", identity.RoleAdmin)
	f.user = f.seedUser("somchai", identity.RoleUser)
	f.adminToken = f.tokenFor(f.admin)
	f.userToken = f.tokenFor(f.user)
	return f
}

func (f *apiFixture) seedUser(username string, role identity.Role) *identity.User {
	f.t.Helper()
	user, err := identity.NewUser(username, testPassword, role)
	require.NoError(f.t, err)
	require.NoError(f.t, f.userRepo.Save(context.Background(), user))
	return user
}

func (f *apiFixture) tokenFor(user *identity.User) string {
	f.t.Helper()
	pair, err := f.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	})
	require.NoError(f.t, err)
	return pair.AccessToken
}

func (f *apiFixture) seedAsset(code string, quantity int) *lending.Asset {
	f.t.Helper()
	asset, err := lending.NewAsset(lending.AssetInput{
		Code:     code,
		Name:     "Projector " + code,
		Category: "AV",
		Location: "Room 101",
		Quantity: quantity,
	})
	require.NoError(f.t, err)
	require.NoError(f.t, f.assetRepo.Save(context.Background(), asset))
	return asset
}

func (f *apiFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(f.t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals the envelope and, when target is non-nil, its data field
func decode(t *testing.T, w *httptest.ResponseRecorder, target any) dto.Response {
	t.Helper()
	var envelope struct {
		dto.Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	if target != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, target), w.Body.String())
	}
	return envelope.Response
}

func today() string {
	return time.Now().Format(time.DateOnly)
}
