//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pawnest/service-marketplace/internal/application"
	"github.com/pawnest/service-marketplace/internal/auth"
	bookingDomain "github.com/pawnest/service-marketplace/internal/domain/booking"
	"github.com/pawnest/service-marketplace/internal/repository"
	"github.com/pawnest/service-marketplace/internal/storage"
)

// marketplaceStack holds the wired-up services backed by a real PostgreSQL.
type marketplaceStack struct {
	DB       *gorm.DB
	Auth     *application.AuthService
	Pets     *application.PetService
	Listings *application.ListingService
	Bookings *application.BookingService
	Cleanup  func()
}

// setupPostgres starts a PostgreSQL testcontainer, migrates the schema and
// installs the booking slot exclusion constraint.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("test_marketplace"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.UserModel{},
		&repository.PetModel{},
		&repository.ListingModel{},
		&repository.BookingModel{},
	))

	require.NoError(t, db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error)
	require.NoError(t, db.Exec(`
		ALTER TABLE bookings
		ADD CONSTRAINT bookings_sitter_slot_excl
		EXCLUDE USING gist (
			sitter_id WITH =,
			tstzrange(start_date, end_date, '[]') WITH &&
		)
		WHERE (status IN ('pending', 'confirmed', 'in_progress'))
	`).Error)

	cleanup := func() { _ = pgContainer.Terminate(ctx) }
	return db, cleanup
}

// setupStack wires repositories and services against the test database.
func setupStack(t *testing.T) *marketplaceStack {
	t.Helper()

	db, cleanup := setupPostgres(t)
	log := zap.NewNop()

	blobs, err := storage.NewLocalStore(t.TempDir(), "", log)
	require.NoError(t, err)

	userRepo := repository.NewGormUserRepository(db)
	petRepo := repository.NewGormPetRepository(db)
	listingRepo := repository.NewGormListingRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)

	tokens := auth.NewJWTManager("integration-test-secret", time.Hour)
	pricing := bookingDomain.NewStandardPricingStrategy()

	return &marketplaceStack{
		DB:       db,
		Auth:     application.NewAuthService(userRepo, tokens, log),
		Pets:     application.NewPetService(petRepo, blobs, log),
		Listings: application.NewListingService(listingRepo, blobs, log),
		Bookings: application.NewBookingService(bookingRepo, listingRepo, petRepo, pricing, log),
		Cleanup:  cleanup,
	}
}

// registerUser creates an account and returns its DTO.
func registerUser(t *testing.T, stack *marketplaceStack, name, email, role string) application.UserDTO {
	t.Helper()
	res, err := stack.Auth.Register(context.Background(), application.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "integration-pass",
		Role:     role,
	})
	require.NoError(t, err)
	return res.User
}
