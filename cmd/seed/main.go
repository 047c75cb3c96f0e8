package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/estate-marketplace/config"
	"github.com/oksasatya/estate-marketplace/internal/application"
	"github.com/oksasatya/estate-marketplace/internal/domain"
	"github.com/oksasatya/estate-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/estate-marketplace/internal/domain/repository"
	pginfra "github.com/oksasatya/estate-marketplace/internal/infrastructure/postgres"
	"github.com/oksasatya/estate-marketplace/internal/infrastructure/search"
	"github.com/oksasatya/estate-marketplace/pkg/helpers"
)

var sampleListings = []application.ListingInput{
	{
		Category:     "property",
		Title:        "Palm Grove Residences",
		Description:  "3 BHK apartments with a rooftop pool and covered parking.",
		Location:     "Kakkanad, Kochi",
		Price:        8500000,
		ContactName:  "Sales Desk",
		ContactPhone: "+91 484 400 1000",
		ContactEmail: "sales@palmgrove.example",
	},
	{
		Category:     "rental",
		Title:        "Lakeside 2 BHK",
		Description:  "Furnished flat, 11 month lease, walking distance to the metro.",
		Location:     "Vyttila, Kochi",
		Price:        28000,
		ContactName:  "Anil Kumar",
		ContactPhone: "+91 98460 11223",
	},
	{
		Category:     "hostel",
		Title:        "Campus Stay for Women",
		Description:  "Twin sharing rooms with meals and laundry.",
		Location:     "Kalamassery",
		Price:        7500,
		ContactName:  "Warden",
		ContactPhone: "+91 98950 44556",
	},
}

// seed creates the admin account and the sample listings. It is safe to run
// more than once: an existing admin is reused and listings are only added to
// empty categories.
func seed(ctx context.Context, users repo.UserRepository, listings repo.ListingRepository, index application.ListingIndex, adminEmail, password string, iterations int, log *logrus.Logger) error {
	reg := application.NewRegistry(users, adminEmail, iterations)
	admin, err := reg.CreateUser(ctx, application.NewUserInput{Name: "Administrator", Email: adminEmail, Password: password})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		admin, err = reg.GetUserByEmail(ctx, adminEmail)
	}
	if err != nil {
		return err
	}
	if admin.Role != entity.RoleAdmin {
		if err := users.UpdateRole(ctx, admin.ID, entity.RoleAdmin); err != nil {
			return err
		}
		admin.Role = entity.RoleAdmin
	}
	log.WithField("email", admin.Email).Info("admin account ready")

	svc := application.NewListingService(listings, users, application.NewEngine(nil), nil, index, nil, log)
	for _, in := range sampleListings {
		existing, err := svc.ByCategory(ctx, in.Category)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		l, err := svc.Create(ctx, admin, in)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"id": l.ID, "title": l.Title}).Info("seeded listing")
	}
	return nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
		AppName:         cfg.AppName + "-seed",
	})
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	var index application.ListingIndex
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		if es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass, nil); err == nil {
			index = search.NewListingIndex(es, cfg.ESListingsIndex)
		}
	}

	err = seed(ctx, pginfra.NewUserRepository(pool), pginfra.NewListingRepository(pool), index,
		cfg.AdminEmail, password, cfg.PasswordKDFIterations, log)
	if err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	log.Info("seed complete")
}
