package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jwliao/babymall-backend/config"
	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/internal/app/service"
	"github.com/jwliao/babymall-backend/internal/db"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"github.com/jwliao/babymall-backend/pkg/util"
	"gorm.io/gorm"
)

// Seeds an admin account and a demo catalog: a three-level category tree,
// attributes on a few categories, and sample products.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		EnableColor: true,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	attributeRepo := repository.NewAttributeRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())

	categoryService := service.NewCategoryService(categoryRepo, attributeRepo, productRepo, db.GetDB())
	productService := service.NewProductService(productRepo, categoryRepo, attributeRepo)

	if err := seedAdmin(userRepo); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	if err := seedCatalog(categoryService, productService); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	fmt.Println("Seed completed successfully!")
}

func seedAdmin(userRepo repository.UserRepository) error {
	email := getenv("SEED_ADMIN_EMAIL", "admin@babymall.local")
	password := getenv("SEED_ADMIN_PASSWORD", "admin1234")

	existing, err := userRepo.FindByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		fmt.Printf("Admin user already exists: %s\n", email)
		return nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}

	fmt.Printf("Admin user created: %s\n", email)
	return nil
}

func seedCatalog(categoryService service.CategoryService, productService service.ProductService) error {
	tree := map[string]map[string][]string{
		"Clothing": {
			"Bodysuits": {"Short Sleeve", "Long Sleeve"},
			"Sleepwear": {},
		},
		"Feeding": {
			"Bottles":     {"Glass", "Silicone"},
			"High Chairs": {},
		},
		"Toys": {},
	}

	created := make(map[string]*model.Category)

	for mainName, subs := range tree {
		main, err := createCategoryIfMissing(categoryService, mainName, nil)
		if err != nil {
			return err
		}
		created[mainName] = main

		for subName, thirds := range subs {
			sub, err := createCategoryIfMissing(categoryService, subName, &main.ID)
			if err != nil {
				return err
			}
			created[mainName+"/"+subName] = sub

			for _, thirdName := range thirds {
				if _, err := createCategoryIfMissing(categoryService, thirdName, &sub.ID); err != nil {
					return err
				}
			}
		}
	}

	if clothing, ok := created["Clothing"]; ok {
		sizeDesc := "Age-based size bands"
		if _, _, err := categoryService.AttachAttribute(clothing.ID, service.CategoryAttributeInput{
			Name:        "size",
			Label:       "Size",
			Description: &sizeDesc,
		}); err != nil && !errors.Is(err, service.ErrAttributeNameConflict) {
			return err
		}
		if _, _, err := categoryService.AttachAttribute(clothing.ID, service.CategoryAttributeInput{
			Name:  "material",
			Label: "Material",
			Color: "#22c55e",
		}); err != nil && !errors.Is(err, service.ErrAttributeNameConflict) {
			return err
		}
	}

	if bottles, ok := created["Feeding/Bottles"]; ok {
		if _, _, err := categoryService.AttachAttribute(bottles.ID, service.CategoryAttributeInput{
			Name:  "capacity",
			Label: "Capacity",
		}); err != nil && !errors.Is(err, service.ErrAttributeNameConflict) {
			return err
		}
	}

	products := []service.ProductInput{
		{
			Name:          "Organic Cotton Bodysuit 3-Pack",
			Description:   "Soft combed cotton, snap closures.",
			Price:         24.90,
			Sizes:         []string{"0-3M", "3-6M", "6-12M"},
			Bestseller:    true,
			CategoryID:    idOf(created, "Clothing"),
			SubCategoryID: idOf(created, "Clothing/Bodysuits"),
		},
		{
			Name:          "Wide-Neck Glass Bottle 240ml",
			Description:   "Borosilicate glass, anti-colic vent.",
			Price:         12.50,
			CategoryID:    idOf(created, "Feeding"),
			SubCategoryID: idOf(created, "Feeding/Bottles"),
		},
		{
			Name:        "Stacking Rings",
			Description: "Classic wooden stacker.",
			Price:       15.00,
			CategoryID:  idOf(created, "Toys"),
		},
	}

	for _, input := range products {
		if _, err := productService.CreateProduct(input); err != nil {
			return err
		}
	}

	fmt.Printf("Seeded %d sample products\n", len(products))
	return nil
}

func createCategoryIfMissing(categoryService service.CategoryService, name string, parentID *uint) (*model.Category, error) {
	category, err := categoryService.CreateCategory(service.CreateCategoryInput{
		Name:     name,
		ParentID: parentID,
	})
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, service.ErrCategoryNameConflict) {
		return nil, err
	}

	// Already seeded; look it up
	listing, err := categoryService.ListCategories()
	if err != nil {
		return nil, err
	}
	for i := range listing.Categories {
		c := &listing.Categories[i]
		if c.Name == name && sameParent(c.ParentID, parentID) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("category %q not found after conflict", name)
}

func sameParent(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func idOf(created map[string]*model.Category, key string) *uint {
	if c, ok := created[key]; ok {
		return &c.ID
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
