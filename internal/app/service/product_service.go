package service

import (
	"errors"
	"strings"

	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNameRequired = errors.New("product name is required")
)

// CategoryRefs is a product's submitted category selection: any subset of the
// three levels.
type CategoryRefs struct {
	CategoryID      *uint
	SubCategoryID   *uint
	ThirdCategoryID *uint
}

// ResolvedCategories is a full category assignment with denormalized names.
// Levels that could not be resolved stay nil/empty; that is a valid outcome.
type ResolvedCategories struct {
	CategoryID      *uint  `json:"category_id"`
	Category        string `json:"category"`
	SubCategoryID   *uint  `json:"sub_category_id"`
	SubCategory     string `json:"sub_category"`
	ThirdCategoryID *uint  `json:"third_category_id"`
	ThirdCategory   string `json:"third_category"`
}

type ProductAttributeInput struct {
	AttributeID uint   `json:"attribute_id"`
	Value       string `json:"value"`
}

type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Images      []string
	Sizes       []string
	Bestseller  bool

	// Legacy flat name strings; used as-is when no id resolves that level.
	Category      string
	SubCategory   string
	ThirdCategory string

	CategoryID      *uint
	SubCategoryID   *uint
	ThirdCategoryID *uint

	// Attributes is nil when the caller did not touch attribute values; an
	// empty non-nil slice clears them.
	Attributes []ProductAttributeInput
}

type Pagination struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int64  `json:"total"`
	TotalPages int    `json:"total_pages"`
	Mode       string `json:"mode"`
}

type ProductListOptions struct {
	Page   int
	Limit  int
	Search string
	All    bool
}

type ProductService interface {
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	ListProducts(opts ProductListOptions) ([]model.Product, *Pagination, error)
	GetProductByID(id uint) (*model.Product, error)
	DeleteProduct(id uint) error
	ResolveCategories(refs CategoryRefs) (*ResolvedCategories, error)
}

type productService struct {
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	attributeRepo repository.AttributeRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	attributeRepo repository.AttributeRepository,
) ProductService {
	return &productService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		attributeRepo: attributeRepo,
	}
}

// ResolveCategories validates a partial category selection and backfills the
// missing levels from the parent chain, most specific level first. Explicitly
// supplied ids are trusted as-is and never overridden by inference: only a
// level the caller left unset is filled from the parent of the level below it.
// A caller can therefore produce an inconsistent chain on purpose (explicit
// third + contradictory explicit main) and that is not an error. Every
// referenced id must exist; resolution fails before anything is written.
func (s *productService) ResolveCategories(refs CategoryRefs) (*ResolvedCategories, error) {
	out := &ResolvedCategories{}

	subID := refs.SubCategoryID
	mainID := refs.CategoryID

	if refs.ThirdCategoryID != nil {
		third, err := s.fetchCategory(*refs.ThirdCategoryID, "third")
		if err != nil {
			return nil, err
		}
		out.ThirdCategoryID = &third.ID
		out.ThirdCategory = third.Name

		if subID == nil && third.ParentID != nil {
			subID = third.ParentID
		}
	}

	if subID != nil {
		sub, err := s.fetchCategory(*subID, "sub")
		if err != nil {
			return nil, err
		}
		out.SubCategoryID = &sub.ID
		out.SubCategory = sub.Name

		if mainID == nil && sub.ParentID != nil {
			mainID = sub.ParentID
		}
	}

	if mainID != nil {
		main, err := s.fetchCategory(*mainID, "main")
		if err != nil {
			return nil, err
		}
		out.CategoryID = &main.ID
		out.Category = main.Name
	}

	return out, nil
}

func (s *productService) fetchCategory(id uint, level string) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product category resolution failed: id does not exist", map[string]interface{}{
				"category_id": id,
				"level":       level,
			})
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProductNameRequired
	}

	resolved, err := s.ResolveCategories(CategoryRefs{
		CategoryID:      input.CategoryID,
		SubCategoryID:   input.SubCategoryID,
		ThirdCategoryID: input.ThirdCategoryID,
	})
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Images:      input.Images,
		Sizes:       input.Sizes,
		Bestseller:  input.Bestseller,
	}
	applyResolvedCategories(product, resolved, input)

	attributes, err := s.mapAttributeValues(input.Attributes)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	if len(attributes) > 0 {
		if err := s.productRepo.ReplaceAttributes(product.ID, attributes); err != nil {
			return nil, err
		}
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
		"category":   product.Category,
	})
	return s.productRepo.FindByID(product.ID)
}

func (s *productService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	product.Description = input.Description
	product.Price = input.Price
	product.Bestseller = input.Bestseller
	if input.Images != nil {
		product.Images = input.Images
	}
	if input.Sizes != nil {
		product.Sizes = input.Sizes
	}

	resolved, err := s.ResolveCategories(CategoryRefs{
		CategoryID:      input.CategoryID,
		SubCategoryID:   input.SubCategoryID,
		ThirdCategoryID: input.ThirdCategoryID,
	})
	if err != nil {
		return nil, err
	}
	applyResolvedCategories(product, resolved, input)

	// Detach the loaded attribute rows before saving; they are replaced
	// explicitly below when the caller sent a new set.
	currentAttributes := product.Attributes
	product.Attributes = nil

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	if input.Attributes != nil {
		attributes, err := s.mapAttributeValues(input.Attributes)
		if err != nil {
			return nil, err
		}
		if err := s.productRepo.ReplaceAttributes(product.ID, attributes); err != nil {
			return nil, err
		}
	} else {
		product.Attributes = currentAttributes
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return s.productRepo.FindByID(product.ID)
}

// applyResolvedCategories writes a resolution result onto a product. Levels
// the resolver filled get id and name from the category record; levels it
// left unset fall back to the caller's flat name strings (legacy products are
// still created from name-only imports).
func applyResolvedCategories(product *model.Product, resolved *ResolvedCategories, input ProductInput) {
	product.Category = input.Category
	product.SubCategory = input.SubCategory
	product.ThirdCategory = input.ThirdCategory

	product.CategoryID = resolved.CategoryID
	product.SubCategoryID = resolved.SubCategoryID
	product.ThirdCategoryID = resolved.ThirdCategoryID

	if resolved.CategoryID != nil {
		product.Category = resolved.Category
	}
	if resolved.SubCategoryID != nil {
		product.SubCategory = resolved.SubCategory
	}
	if resolved.ThirdCategoryID != nil {
		product.ThirdCategory = resolved.ThirdCategory
	}
}

// mapAttributeValues turns submitted (attribute id, value) pairs into rows.
// Entries with a blank value or an unknown attribute id are skipped rather
// than rejected; repeated ids keep the first entry.
func (s *productService) mapAttributeValues(entries []ProductAttributeInput) ([]model.ProductAttribute, error) {
	if len(entries) == 0 {
		return []model.ProductAttribute{}, nil
	}

	rows := make([]model.ProductAttribute, 0, len(entries))
	seen := make(map[uint]bool, len(entries))

	for _, entry := range entries {
		value := strings.TrimSpace(entry.Value)
		if entry.AttributeID == 0 || value == "" || seen[entry.AttributeID] {
			continue
		}

		if _, err := s.attributeRepo.FindByID(entry.AttributeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Skipping unknown attribute on product", map[string]interface{}{
					"attribute_id": entry.AttributeID,
				})
				continue
			}
			return nil, err
		}

		seen[entry.AttributeID] = true
		rows = append(rows, model.ProductAttribute{
			AttributeID: entry.AttributeID,
			Value:       value,
		})
	}

	return rows, nil
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, *Pagination, error) {
	if opts.All {
		products, total, err := s.productRepo.FindWithFilter(repository.ProductFilter{
			Search: strings.TrimSpace(opts.Search),
		})
		if err != nil {
			return nil, nil, err
		}
		return products, &Pagination{
			Page:       1,
			Limit:      len(products),
			Total:      total,
			TotalPages: 1,
			Mode:       "all",
		}, nil
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	products, total, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		Search: strings.TrimSpace(opts.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return products, &Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		Mode:       "paginated",
	}, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) DeleteProduct(id uint) error {
	if _, err := s.productRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.productRepo.Delete(id)
}
