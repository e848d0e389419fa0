package service

import (
	"errors"
	"strings"

	"github.com/jwliao/babymall-backend/internal/app/model"
	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"gorm.io/gorm"
)

type CreateAttributeInput struct {
	Name        string
	Label       string
	Description string
	Color       string
}

// AttributeSelection names the categories a product is being filed under, by
// level. Any level may be nil.
type AttributeSelection struct {
	MainID  *uint
	SubID   *uint
	ThirdID *uint
}

type AttributeService interface {
	CreateAttribute(input CreateAttributeInput) (*model.Attribute, error)
	ListAttributes() ([]model.Attribute, error)
	AttributesForSelection(selection AttributeSelection) ([]model.Attribute, error)
}

type attributeService struct {
	attributeRepo repository.AttributeRepository
	categoryRepo  repository.CategoryRepository
}

func NewAttributeService(attributeRepo repository.AttributeRepository, categoryRepo repository.CategoryRepository) AttributeService {
	return &attributeService{
		attributeRepo: attributeRepo,
		categoryRepo:  categoryRepo,
	}
}

func (s *attributeService) CreateAttribute(input CreateAttributeInput) (*model.Attribute, error) {
	name := strings.TrimSpace(input.Name)
	label := strings.TrimSpace(input.Label)
	if name == "" || label == "" {
		return nil, ErrAttributeFieldsMissing
	}

	if _, err := s.attributeRepo.FindByName(name); err == nil {
		return nil, ErrAttributeNameConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	attribute := &model.Attribute{
		Name:        name,
		Label:       label,
		Description: input.Description,
		Color:       input.Color,
		IsActive:    true,
	}
	if err := s.attributeRepo.Create(attribute); err != nil {
		return nil, err
	}

	logger.Info("Attribute created", map[string]interface{}{
		"attribute_id": attribute.ID,
		"name":         attribute.Name,
	})
	return attribute, nil
}

func (s *attributeService) ListAttributes() ([]model.Attribute, error) {
	return s.attributeRepo.FindAll(true)
}

// AttributesForSelection resolves which attributes a product filed under the
// selected categories may carry: the union of the main, sub and third
// categories' attributes in that order, deduplicated by attribute id keeping
// the first occurrence. An empty selection yields an empty list (the UI asks
// for a category first); a selection whose categories have no attributes also
// yields an empty list (the UI reports none defined). Those are different
// states for the caller, neither is an error.
func (s *attributeService) AttributesForSelection(selection AttributeSelection) ([]model.Attribute, error) {
	result := []model.Attribute{}
	seen := make(map[uint]bool)

	for _, id := range []*uint{selection.MainID, selection.SubID, selection.ThirdID} {
		if id == nil {
			continue
		}

		if _, err := s.categoryRepo.FindByID(*id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}

		attributes, err := s.categoryRepo.Attributes(*id)
		if err != nil {
			return nil, err
		}
		for _, attr := range attributes {
			if seen[attr.ID] {
				continue
			}
			seen[attr.ID] = true
			result = append(result, attr)
		}
	}

	return result, nil
}
