package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jwliao/babymall-backend/internal/app/repository"
	"github.com/jwliao/babymall-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Products"

// ExportService renders the product catalog as an XLSX workbook.
type ExportService interface {
	ExportCatalog() ([]byte, error)
}

type exportService struct {
	productRepo repository.ProductRepository
}

func NewExportService(productRepo repository.ProductRepository) ExportService {
	return &exportService{productRepo: productRepo}
}

func (s *exportService) ExportCatalog() ([]byte, error) {
	products, _, err := s.productRepo.FindWithFilter(repository.ProductFilter{})
	if err != nil {
		logger.Error("Failed to load products for export", err, nil)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), exportSheetName)

	headers := []string{"ID", "Name", "Price", "Category", "Sub Category", "Third Category", "Sizes", "Bestseller", "Attributes"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for rowIdx, product := range products {
		attributes := make([]string, 0, len(product.Attributes))
		for _, pa := range product.Attributes {
			name := pa.Attribute.Name
			if name == "" {
				name = fmt.Sprintf("#%d", pa.AttributeID)
			}
			attributes = append(attributes, fmt.Sprintf("%s=%s", name, pa.Value))
		}

		values := []interface{}{
			product.ID,
			product.Name,
			product.Price,
			product.Category,
			product.SubCategory,
			product.ThirdCategory,
			strings.Join(product.Sizes, ", "),
			product.Bestseller,
			strings.Join(attributes, "; "),
		}

		for colIdx, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write export workbook", err, nil)
		return nil, err
	}

	logger.Info("Catalog exported", map[string]interface{}{
		"products": len(products),
	})
	return buf.Bytes(), nil
}
