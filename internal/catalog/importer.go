// Package catalog reads product catalogs from XLSX workbooks.
//
// The first sheet holds one row per variant. Rows sharing a slug form one product;
// product columns are taken from the first row of the group. A row without a
// variant title describes the product alone. An empty in_stock cell means in
// stock. Collections are a comma separated list of names, matched by slug.
//
//	slug | title | description | price | compare_at_price | in_stock | images | featured | collections
//	variant_title | variant_price | variant_compare_at_price | variant_in_stock | variant_image
package catalog

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

const (
	colSlug         = "slug"
	colTitle        = "title"
	colDescription  = "description"
	colPrice        = "price"
	colCompareAt    = "compare_at_price"
	colInStock      = "in_stock"
	colImages       = "images"
	colFeatured     = "featured"
	colCollections  = "collections"
	colVariantTitle = "variant_title"
	colVariantPrice = "variant_price"
	colVariantImage = "variant_image"

	colVariantCompareAt = "variant_compare_at_price"
	colVariantInStock   = "variant_in_stock"
)

var (
	slugInvalid = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Result is the outcome of reading a workbook
type Result struct {
	Products []model.Product
	Rows     int
	Skipped  int
}

// Read parses the workbook in r
func Read(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	columns := headerIndex(rows[0])
	if _, ok := columns[colTitle]; !ok {
		return nil, fmt.Errorf("missing required column %q", colTitle)
	}

	result := &Result{Rows: len(rows) - 1}
	bySlug := make(map[string]int)

	for i, row := range rows[1:] {
		get := func(col string) string {
			idx, ok := columns[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		title := get(colTitle)
		slug := get(colSlug)
		if slug == "" {
			slug = GenerateSlug(title)
		} else {
			slug = GenerateSlug(slug)
		}
		if slug == "" {
			result.Skipped++
			continue
		}

		idx, seen := bySlug[slug]
		if !seen {
			if title == "" {
				result.Skipped++
				continue
			}
			price, err := parsePrice(get(colPrice))
			var compareAt *float64
			if err == nil {
				compareAt, err = parsePrice(get(colCompareAt))
			}
			if err != nil {
				logger.Warn("Skipping catalog row with invalid price", map[string]interface{}{
					"row":  i + 2,
					"slug": slug,
				})
				result.Skipped++
				continue
			}
			result.Products = append(result.Products, model.Product{
				Slug:           slug,
				Title:          title,
				Description:    get(colDescription),
				Price:          price,
				CompareAtPrice: compareAt,
				InStock:        parseStock(get(colInStock)),
				Images:         splitList(get(colImages)),
				Featured:       parseBool(get(colFeatured)),
				Collections:    parseCollections(get(colCollections)),
			})
			idx = len(result.Products) - 1
			bySlug[slug] = idx
		}

		variantTitle := get(colVariantTitle)
		if variantTitle == "" {
			continue
		}
		variantPrice, err := parsePrice(get(colVariantPrice))
		var variantCompareAt *float64
		if err == nil {
			variantCompareAt, err = parsePrice(get(colVariantCompareAt))
		}
		if err != nil {
			logger.Warn("Skipping catalog variant with invalid price", map[string]interface{}{
				"row":  i + 2,
				"slug": slug,
			})
			result.Skipped++
			continue
		}
		product := &result.Products[idx]
		product.Variants = append(product.Variants, model.Variant{
			Title:          variantTitle,
			Price:          variantPrice,
			CompareAtPrice: variantCompareAt,
			InStock:        parseStock(get(colVariantInStock)),
			Image:          get(colVariantImage),
		})
	}

	logger.Info("Catalog workbook read", map[string]interface{}{
		"sheet":    sheetName,
		"rows":     result.Rows,
		"products": len(result.Products),
		"skipped":  result.Skipped,
	})
	return result, nil
}

// GenerateSlug lowercases s and keeps letters, digits and single dashes
func GenerateSlug(s string) string {
	slug := slugInvalid.ReplaceAllString(strings.TrimSpace(s), "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.ToLower(strings.Trim(slug, "-"))
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, dup := columns[name]; !dup && name != "" {
			columns[name] = i
		}
	}
	return columns
}

// parsePrice returns nil for an empty cell
func parsePrice(s string) (*float64, error) {
	s = strings.TrimPrefix(strings.ReplaceAll(s, ",", ""), "$")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if v < 0 {
		return nil, fmt.Errorf("negative price %v", v)
	}
	return &v, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}

// parseStock returns nil for an empty cell so the row keeps the default
func parseStock(s string) *bool {
	if s == "" {
		return nil
	}
	return model.BoolOf(parseBool(s))
}

func parseCollections(s string) []model.Collection {
	var out []model.Collection
	seen := make(map[string]bool)
	for _, name := range splitList(s) {
		slug := GenerateSlug(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		out = append(out, model.Collection{Slug: slug, Name: name})
	}
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
