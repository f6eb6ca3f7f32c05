package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"ecofinds-api/internal/domain"
	"github.com/google/uuid"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products.
//
// Expected columns: id, seller_id, title, description, category, condition,
// price, co2_saved, is_active, images. Prices are in currency units. Images
// are separated by ';'. A row with no title continues the previous product
// and only contributes images.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	line      int
	ID        string
	SellerID  string
	Title     string
	Desc      string
	Category  string
	Condition string
	Price     string
	CO2Saved  string
	IsActive  string
	ImageURLs []string
}

// Run parses CSV rows and upserts one product per titled row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"seller_id", "title", "price"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing column %q", required)
		}
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.Title != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p, err := row.product()
	if err != nil {
		return fmt.Errorf("line %d: %w", row.line, err)
	}
	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Title, err)
	}
	return nil
}

func (r *csvRow) product() (domain.Product, error) {
	if r.SellerID == "" || r.Price == "" {
		return domain.Product{}, fmt.Errorf("invalid product row (missing required fields) for %q", r.Title)
	}
	if r.ID != "" {
		if _, err := uuid.Parse(r.ID); err != nil {
			return domain.Product{}, fmt.Errorf("invalid id for %q: %s", r.Title, r.ID)
		}
	}

	price, err := strconv.ParseFloat(r.Price, 64)
	if err != nil || price < 0 {
		return domain.Product{}, fmt.Errorf("invalid price for %q: %s", r.Title, r.Price)
	}
	var co2 float64
	if r.CO2Saved != "" {
		co2, err = strconv.ParseFloat(r.CO2Saved, 64)
		if err != nil || co2 < 0 {
			return domain.Product{}, fmt.Errorf("invalid co2_saved for %q: %s", r.Title, r.CO2Saved)
		}
	}
	active := true
	if r.IsActive != "" {
		active, err = strconv.ParseBool(r.IsActive)
		if err != nil {
			return domain.Product{}, fmt.Errorf("invalid is_active for %q: %s", r.Title, r.IsActive)
		}
	}

	return domain.Product{
		ID:          r.ID,
		SellerID:    r.SellerID,
		Title:       r.Title,
		Description: r.Desc,
		Category:    r.Category,
		Condition:   r.Condition,
		PriceCents:  int64(math.Round(price * 100)),
		CO2Saved:    co2,
		Images:      r.ImageURLs,
		IsActive:    active,
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:        pick(record, index, "id"),
		SellerID:  pick(record, index, "seller_id"),
		Title:     pick(record, index, "title"),
		Desc:      pick(record, index, "description"),
		Category:  pick(record, index, "category"),
		Condition: pick(record, index, "condition"),
		Price:     pick(record, index, "price"),
		CO2Saved:  pick(record, index, "co2_saved"),
		IsActive:  pick(record, index, "is_active"),
	}
	for _, url := range strings.Split(pick(record, index, "images"), ";") {
		if url = strings.TrimSpace(url); url != "" {
			row.ImageURLs = append(row.ImageURLs, url)
		}
	}

	if row.Title == "" && len(row.ImageURLs) == 0 {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
