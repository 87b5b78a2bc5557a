// Package seed populates the database with the workshop catalog and,
// for development, demo accounts.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"workshophub/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed catalog.yaml
var builtInCatalog []byte

// CategorySeed is one category entry of a catalog file.
type CategorySeed struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Icon        string `yaml:"icon"`
	Description string `yaml:"description"`
}

// WorkshopSeed is one workshop entry of a catalog file. Category holds a category slug.
type WorkshopSeed struct {
	Title       string            `yaml:"title"`
	Slug        string            `yaml:"slug"`
	Description string            `yaml:"description"`
	Category    string            `yaml:"category"`
	Difficulty  models.Difficulty `yaml:"difficulty"`
	Duration    string            `yaml:"duration"`
	Instructor  string            `yaml:"instructor"`
	MaxStudents int               `yaml:"max_students"`
	ImageURL    string            `yaml:"image_url"`
}

// CatalogFile is the YAML document describing categories and workshops.
type CatalogFile struct {
	Categories []CategorySeed `yaml:"categories"`
	Workshops  []WorkshopSeed `yaml:"workshops"`
}

// LoadCatalog reads a catalog from path, or the built-in catalog when path is empty.
func LoadCatalog(path string) (*CatalogFile, error) {
	data := builtInCatalog
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		data = b
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*CatalogFile, error) {
	var c CatalogFile
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *CatalogFile) validate() error {
	categories := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Slug == "" || cat.Name == "" {
			return fmt.Errorf("category %q: name and slug are required", cat.Slug)
		}
		categories[cat.Slug] = true
	}

	for i := range c.Workshops {
		w := &c.Workshops[i]
		if w.Slug == "" || w.Title == "" {
			return fmt.Errorf("workshop %q: title and slug are required", w.Slug)
		}
		if !categories[w.Category] {
			return fmt.Errorf("workshop %s: unknown category %q", w.Slug, w.Category)
		}
		if w.Difficulty == "" {
			w.Difficulty = models.DifficultyBeginner
		}
		if !w.Difficulty.Valid() {
			return fmt.Errorf("workshop %s: invalid difficulty %q", w.Slug, w.Difficulty)
		}
		if w.MaxStudents == 0 {
			w.MaxStudents = models.DefaultMaxStudents
		}
		if w.MaxStudents < 0 {
			return fmt.Errorf("workshop %s: max_students must be positive", w.Slug)
		}
	}
	return nil
}

// Catalog upserts every category and workshop of c by slug. Running it twice
// leaves the same rows behind. Capacity and the active flag of an existing
// workshop are left as they are.
func Catalog(db *gorm.DB, c *CatalogFile) error {
	categoryIDs := make(map[string]uint, len(c.Categories))

	for _, item := range c.Categories {
		category := models.Category{
			Name:        item.Name,
			Slug:        item.Slug,
			Icon:        item.Icon,
			Description: item.Description,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "icon", "description"}),
		}).Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", item.Slug, err)
		}

		if category.ID == 0 {
			if err := db.Where("slug = ?", item.Slug).First(&category).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", item.Slug, err)
			}
		}
		categoryIDs[item.Slug] = category.ID
	}

	for _, item := range c.Workshops {
		workshop := models.Workshop{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
			CategoryID:  categoryIDs[item.Category],
			Difficulty:  item.Difficulty,
			Duration:    item.Duration,
			Instructor:  item.Instructor,
			MaxStudents: item.MaxStudents,
			ImageURL:    item.ImageURL,
			IsActive:    true,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "description", "category_id", "difficulty", "duration", "instructor", "image_url", "updated_at",
			}),
		}).Create(&workshop).Error; err != nil {
			return fmt.Errorf("seed workshop %s: %w", item.Slug, err)
		}
	}

	return nil
}

// BuiltInCatalog seeds the embedded catalog.
func BuiltInCatalog(db *gorm.DB) error {
	c, err := ParseCatalog(builtInCatalog)
	if err != nil {
		return err
	}
	return Catalog(db, c)
}
