package db

import (
	"fmt"
	"log/slog"

	"rebuyrnot/internal/models"

	"gorm.io/gorm"
)

// Seed fills empty reference tables and the starter catalog.
// Tables that already have rows are left alone.
func Seed(db *gorm.DB) error {
	categories := seedCategories()
	brands := seedBrands()
	products := seedProducts()
	content := seedSiteContent()

	steps := []struct {
		name  string
		model any
		rows  any
	}{
		{"categories", &models.Category{}, &categories},
		{"brands", &models.Brand{}, &brands},
		{"products", &models.Product{}, &products},
		{"site_content", &models.SiteContent{}, &content},
	}

	for _, s := range steps {
		var count int64
		if err := db.Model(s.model).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count %s: %w", s.name, err)
		}
		if count > 0 {
			slog.Debug("table already seeded, skipping", "table", s.name)
			continue
		}
		if err := db.Create(s.rows).Error; err != nil {
			return fmt.Errorf("failed to seed %s: %w", s.name, err)
		}
		slog.Info("seeded table", "table", s.name)
	}
	return nil
}

func seedCategories() []models.Category {
	return []models.Category{
		{Key: "cars", NameEN: "Cars", NameFR: "Voitures", NameAR: "سيارات", DisplayOrder: 1, IsActive: true},
		{Key: "tech", NameEN: "Tech", NameFR: "Tech", NameAR: "تقنية", DisplayOrder: 2, IsActive: true},
		{Key: "beauty", NameEN: "Beauty", NameFR: "Beauté", NameAR: "جمال", DisplayOrder: 3, IsActive: true},
		{Key: "fashion", NameEN: "Fashion", NameFR: "Mode", NameAR: "أزياء", DisplayOrder: 4, IsActive: true},
		{Key: "home", NameEN: "Home", NameFR: "Maison", NameAR: "منزل", DisplayOrder: 5, IsActive: true},
	}
}

func seedBrands() []models.Brand {
	return []models.Brand{
		{Name: "Tesla", LogoURL: "/brands/tesla.svg", DisplayOrder: 1, IsActive: true},
		{Name: "Apple", LogoURL: "/brands/apple.svg", DisplayOrder: 2, IsActive: true},
		{Name: "Dyson", LogoURL: "/brands/dyson.svg", DisplayOrder: 3, IsActive: true},
		{Name: "Nike", LogoURL: "/brands/nike.svg", DisplayOrder: 4, IsActive: true},
		{Name: "The Ordinary", LogoURL: "/brands/the-ordinary.svg", DisplayOrder: 5, IsActive: true},
	}
}

func seedProducts() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Model 3",
			Brand:       "Tesla",
			Category:    "cars",
			Image:       "https://images.unsplash.com/photo-1560958089-b8a1929cea89?w=800&auto=format&fit=crop",
			RebuyVotes:  847,
			NotVotes:    234,
			Description: "Electric sedan with cutting-edge technology, autopilot features, and impressive range.",
			RebuyReasons: []string{
				"Amazing autopilot and tech features",
				"Low maintenance costs over time",
				"Incredible acceleration and performance",
			},
			NotReasons: []string{
				"Build quality inconsistencies",
				"Limited service center availability",
				"Expensive repairs when needed",
			},
		},
		{
			ID:          "2",
			Name:        "iPhone 15 Pro",
			Brand:       "Apple",
			Category:    "tech",
			Image:       "https://images.unsplash.com/photo-1696446701796-da61225697cc?w=800&auto=format&fit=crop",
			RebuyVotes:  1523,
			NotVotes:    412,
			Description: "Flagship smartphone featuring titanium design, A17 Pro chip, and a 5x optical zoom camera.",
			RebuyReasons: []string{
				"Best-in-class camera quality",
				"Smooth iOS experience and updates",
				"Premium titanium build quality",
			},
			NotReasons: []string{
				"Very expensive for incremental upgrades",
				"Battery life could be better",
				"USB-C transfer speeds need specific cables",
			},
		},
		{
			ID:          "3",
			Name:        "V15 Detect",
			Brand:       "Dyson",
			Category:    "home",
			RebuyVotes:  612,
			NotVotes:    188,
			Description: "Cordless vacuum with laser dust detection and an LCD particle counter.",
			RebuyReasons: []string{
				"Strong suction on every floor type",
				"Laser reveals dust you would miss",
			},
			NotReasons: []string{
				"Bin is small for large homes",
				"Battery degrades after a couple of years",
			},
		},
		{
			ID:          "4",
			Name:        "Air Force 1",
			Brand:       "Nike",
			Category:    "fashion",
			RebuyVotes:  934,
			NotVotes:    201,
			Description: "The classic low-top sneaker that goes with everything.",
			RebuyReasons: []string{
				"Timeless look",
				"Comfortable for all-day wear",
			},
			NotReasons: []string{
				"Creases quickly",
				"Heavy compared to modern runners",
			},
		},
		{
			ID:          "5",
			Name:        "Niacinamide 10% + Zinc 1%",
			Brand:       "The Ordinary",
			Category:    "beauty",
			RebuyVotes:  1210,
			NotVotes:    350,
			Description: "High-strength vitamin and mineral blemish formula.",
			RebuyReasons: []string{
				"Visible results for oily skin",
				"Very affordable",
			},
			NotReasons: []string{
				"Can pill under makeup",
				"Caused breakouts for some users",
			},
		},
	}
}

func seedSiteContent() []models.SiteContent {
	return []models.SiteContent{
		{ContentKey: "hero.title", ContentEN: "Would you buy it again?", ContentFR: "L'achèteriez-vous à nouveau ?", ContentAR: "هل ستشتريه مرة أخرى؟", Category: "hero"},
		{ContentKey: "hero.subtitle", ContentEN: "Real owners. One honest question.", ContentFR: "De vrais propriétaires. Une question honnête.", ContentAR: "مالكون حقيقيون. سؤال واحد صادق.", Category: "hero"},
		{ContentKey: "vote.rebuy", ContentEN: "Rebuy", ContentFR: "Racheter", ContentAR: "أعيد الشراء", Category: "vote"},
		{ContentKey: "vote.not", ContentEN: "Not", ContentFR: "Non", ContentAR: "لا", Category: "vote"},
		{ContentKey: "vote.already", ContentEN: "You already voted on this product", ContentFR: "Vous avez déjà voté pour ce produit", ContentAR: "لقد صوتت بالفعل على هذا المنتج", Category: "vote"},
		{ContentKey: "mission.body", ContentEN: "RebuyRnot collects one signal that matters: would owners buy it again.", ContentFR: "RebuyRnot recueille un seul signal : les propriétaires le rachèteraient-ils ?", ContentAR: "يجمع RebuyRnot إشارة واحدة مهمة: هل سيشتريه المالكون مرة أخرى؟", Category: "mission"},
	}
}
