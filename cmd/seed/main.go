package main

import (
	"fmt"
	"time"

	"github.com/smartskincare/api/internal/config"
	"github.com/smartskincare/api/internal/constants"
	"github.com/smartskincare/api/internal/logger"
	"github.com/smartskincare/api/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to seed default admin: %v", err)
	}

	products := []models.Product{
		{
			Code:              "P001",
			Name:              "Hydra Barrier Day Cream",
			Category:          constants.ProductCategoryMoisturizer,
			Description:       "Lightweight day cream that locks in moisture without a greasy finish. Suitable for daily use, morning and night.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(39.90)),
			ImageURL:          "https://images.unsplash.com/photo-1556228720-195a672e8a03?w=800",
			TargetSkinTypes:   models.StringArray([]string{"dry", "normal", "sensitive"}),
			ActiveIngredients: models.StringArray([]string{"hyaluronic acid", "glycerin"}),
			IsActive:          true,
			SortOrder:         100,
		},
		{
			Code:              "P002",
			Name:              "Salicylic Acid Blemish Gel",
			Category:          constants.ProductCategoryAcne,
			Description:       "Targeted gel with 2% salicylic acid to unclog pores and control excess sebum.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(45.00)),
			ImageURL:          "https://images.unsplash.com/photo-1608248543803-ba4f8c70ae0b?w=800",
			TargetSkinTypes:   models.StringArray([]string{"oily", "combination"}),
			ActiveIngredients: models.StringArray([]string{"salicylic acid"}),
			IsActive:          true,
			SortOrder:         95,
		},
		{
			Code:              "P003",
			Name:              "Vitamin C Brightening Serum",
			Category:          constants.ProductCategorySerum,
			Description:       "10% vitamin C serum that fades dark spots and evens skin tone over four to eight weeks.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(89.00)),
			ImageURL:          "https://images.unsplash.com/photo-1620916566398-39f1143ab7be?w=800",
			TargetSkinTypes:   models.StringArray([]string{"normal", "combination", "dry"}),
			ActiveIngredients: models.StringArray([]string{"vitamin c", "ferulic acid"}),
			IsActive:          true,
			SortOrder:         90,
		},
		{
			Code:              "P004",
			Name:              "Niacinamide Pore Refining Serum",
			Category:          constants.ProductCategorySerum,
			Description:       "5% niacinamide with zinc to minimise pores and balance oil production.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(65.00)),
			ImageURL:          "https://images.unsplash.com/photo-1611930022073-b7a4ba5fcccd?w=800",
			TargetSkinTypes:   models.StringArray([]string{"oily", "combination"}),
			ActiveIngredients: models.StringArray([]string{"niacinamide", "zinc"}),
			IsActive:          true,
			SortOrder:         85,
		},
		{
			Code:              "P005",
			Name:              "Ceramide Repair Moisturiser",
			Category:          constants.ProductCategoryMoisturizer,
			Description:       "Rich cream with three essential ceramides to restore the skin barrier overnight.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(75.50)),
			ImageURL:          "https://images.unsplash.com/photo-1570194065650-d99fb4bedf0a?w=800",
			TargetSkinTypes:   models.StringArray([]string{"dry", "sensitive"}),
			ActiveIngredients: models.StringArray([]string{"ceramides", "hyaluronic acid"}),
			IsActive:          true,
			SortOrder:         80,
		},
		{
			Code:              "P006",
			Name:              "Oil-Free Gel Moisturiser",
			Category:          constants.ProductCategoryMoisturizer,
			Description:       "Lightweight water gel that hydrates without clogging pores. Absorbs in seconds.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(55.00)),
			ImageURL:          "https://images.unsplash.com/photo-1598440947619-2c35fc9aa908?w=800",
			TargetSkinTypes:   models.StringArray([]string{"oily", "combination", "normal"}),
			ActiveIngredients: models.StringArray([]string{"hyaluronic acid", "aloe vera"}),
			IsActive:          true,
			SortOrder:         75,
		},
		{
			Code:              "P007",
			Name:              "Tea Tree Spot Treatment",
			Category:          constants.ProductCategoryAcne,
			Description:       "Overnight spot treatment with tea tree oil and sulfur to calm active breakouts.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(49.90)),
			ImageURL:          "https://images.unsplash.com/photo-1556228453-efd6c1ff04f6?w=800",
			TargetSkinTypes:   models.StringArray([]string{"oily", "combination"}),
			ActiveIngredients: models.StringArray([]string{"tea tree oil", "sulfur"}),
			IsActive:          true,
			SortOrder:         70,
		},
		{
			Code:              "P008",
			Name:              "Retinol Renewal Night Serum",
			Category:          constants.ProductCategoryAntiAging,
			Description:       "0.3% encapsulated retinol for fine lines and texture. Introduce gradually, night use only.",
			Price:             models.NewMoneyFromDecimal(decimal.NewFromFloat(99.00)),
			ImageURL:          "https://images.unsplash.com/photo-1617897903246-719242758050?w=800",
			TargetSkinTypes:   models.StringArray([]string{"normal", "combination"}),
			ActiveIngredients: models.StringArray([]string{"retinol", "squalane"}),
			IsActive:          true,
			SortOrder:         65,
		},
	}

	for _, prod := range products {
		var existing models.Product
		if err := models.DB.Where("code = ?", prod.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&prod).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", prod.Code, err)
			} else {
				stdLog.Printf("Created product: %s", prod.Code)
			}
			continue
		}
		existing.Name = prod.Name
		existing.Category = prod.Category
		existing.Description = prod.Description
		existing.Price = prod.Price
		existing.ImageURL = prod.ImageURL
		existing.TargetSkinTypes = prod.TargetSkinTypes
		existing.ActiveIngredients = prod.ActiveIngredients
		existing.IsActive = prod.IsActive
		existing.SortOrder = prod.SortOrder
		if err := models.DB.Save(&existing).Error; err != nil {
			stdLog.Printf("Failed to update product %s: %v", prod.Code, err)
		} else {
			stdLog.Printf("Updated product: %s", prod.Code)
		}
	}

	// Open consultation slots for the next 14 days.
	slotTimes := cfg.Appointment.DefaultSlotTimes
	if len(slotTimes) == 0 {
		slotTimes = []string{"10:00", "11:00", "12:00", "14:00", "15:00", "16:00", "17:00"}
	}
	seededSlots := 0
	today := time.Now()
	for day := 0; day < 14; day++ {
		date := today.AddDate(0, 0, day).Format("2006-01-02")
		for _, slotTime := range slotTimes {
			var existing models.AvailabilitySlot
			if err := models.DB.Where("date = ? AND time = ?", date, slotTime).First(&existing).Error; err == nil {
				continue
			}
			slot := models.AvailabilitySlot{
				Date:      date,
				Time:      slotTime,
				Available: true,
			}
			if err := models.DB.Create(&slot).Error; err != nil {
				stdLog.Printf("Failed to create slot %s %s: %v", date, slotTime, err)
				continue
			}
			seededSlots++
		}
	}
	stdLog.Printf("Seeded %d availability slots", seededSlots)

	fmt.Println("\nSeed data created successfully!")
	fmt.Printf("- %d products across 4 categories\n", len(products))
	fmt.Printf("- Consultation slots for the next 14 days (%d new)\n", seededSlots)
	fmt.Println("- Default admin account")
}
