package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"easset/internal/database"
	"easset/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultPlantID = "PL01"

func main() {
	driver := os.Getenv("DB_DRIVER")
	dsn := os.Getenv("DB_DSN")

	db, err := database.NewConnection(driver, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}

	log.Println("--- Seeding Database ---")

	var assetCount int64
	db.Model(&model.Asset{}).Count(&assetCount)
	if assetCount > 0 {
		log.Printf("Database already has %d assets. Skipping.", assetCount)
		return
	}

	seedUsers(db)
	seedAssets(db)
	seedStocktakeYear(db)

	log.Println("--- Seeding Complete ---")
}

func seedUsers(db *gorm.DB) {
	users := []model.User{
		{Email: "admin@mitrphol.com", DisplayName: "System Admin", Role: model.RoleAdmin, PlantID: defaultPlantID},
		{Email: "somsak.a@mitrphol.com", DisplayName: "Somsak Accounting", Role: model.RoleAccounting, PlantID: defaultPlantID},
		{Email: "wichai.s@mitrphol.com", DisplayName: "Wichai Staff", Role: model.RoleStaff, PlantID: defaultPlantID},
	}

	hashed := mustHash("password123")
	for i := range users {
		users[i].Password = hashed
		users[i].IsActive = true
	}

	if err := db.Create(&users).Error; err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	log.Printf("Seeded %d users.", len(users))
}

type assetSeed struct {
	name       string
	bookValue  string
	costCenter string
	location   string
	group      string
	hasImage   bool
	sapGap     bool
}

func seedAssets(db *gorm.DB) {
	seeds := []assetSeed{
		{"Conveyor Belt Line A", "1250000.00", "CC-PROD-01", "Production Hall 1", "Machinery", true, false},
		{"Sugar Centrifuge #3", "4800000.00", "CC-PROD-01", "Production Hall 1", "Machinery", true, false},
		{"Forklift Toyota 2.5T", "780000.00", "CC-WH-01", "Warehouse North", "Vehicles", true, false},
		{"Boiler Feed Pump", "950000.00", "CC-PROD-02", "Boiler House", "Machinery", false, false},
		{"Office Printer HP M428", "18500.00", "CC-ADM-01", "Admin Building", "Office Equipment", false, false},
		{"Laboratory Spectrometer", "2100000.00", "CC-QA-01", "QA Laboratory", "Lab Equipment", true, true},
		{"Cooling Tower Fan", "430000.00", "CC-PROD-02", "Cooling Plant", "Machinery", false, false},
		{"Pickup Truck Isuzu D-Max", "890000.00", "CC-ADM-01", "Motor Pool", "Vehicles", true, false},
		{"Desktop Workstation Dell", "42000.00", "CC-ADM-01", "Admin Building", "Office Equipment", false, true},
		{"Bagasse Conveyor Motor", "310000.00", "CC-PROD-01", "Production Hall 2", "Machinery", false, false},
		{"Weighbridge 60T", "1650000.00", "CC-WH-01", "Gate House", "Machinery", true, false},
		{"Air Compressor Atlas", "560000.00", "CC-PROD-02", "Compressor Room", "Machinery", true, false},
	}

	assets := make([]model.Asset, 0, len(seeds))
	for i, s := range seeds {
		bookValue, err := decimal.NewFromString(s.bookValue)
		if err != nil {
			log.Fatalf("Bad seed book value %q: %v", s.bookValue, err)
		}

		assetNo := fmt.Sprintf("FA-%06d", i+1)
		asset := model.Asset{
			AssetNo:        assetNo,
			AssetName:      s.name,
			BookValue:      bookValue,
			ReceiveDate:    time.Now().AddDate(-2, -i, 0).Format("2006-01-02"),
			QrValue:        assetNo,
			QrTypeCode:     model.QrTypeSticker,
			StatusName:     "In Use",
			PlantName:      "Plant " + defaultPlantID,
			CostCenterName: s.costCenter,
			LocationName:   s.location,
			AssetGroupName: s.group,
			Quantity:       1,
			HasImage:       s.hasImage,
			SapExists:      true,
			SapAssetNo:     assetNo,
			SapBookValue:   bookValue,
			IsActive:       true,
		}
		if s.sapGap {
			asset.SapBookValue = bookValue.Sub(decimal.NewFromInt(1000))
		}
		assets = append(assets, asset)
	}

	if err := db.Create(&assets).Error; err != nil {
		log.Fatalf("Failed to seed assets: %v", err)
	}
	log.Printf("Seeded %d assets.", len(assets))
}

func seedStocktakeYear(db *gorm.DB) {
	config := model.StocktakeYearConfig{
		PlantID:       defaultPlantID,
		StocktakeYear: time.Now().Year(),
		IsOpen:        true,
	}
	if err := db.Create(&config).Error; err != nil {
		log.Fatalf("Failed to seed stocktake year config: %v", err)
	}
	log.Printf("Opened stocktake year %d for plant %s.", config.StocktakeYear, config.PlantID)
}

func mustHash(password string) string {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	return string(hashed)
}
