package availability

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
)

const testSchema = `
CREATE TABLE pharmacy_networks (
    id text PRIMARY KEY,
    name text NOT NULL,
    website text,
    phone text,
    is_active boolean NOT NULL DEFAULT true
);
CREATE TABLE drugs (
    id text PRIMARY KEY,
    mnn text NOT NULL,
    trade_name text NOT NULL,
    form text NOT NULL,
    dosage text NOT NULL,
    manufacturer text NOT NULL,
    atx_code text,
    description text,
    created_at datetime,
    updated_at datetime
);
CREATE TABLE pharmacies (
    id text PRIMARY KEY,
    network_id text NOT NULL REFERENCES pharmacy_networks(id),
    name text NOT NULL,
    address text NOT NULL,
    city text NOT NULL,
    phone text,
    latitude real,
    longitude real,
    working_hours text
);
CREATE TABLE availabilities (
    id text PRIMARY KEY,
    drug_id text NOT NULL REFERENCES drugs(id),
    pharmacy_id text NOT NULL REFERENCES pharmacies(id),
    price numeric(10,2) NOT NULL,
    quantity integer NOT NULL DEFAULT 0,
    is_available boolean NOT NULL DEFAULT true,
    last_updated datetime,
    UNIQUE (drug_id, pharmacy_id)
);
CREATE TABLE price_histories (
    id text PRIMARY KEY,
    availability_id text NOT NULL REFERENCES availabilities(id),
    price numeric(10,2) NOT NULL,
    recorded_at datetime
);
`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:availability_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.Exec(testSchema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return conn
}

func seedDrug(t *testing.T, conn *gorm.DB, tradeName, mnn string) uuid.UUID {
	t.Helper()
	drug := models.Drug{
		ID:           uuid.New(),
		MNN:          mnn,
		TradeName:    tradeName,
		Form:         "таблетки",
		Dosage:       "500мг",
		Manufacturer: "Фармстандарт",
	}
	if err := conn.Create(&drug).Error; err != nil {
		t.Fatalf("seed drug: %v", err)
	}
	return drug.ID
}

func seedPharmacy(t *testing.T, conn *gorm.DB, name, city string) uuid.UUID {
	t.Helper()
	network := models.PharmacyNetwork{ID: uuid.New(), Name: "Сеть " + name, IsActive: true}
	if err := conn.Create(&network).Error; err != nil {
		t.Fatalf("seed network: %v", err)
	}
	pharmacy := models.Pharmacy{
		ID:        uuid.New(),
		NetworkID: network.ID,
		Name:      name,
		Address:   "ул. Ленина, 1",
		City:      city,
	}
	if err := conn.Create(&pharmacy).Error; err != nil {
		t.Fatalf("seed pharmacy: %v", err)
	}
	return pharmacy.ID
}
