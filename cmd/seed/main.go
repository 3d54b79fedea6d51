package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avolkov/pharmtrack-backend/internal/users"
	"github.com/avolkov/pharmtrack-backend/pkg/config"
	"github.com/avolkov/pharmtrack-backend/pkg/db"
	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
	"github.com/avolkov/pharmtrack-backend/pkg/logger"
	"github.com/avolkov/pharmtrack-backend/pkg/migrate"
	"github.com/avolkov/pharmtrack-backend/pkg/security"
)

const seedPassword = "password123"

// Seeds a demo dataset: a handful of drugs with analogue links, three
// pharmacy networks across three cities, current availability, and a few
// users with subscriptions. Safe to re-run; rows are matched by natural keys.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "migrations", migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient))

	passwordHash, err := security.HashPassword(seedPassword, cfg.Password)
	requireResource(ctx, logg, "password hash", err)

	err = dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return run(tx, passwordHash)
	})
	requireResource(ctx, logg, "seed", err)

	logg.Info(ctx, "seed complete")
}

func run(tx *gorm.DB, passwordHash string) error {
	paracetamol, err := ensureDrug(tx, "Парацетамол", "парацетамол", "таблетки", "500мг", "Фармстандарт")
	if err != nil {
		return err
	}
	nurofen, err := ensureDrug(tx, "Нурофен", "ибупрофен", "таблетки", "200мг", "Reckitt Benckiser")
	if err != nil {
		return err
	}
	ibuprofen, err := ensureDrug(tx, "Ибупрофен", "ибупрофен", "таблетки", "200мг", "Борисовский завод")
	if err != nil {
		return err
	}
	amoxiclav, err := ensureDrug(tx, "Амоксиклав", "амоксициллин+клавулановая кислота", "таблетки", "875мг+125мг", "Lek")
	if err != nil {
		return err
	}
	augmentin, err := ensureDrug(tx, "Аугментин", "амоксициллин+клавулановая кислота", "таблетки", "875мг+125мг", "GlaxoSmithKline")
	if err != nil {
		return err
	}
	loratadin, err := ensureDrug(tx, "Лоратадин", "лоратадин", "таблетки", "10мг", "Вертекс")
	if err != nil {
		return err
	}
	claritin, err := ensureDrug(tx, "Кларитин", "лоратадин", "таблетки", "10мг", "Bayer")
	if err != nil {
		return err
	}

	for _, pair := range []struct {
		a, b  *models.Drug
		score float64
	}{
		{nurofen, ibuprofen, 1.0},
		{amoxiclav, augmentin, 0.95},
		{loratadin, claritin, 1.0},
	} {
		if err := ensureAnalogue(tx, pair.a, pair.b, pair.score); err != nil {
			return err
		}
		if err := ensureAnalogue(tx, pair.b, pair.a, pair.score); err != nil {
			return err
		}
	}

	gorzdrav, err := ensureNetwork(tx, "Горздрав", "https://gorzdrav.org")
	if err != nil {
		return err
	}
	rigla, err := ensureNetwork(tx, "Ригла", "https://rigla.ru")
	if err != nil {
		return err
	}
	aprel, err := ensureNetwork(tx, "Апрель", "https://apteka-april.ru")
	if err != nil {
		return err
	}

	type pharmacySeed struct {
		network *models.PharmacyNetwork
		name    string
		address string
		city    string
	}
	pharmacySeeds := []pharmacySeed{
		{gorzdrav, "Горздрав №12", "ул. Тверская, 4", "Москва"},
		{gorzdrav, "Горздрав №47", "Невский пр., 88", "Санкт-Петербург"},
		{rigla, "Ригла на Арбате", "ул. Арбат, 20", "Москва"},
		{rigla, "Ригла Центральная", "ул. Баумана, 17", "Казань"},
		{aprel, "Апрель №3", "пр. Победы, 141", "Казань"},
	}
	pharmacies := make([]*models.Pharmacy, 0, len(pharmacySeeds))
	for _, s := range pharmacySeeds {
		pharmacy, err := ensurePharmacy(tx, s.network, s.name, s.address, s.city)
		if err != nil {
			return err
		}
		pharmacies = append(pharmacies, pharmacy)
	}

	type offerSeed struct {
		drug     *models.Drug
		pharmacy *models.Pharmacy
		price    string
		quantity int
		inStock  bool
	}
	offers := []offerSeed{
		{paracetamol, pharmacies[0], "38.50", 120, true},
		{paracetamol, pharmacies[3], "35.00", 80, true},
		{nurofen, pharmacies[0], "165.00", 40, true},
		{nurofen, pharmacies[2], "172.50", 0, false},
		{ibuprofen, pharmacies[1], "52.00", 200, true},
		{amoxiclav, pharmacies[2], "410.00", 15, true},
		{augmentin, pharmacies[4], "395.90", 10, true},
		{loratadin, pharmacies[3], "78.00", 60, true},
		{claritin, pharmacies[0], "240.50", 25, true},
	}
	for _, o := range offers {
		if err := ensureAvailability(tx, o.drug, o.pharmacy, o.price, o.quantity, o.inStock); err != nil {
			return err
		}
	}

	ivan, err := ensureUser(tx, "ivan.petrov@example.com", "Иван", "Петров", passwordHash, true)
	if err != nil {
		return err
	}
	maria, err := ensureUser(tx, "maria.ivanova@example.com", "Мария", "Иванова", passwordHash, true)
	if err != nil {
		return err
	}
	// opted out of email digests
	if _, err := ensureUser(tx, "alexey.sidorov@example.com", "Алексей", "Сидоров", passwordHash, false); err != nil {
		return err
	}

	moscow := "Москва"
	maxPrice := decimal.RequireFromString("160.00")
	if err := ensureSubscription(tx, ivan, nurofen, &moscow, &maxPrice); err != nil {
		return err
	}
	if err := ensureSubscription(tx, maria, amoxiclav, nil, nil); err != nil {
		return err
	}
	return nil
}

func ensureDrug(tx *gorm.DB, tradeName, mnn, form, dosage, manufacturer string) (*models.Drug, error) {
	var drug models.Drug
	err := tx.Where("trade_name = ?", tradeName).
		Attrs(models.Drug{
			ID:           uuid.New(),
			MNN:          mnn,
			Form:         form,
			Dosage:       dosage,
			Manufacturer: manufacturer,
		}).
		FirstOrCreate(&drug).Error
	if err != nil {
		return nil, fmt.Errorf("seed drug %s: %w", tradeName, err)
	}
	return &drug, nil
}

func ensureAnalogue(tx *gorm.DB, original, analogue *models.Drug, score float64) error {
	var edge models.Analogue
	err := tx.Where("original_id = ? AND analogue_id = ?", original.ID, analogue.ID).
		Attrs(models.Analogue{
			ID:              uuid.New(),
			SimilarityScore: score,
			IsActive:        true,
		}).
		FirstOrCreate(&edge).Error
	if err != nil {
		return fmt.Errorf("seed analogue %s -> %s: %w", original.TradeName, analogue.TradeName, err)
	}
	return nil
}

func ensureNetwork(tx *gorm.DB, name, website string) (*models.PharmacyNetwork, error) {
	var network models.PharmacyNetwork
	err := tx.Where("name = ?", name).
		Attrs(models.PharmacyNetwork{
			ID:       uuid.New(),
			Website:  &website,
			IsActive: true,
		}).
		FirstOrCreate(&network).Error
	if err != nil {
		return nil, fmt.Errorf("seed network %s: %w", name, err)
	}
	return &network, nil
}

func ensurePharmacy(tx *gorm.DB, network *models.PharmacyNetwork, name, address, city string) (*models.Pharmacy, error) {
	var pharmacy models.Pharmacy
	err := tx.Where("name = ? AND city = ?", name, city).
		Attrs(models.Pharmacy{
			ID:        uuid.New(),
			NetworkID: network.ID,
			Address:   address,
		}).
		FirstOrCreate(&pharmacy).Error
	if err != nil {
		return nil, fmt.Errorf("seed pharmacy %s: %w", name, err)
	}
	return &pharmacy, nil
}

func ensureAvailability(tx *gorm.DB, drug *models.Drug, pharmacy *models.Pharmacy, price string, quantity int, inStock bool) error {
	var row models.Availability
	err := tx.Where("drug_id = ? AND pharmacy_id = ?", drug.ID, pharmacy.ID).
		Attrs(models.Availability{
			ID:          uuid.New(),
			Price:       decimal.RequireFromString(price),
			Quantity:    quantity,
			IsAvailable: inStock,
		}).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("seed availability %s @ %s: %w", drug.TradeName, pharmacy.Name, err)
	}
	return nil
}

func ensureUser(tx *gorm.DB, email, firstName, lastName, passwordHash string, emailNotifications bool) (*models.User, error) {
	repo := users.NewRepository(tx)
	ctx := context.Background()

	user, err := repo.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("seed user %s: %w", email, err)
	}

	user = &models.User{
		ID:                 uuid.New(),
		Email:              email,
		FirstName:          firstName,
		LastName:           lastName,
		PasswordHash:       passwordHash,
		IsActive:           true,
		EmailNotifications: emailNotifications,
	}
	created, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", email, err)
	}
	return created, nil
}

func ensureSubscription(tx *gorm.DB, user *models.User, drug *models.Drug, city *string, maxPrice *decimal.Decimal) error {
	query := tx.Where("user_id = ? AND drug_id = ?", user.ID, drug.ID)
	if city == nil {
		query = query.Where("city IS NULL")
	} else {
		query = query.Where("city = ?", *city)
	}
	var sub models.UserSubscription
	err := query.
		Attrs(models.UserSubscription{
			ID:       uuid.New(),
			City:     city,
			MaxPrice: maxPrice,
			IsActive: true,
		}).
		FirstOrCreate(&sub).Error
	if err != nil {
		return fmt.Errorf("seed subscription %s/%s: %w", user.Email, drug.TradeName, err)
	}
	return nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
