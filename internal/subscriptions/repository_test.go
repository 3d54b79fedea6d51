package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avolkov/pharmtrack-backend/pkg/db/models"
)

func setupSubscriptionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:subscriptions_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE users (
  id text PRIMARY KEY,
  email text NOT NULL UNIQUE,
  password_hash text NOT NULL,
  first_name text NOT NULL,
  last_name text NOT NULL,
  is_active boolean NOT NULL DEFAULT true,
  email_notifications boolean NOT NULL DEFAULT true,
  created_at datetime,
  updated_at datetime
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
CREATE TABLE user_subscriptions (
  id text PRIMARY KEY,
  user_id text NOT NULL REFERENCES users(id),
  drug_id text NOT NULL REFERENCES drugs(id),
  city text,
  max_price numeric(10,2),
  is_active boolean NOT NULL,
  created_at datetime
);
CREATE UNIQUE INDEX idx_subscription_user_drug_city
  ON user_subscriptions (user_id, drug_id, city);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:                 uuid.New(),
		Email:              email,
		PasswordHash:       "x",
		FirstName:          "Иван",
		LastName:           "Петров",
		IsActive:           true,
		EmailNotifications: true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func seedRepoDrug(t *testing.T, conn *gorm.DB, tradeName string) *models.Drug {
	t.Helper()

	drug := &models.Drug{
		ID:           uuid.New(),
		MNN:          "лоратадин",
		TradeName:    tradeName,
		Form:         "таблетки",
		Dosage:       "10мг",
		Manufacturer: "Вертекс",
	}
	require.NoError(t, conn.Create(drug).Error)
	return drug
}

func seedSubscription(t *testing.T, conn *gorm.DB, user *models.User, drug *models.Drug, city *string, active bool, created time.Time) *models.UserSubscription {
	t.Helper()

	price := decimal.RequireFromString("150.00")
	sub := &models.UserSubscription{
		ID:        uuid.New(),
		UserID:    user.ID,
		DrugID:    drug.ID,
		City:      city,
		MaxPrice:  &price,
		IsActive:  active,
		CreatedAt: created,
	}
	require.NoError(t, conn.Create(sub).Error)
	return sub
}

func TestRepositoryExists_cityScoping(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := seedUser(t, conn, "exists@example.com")
	drug := seedRepoDrug(t, conn, "Кларитин")
	city := "Москва"
	seedSubscription(t, conn, user, drug, &city, true, time.Now())

	taken, err := repo.Exists(ctx, user.ID, drug.ID, &city)
	require.NoError(t, err)
	assert.True(t, taken)

	other := "Казань"
	taken, err = repo.Exists(ctx, user.ID, drug.ID, &other)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.Exists(ctx, user.ID, drug.ID, nil)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRepositoryListByUser_ordersNewestFirst(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := seedUser(t, conn, "list@example.com")
	older := seedRepoDrug(t, conn, "Лоратадин")
	newer := seedRepoDrug(t, conn, "Кларитин")
	now := time.Now().UTC()
	seedSubscription(t, conn, user, older, nil, true, now.Add(-time.Hour))
	seedSubscription(t, conn, user, newer, nil, true, now)

	stranger := seedUser(t, conn, "other@example.com")
	seedSubscription(t, conn, stranger, older, nil, true, now)

	subs, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, newer.ID, subs[0].DrugID)
	assert.Equal(t, older.ID, subs[1].DrugID)
	require.NotNil(t, subs[0].Drug)
	assert.Equal(t, "Кларитин", subs[0].Drug.TradeName)
}

func TestRepositoryListActive_filtersAndPreloads(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := seedUser(t, conn, "active@example.com")
	watched := seedRepoDrug(t, conn, "Нурофен")
	ignored := seedRepoDrug(t, conn, "Парацетамол")
	seedSubscription(t, conn, user, watched, nil, true, time.Now())
	seedSubscription(t, conn, user, ignored, nil, false, time.Now())

	subs, err := repo.ListActive(ctx, nil)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, watched.ID, subs[0].DrugID)
	require.NotNil(t, subs[0].User)
	assert.Equal(t, "active@example.com", subs[0].User.Email)

	scoped, err := repo.ListActive(ctx, &ignored.ID)
	require.NoError(t, err)
	assert.Empty(t, scoped)
}

func TestRepositoryDelete_removesRow(t *testing.T) {
	conn := setupSubscriptionsTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	user := seedUser(t, conn, "delete@example.com")
	drug := seedRepoDrug(t, conn, "Амоксиклав")
	sub := seedSubscription(t, conn, user, drug, nil, true, time.Now())

	require.NoError(t, repo.Delete(ctx, sub.ID))

	_, err := repo.FindByID(ctx, sub.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
