package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAvailabilityMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_availability.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no availability migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS availabilities",
		"FOREIGN KEY (drug_id) REFERENCES drugs(id) ON DELETE CASCADE",
		"FOREIGN KEY (pharmacy_id) REFERENCES pharmacies(id) ON DELETE CASCADE",
		"CHECK (price >= 0)",
		"CHECK (quantity >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_availability_drug_pharmacy",
		"DROP TABLE IF EXISTS availabilities",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestSubscriptionMigrationEnforcesUniqueTriple(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_user_subscriptions.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no subscription migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_subscription_user_drug_city",
		"NULLS NOT DISTINCT",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"FOREIGN KEY (drug_id) REFERENCES drugs(id) ON DELETE CASCADE",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
