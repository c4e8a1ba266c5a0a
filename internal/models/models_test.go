package models

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
// The database name is uniquified using the current Unix nanosecond
// timestamp to prevent cross-test contamination.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:modeldb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}
	return db
}

func TestProfileRoleValid(t *testing.T) {
	valid := []ProfileRole{RoleDoctor, RolePatient, RoleAttendant}
	for _, role := range valid {
		if !role.Valid() {
			t.Errorf("expected %q to be valid", role)
		}
	}

	invalid := []ProfileRole{"", "admin", "Doctor", "janitor"}
	for _, role := range invalid {
		if role.Valid() {
			t.Errorf("expected %q to be invalid", role)
		}
	}
}

func TestProfileRoleCheckConstraint(t *testing.T) {
	db := setupTestDB(t)

	user := User{Username: "alice", Email: "alice@clinic.test"}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("failed to set password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	bad := Profile{UserID: user.ID, Role: ProfileRole("janitor")}
	if err := db.Create(&bad).Error; err == nil {
		t.Fatal("expected the schema to reject an out-of-set role")
	}

	good := Profile{UserID: user.ID, Role: RoleAttendant}
	if err := db.Create(&good).Error; err != nil {
		t.Fatalf("expected a recognized role to be accepted: %v", err)
	}
}

func TestProfileUniquePerUser(t *testing.T) {
	db := setupTestDB(t)

	user := User{Username: "alice", Email: "alice@clinic.test"}
	if err := user.SetPassword("password123"); err != nil {
		t.Fatalf("failed to set password: %v", err)
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if err := db.Create(&Profile{UserID: user.ID, Role: RolePatient}).Error; err != nil {
		t.Fatalf("failed to create first profile: %v", err)
	}
	if err := db.Create(&Profile{UserID: user.ID, Role: RoleDoctor}).Error; err == nil {
		t.Fatal("expected a second profile for the same user to be rejected")
	}
}

func TestUserPasswordHashing(t *testing.T) {
	var user User
	if err := user.SetPassword("s3cret-password"); err != nil {
		t.Fatalf("SetPassword returned error: %v", err)
	}
	if user.Password == "s3cret-password" {
		t.Fatal("password stored in plain text")
	}
	if !user.CheckPassword("s3cret-password") {
		t.Fatal("CheckPassword rejected the correct password")
	}
	if user.CheckPassword("wrong") {
		t.Fatal("CheckPassword accepted a wrong password")
	}
}

func TestBaseModelAssignsUUID(t *testing.T) {
	db := setupTestDB(t)

	medication := Medication{Name: "Dipirona", Price: 5.0}
	if err := db.Create(&medication).Error; err != nil {
		t.Fatalf("failed to create medication: %v", err)
	}
	if medication.ID == "" {
		t.Fatal("expected BeforeCreate to assign an id")
	}

	other := Medication{Name: "Paracetamol", Price: 7.5}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create medication: %v", err)
	}
	if other.ID == medication.ID {
		t.Fatal("expected distinct ids")
	}
}

func TestMedicationNameUnique(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Create(&Medication{Name: "Dipirona", Price: 5.0}).Error; err != nil {
		t.Fatalf("failed to create medication: %v", err)
	}
	if err := db.Create(&Medication{Name: "Dipirona", Price: 6.0}).Error; err == nil {
		t.Fatal("expected duplicate medication name to be rejected")
	}
}
