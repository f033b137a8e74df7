package db

import (
	"testing"

	"github.com/sujalbistaa/qanda/internal/models"
)

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open("mysql://root@localhost/qanda", false); err == nil {
		t.Fatal("Expected error for unsupported scheme")
	}
}

func TestOpenAndMigrateInMemory(t *testing.T) {
	db, err := Open("sqlite://:memory:", false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, table := range []string{"users", "sessions", "questions", "answers", "question_upvotes", "question_downvotes"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("Expected table %s to exist", table)
		}
	}

	// A second run must be a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	user := models.User{Username: "alice", PasswordHash: "x", IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}
}

func TestWithForeignKeys(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"qanda.db", "qanda.db?_pragma=foreign_keys(1)"},
		{":memory:", ":memory:?_pragma=foreign_keys(1)"},
		{"qanda.db?cache=shared", "qanda.db?cache=shared&_pragma=foreign_keys(1)"},
	}
	for _, tc := range testCases {
		if got := withForeignKeys(tc.in); got != tc.want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMigrateBackfillsTopicFold(t *testing.T) {
	db, err := Open("sqlite://:memory:", false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	q := models.Question{Topic: "Über Go", Description: "legacy row"}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var got models.Question
	if err := db.First(&got, q.ID).Error; err != nil {
		t.Fatalf("reload question: %v", err)
	}
	if got.TopicFold != "über go" {
		t.Errorf("Expected folded topic %q, got %q", "über go", got.TopicFold)
	}
}
