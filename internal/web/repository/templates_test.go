package repository

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/trinexa/trinexa-web/internal/web/models"
)

func TestEmailTemplateRepository_VariablesDerived(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewEmailTemplateRepository(sqlDB)

	tpl := &models.EmailTemplate{
		Name:     "Demo Confirmation",
		Category: models.EmailCategoryConfirmation,
		Subject:  "Your demo on {demo_date}",
		Content:  "Hi {name}, see you on {demo_date}.",
		IsActive: true,
	}
	if err := repo.Create(tpl); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var vars []string
	if err := json.Unmarshal([]byte(tpl.Variables), &vars); err != nil {
		t.Fatalf("Variables is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(vars, []string{"demo_date", "name"}) {
		t.Errorf("Variables = %v", vars)
	}

	// Editing the content re-derives the variables column.
	tpl.Content = "Hi {name}, your rep is {rep_name}."
	tpl.Subject = "Demo booked"
	if err := repo.Update(tpl); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(tpl.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if err := json.Unmarshal([]byte(got.Variables), &vars); err != nil {
		t.Fatalf("Variables is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(vars, []string{"name", "rep_name"}) {
		t.Errorf("Variables after update = %v", vars)
	}
}

func TestEmailTemplateRepository_GetByName(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewEmailTemplateRepository(sqlDB)

	tpl := &models.EmailTemplate{
		Name:     "application_received",
		Category: models.EmailCategoryConfirmation,
		Subject:  "We got your application",
		Content:  "Thanks {name}!",
		IsActive: true,
	}
	if err := repo.Create(tpl); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByName("application_received")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if got == nil || got.ID != tpl.ID {
		t.Errorf("GetByName() = %+v", got)
	}

	missing, err := repo.GetByName("nope")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if missing != nil {
		t.Error("GetByName() should return nil for unknown name")
	}
}

func TestMessageTemplateRepository_ListFilter(t *testing.T) {
	sqlDB := setupTestDB(t)
	repo := NewMessageTemplateRepository(sqlDB)

	for _, tpl := range []*models.MessageTemplate{
		{Name: "Launch", Category: models.MessageCategoryAnnouncement, Subject: "s", Content: "c", IsActive: true},
		{Name: "Weekly", Category: models.MessageCategoryNewsletter, Subject: "s", Content: "c", IsActive: false},
	} {
		if err := repo.Create(tpl); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	active, err := repo.List(models.TemplateListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(active) != 1 || active[0].Name != "Launch" {
		t.Errorf("List(ActiveOnly) = %+v", active)
	}

	byCat, err := repo.List(models.TemplateListFilter{Category: models.MessageCategoryNewsletter})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(byCat) != 1 || byCat[0].Name != "Weekly" {
		t.Errorf("List(Category) = %+v", byCat)
	}
}
