package catalog

import (
	"testing"

	"github.com/fairyhunter13/vending-machine-service/internal/model"
)

func TestSaveAssignsID(t *testing.T) {
	s := New()
	p, err := s.Save(model.Product{Name: "Water", Price: 50, Quantity: 5})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected assigned id")
	}
	got, ok, _ := s.FindByID(p.ID)
	if !ok || got.Name != "Water" {
		t.Fatalf("unexpected: %+v ok=%v", got, ok)
	}
}

func TestSaveKeepsExistingID(t *testing.T) {
	s := New()
	p, _ := s.Save(model.Product{Name: "Tea", Price: 110, Quantity: 3})
	p.Quantity = 2
	again, _ := s.Save(p)
	if again.ID != p.ID {
		t.Fatalf("expected stable id, got %s vs %s", again.ID, p.ID)
	}
	got, _, _ := s.FindByID(p.ID)
	if got.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", got.Quantity)
	}
}

func TestFindByName(t *testing.T) {
	s := New()
	_, _ = s.Save(model.Product{Name: "Mocca", Price: 165, Quantity: 1})
	got, ok, _ := s.FindByName("Mocca")
	if !ok || got.Price != 165 {
		t.Fatalf("unexpected: %+v ok=%v", got, ok)
	}
	_, ok, _ = s.FindByName("Espresso")
	if ok {
		t.Fatalf("expected not found")
	}
}

func TestDeleteByID(t *testing.T) {
	s := New()
	p, _ := s.Save(model.Product{Name: "Coffee", Price: 235, Quantity: 4})
	if err := s.DeleteByID(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.FindByID(p.ID); ok {
		t.Fatalf("expected deleted")
	}
}

func TestFindAllOrderedByID(t *testing.T) {
	s := New()
	for _, name := range []string{"Water", "Tea", "Coffee", "Cappuccino"} {
		_, _ = s.Save(model.Product{Name: name, Quantity: 1})
	}
	all, err := s.FindAll()
	if err != nil {
		t.Fatalf("findall: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 products, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("expected id-ordered listing")
		}
	}
}
