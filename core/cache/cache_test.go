package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := NewCache()
	c.Set("foo", 123, 0, nil)
	v, ok := c.Get("foo")
	if !ok {
		t.Fatal("foo not found")
	}
	if v.(int) != 123 {
		t.Errorf("value = %v, want 123", v)
	}
}

func TestGetMissing(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestExpiration(t *testing.T) {
	c := NewCache()
	c.Set("ttl", "x", 1, nil)
	if _, ok := c.Get("ttl"); !ok {
		t.Fatal("value expired too early")
	}
	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get("ttl"); ok {
		t.Error("value did not expire")
	}
}

func TestCompositeKeys(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"pricematrix", "slavic", "lux", 50, 7}, 12.5, 0, nil)
	v, ok := c.GetN("pricematrix", "slavic", "lux", 50, 7)
	if !ok {
		t.Fatal("composite key not found")
	}
	if v.(float64) != 12.5 {
		t.Errorf("value = %v, want 12.5", v)
	}
	c.DeleteN("pricematrix", "slavic", "lux", 50, 7)
	if _, ok := c.GetN("pricematrix", "slavic", "lux", 50, 7); ok {
		t.Error("composite key not deleted")
	}
}

func TestDeleteByTag(t *testing.T) {
	c := NewCache()
	c.Set("a", 1, 0, []string{"pricing"})
	c.Set("b", 2, 0, []string{"pricing"})
	c.Set("c", 3, 0, []string{"other"})

	keys := c.GetKeysByTag("pricing")
	if len(keys) != 2 {
		t.Fatalf("keys by tag = %d, want 2", len(keys))
	}

	c.DeleteByTag("pricing")
	if _, ok := c.Get("a"); ok {
		t.Error("a not invalidated")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("b not invalidated")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should survive")
	}
}
