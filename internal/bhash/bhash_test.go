package bhash

import "testing"

func TestConfigHashKeyOrderStable(t *testing.T) {
	a := map[string]any{"title": "My Site", "baseurl": "/"}
	b := map[string]any{"baseurl": "/", "title": "My Site"}

	h1, err := ConfigHash(a)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := ConfigHash(b)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("config hash differs by key order: %s != %s", h1, h2)
	}
}

func TestConfigHashIgnoresUnderscoreKeys(t *testing.T) {
	base := map[string]any{"title": "My Site"}
	withPrivate := map[string]any{"title": "My Site", "_site": "runtime-ref", "_cache": 123}

	h1, err := ConfigHash(base)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := ConfigHash(withPrivate)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Errorf("config hash changed when adding underscore-prefixed keys: %s != %s", h1, h2)
	}
}

func TestConfigHashChangesOnRealChange(t *testing.T) {
	h1, _ := ConfigHash(map[string]any{"title": "A"})
	h2, _ := ConfigHash(map[string]any{"title": "B"})
	if h1 == h2 {
		t.Error("expected config hash to change when a public key changes")
	}
}

func TestContentLength(t *testing.T) {
	h := Content("hello")
	if len(h) != Truncate {
		t.Errorf("expected %d-char hash, got %d: %s", Truncate, len(h), h)
	}
}
