package modules

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	t.Run("known module", func(t *testing.T) {
		mod, err := Lookup(KeyAttendance)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if mod.Key != KeyAttendance {
			t.Errorf("key = %s, want attendance", mod.Key)
		}
	})

	t.Run("unknown module", func(t *testing.T) {
		_, err := Lookup(Key("billing"))
		if !errors.Is(err, ErrUnknownModule) {
			t.Errorf("Lookup() error = %v, want ErrUnknownModule", err)
		}
	})
}

func TestValidateCatalog(t *testing.T) {
	if err := ValidateCatalog(); err != nil {
		t.Errorf("ValidateCatalog() error = %v", err)
	}
}

func TestValidateCatalog_DetectsBrokenGraphs(t *testing.T) {
	// The production catalog is immutable, so broken graphs are staged by
	// swapping it out and restoring it afterwards.
	original := Catalog
	defer func() { Catalog = original }()

	t.Run("unknown requirement", func(t *testing.T) {
		Catalog = map[Key]Module{
			KeyClasses: {Key: KeyClasses, Requires: []Key{Key("ghosts")}},
		}
		if err := ValidateCatalog(); err == nil {
			t.Error("ValidateCatalog() accepted an unknown requirement")
		}
	})

	t.Run("self requirement", func(t *testing.T) {
		Catalog = map[Key]Module{
			KeyClasses: {Key: KeyClasses, Requires: []Key{KeyClasses}},
		}
		if err := ValidateCatalog(); err == nil {
			t.Error("ValidateCatalog() accepted a self requirement")
		}
	})

	t.Run("two-step cycle", func(t *testing.T) {
		Catalog = map[Key]Module{
			KeyClasses:    {Key: KeyClasses, Requires: []Key{KeyAttendance}},
			KeyAttendance: {Key: KeyAttendance, Requires: []Key{KeyClasses}},
		}
		if err := ValidateCatalog(); err == nil {
			t.Error("ValidateCatalog() accepted a cycle")
		}
	})
}

func TestCatalog_CoreModules(t *testing.T) {
	if !Catalog[KeyTeams].IsCore {
		t.Error("teams must be core")
	}
	for key, mod := range Catalog {
		if mod.IsCore && len(mod.Requires) > 0 {
			t.Errorf("core module %s must not have prerequisites", key)
		}
	}
}
