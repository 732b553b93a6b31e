package modules

import (
	"errors"
	"fmt"
)

// Key identifies a feature module in the catalog.
type Key string

const (
	KeyTeams      Key = "teams"
	KeyPlayers    Key = "players"
	KeyTeachers   Key = "teachers"
	KeyStudents   Key = "students"
	KeyClasses    Key = "classes"
	KeyAttendance Key = "attendance"
	KeyScheduling Key = "scheduling"
	KeyReports    Key = "reports"
	KeyTheming    Key = "theming"
)

// Module is a catalog entry. Core modules are always on and cannot be
// disabled. Requires lists direct prerequisites only.
type Module struct {
	Key         Key    `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsCore      bool   `json:"is_core"`
	Requires    []Key  `json:"requires"`
}

// Catalog is the static module catalog. Built once, read-only for the
// process lifetime.
var Catalog = map[Key]Module{
	KeyTeams: {
		Key: KeyTeams, Name: "Teams",
		Description: "Team rosters and staff",
		IsCore:      true,
	},
	KeyPlayers: {
		Key: KeyPlayers, Name: "Players",
		Description: "Player profiles and registrations",
		Requires:    []Key{KeyTeams},
	},
	KeyTeachers: {
		Key: KeyTeachers, Name: "Teachers",
		Description: "Teacher accounts and assignments",
	},
	KeyStudents: {
		Key: KeyStudents, Name: "Students",
		Description: "Student accounts and enrollment",
	},
	KeyClasses: {
		Key: KeyClasses, Name: "Classes",
		Description: "Class groups and lesson plans",
		Requires:    []Key{KeyTeachers},
	},
	KeyAttendance: {
		Key: KeyAttendance, Name: "Attendance",
		Description: "Attendance tracking for classes and sessions",
		Requires:    []Key{KeyClasses},
	},
	KeyScheduling: {
		Key: KeyScheduling, Name: "Scheduling",
		Description: "Calendars, sessions and bookings",
		Requires:    []Key{KeyTeams},
	},
	KeyReports: {
		Key: KeyReports, Name: "Reports",
		Description: "Attendance and participation reporting",
		Requires:    []Key{KeyAttendance},
	},
	KeyTheming: {
		Key: KeyTheming, Name: "Theming",
		Description: "Custom branding for the organization",
	},
}

var (
	ErrUnknownModule = errors.New("unknown module")
	ErrCoreModule    = errors.New("core modules cannot be disabled")
	ErrNotConfigured = errors.New("module not configured for organization")
)

// Lookup returns the catalog entry for key.
func Lookup(key Key) (Module, error) {
	mod, ok := Catalog[key]
	if !ok {
		return Module{}, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}
	return mod, nil
}

// ValidateCatalog checks catalog invariants at startup: every listed
// requirement exists and the requires graph is acyclic. Runtime checks
// only walk direct requirements, so this is what keeps a data-entry
// cycle from ever entering the system.
func ValidateCatalog() error {
	for key, mod := range Catalog {
		for _, req := range mod.Requires {
			if _, ok := Catalog[req]; !ok {
				return fmt.Errorf("module %s requires unknown module %s", key, req)
			}
			if req == key {
				return fmt.Errorf("module %s requires itself", key)
			}
		}
	}

	// Depth-first walk with a visited set to detect longer cycles.
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[Key]int, len(Catalog))
	var visit func(Key) error
	visit = func(key Key) error {
		switch state[key] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("module requirement cycle involving %s", key)
		}
		state[key] = visiting
		for _, req := range Catalog[key].Requires {
			if err := visit(req); err != nil {
				return err
			}
		}
		state[key] = done
		return nil
	}
	for key := range Catalog {
		if err := visit(key); err != nil {
			return err
		}
	}
	return nil
}
