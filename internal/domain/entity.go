package domain

import "fmt"

// EntityType identifies one filterable business concept. The set is closed
// and fixed at startup; records of each type live in their own collection.
type EntityType string

const (
	EntityApplicants     EntityType = "applicants"
	EntityVacancies      EntityType = "vacancies"
	EntityRecruiters     EntityType = "recruiters"
	EntityHiringManagers EntityType = "hiring_managers"
	EntityStages         EntityType = "stages"
	EntitySources        EntityType = "sources"
	EntityHires          EntityType = "hires"
	EntityRejections     EntityType = "rejections"
	EntityActions        EntityType = "actions"
	EntityDivisions      EntityType = "divisions"
)

// AllEntityTypes lists every known entity type in declaration order.
var AllEntityTypes = []EntityType{
	EntityApplicants,
	EntityVacancies,
	EntityRecruiters,
	EntityHiringManagers,
	EntityStages,
	EntitySources,
	EntityHires,
	EntityRejections,
	EntityActions,
	EntityDivisions,
}

var entityTypeSet = func() map[EntityType]struct{} {
	set := make(map[EntityType]struct{}, len(AllEntityTypes))
	for _, et := range AllEntityTypes {
		set[et] = struct{}{}
	}
	return set
}()

// ParseEntityType converts a raw string into an EntityType.
func ParseEntityType(raw string) (EntityType, error) {
	et := EntityType(raw)
	if _, ok := entityTypeSet[et]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntity, raw)
	}
	return et, nil
}

// IsEntityType reports whether raw names a known entity type.
func IsEntityType(raw string) bool {
	_, ok := entityTypeSet[EntityType(raw)]
	return ok
}

// Record is one business entity instance: a flat attribute map with no
// schema defined inside this subsystem. Records are owned by the caller
// for the duration of a filter call and are never mutated by the engine.
type Record map[string]any

// defaultFields maps each entity type to the field a leaf filter targets
// when none is named. State-like entities default to their state field;
// everything else defaults to the identifier. The table is explicit so the
// policy can be audited and overridden via configuration.
var defaultFields = map[EntityType]string{
	EntityApplicants: "status",
	EntityVacancies:  "state",
}

// DefaultField returns the field a filter on et targets when the leaf
// names no field of its own.
func DefaultField(et EntityType) string {
	if field, ok := defaultFields[et]; ok {
		return field
	}
	return "id"
}

// DefaultFieldTable returns a copy of the built-in default-field overrides.
// Entities absent from the table default to "id".
func DefaultFieldTable() map[EntityType]string {
	table := make(map[EntityType]string, len(defaultFields))
	for et, field := range defaultFields {
		table[et] = field
	}
	return table
}

// TimestampFields is the ordered fallback chain the period pass reads when
// locating a record's designated timestamp. The first present field wins.
var TimestampFields = []string{"created", "created_at", "date"}

// Timestamp returns the record's designated timestamp value, if any.
func (r Record) Timestamp() (any, bool) {
	for _, field := range TimestampFields {
		if v, ok := r[field]; ok {
			return v, true
		}
	}
	return nil, false
}
