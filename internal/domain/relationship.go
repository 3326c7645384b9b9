package domain

import "fmt"

// RelationshipEntry declares that a record of From carries a field named
// JoinField holding the identifier of a To record. Relationships are
// single-hop: the registry never chains entries.
type RelationshipEntry struct {
	From      EntityType
	To        EntityType
	JoinField string
}

// RelationshipRegistry is a fixed lookup table of cross-entity join fields,
// populated once at construction and read-only afterwards. It is safe for
// unsynchronized concurrent reads from any number of callers.
type RelationshipRegistry struct {
	joins map[EntityType]map[EntityType]string
}

// builtinRelationships mirrors the relationships the surrounding system
// actually carries on its records.
var builtinRelationships = []RelationshipEntry{
	{EntityApplicants, EntityRecruiters, "recruiter_id"},
	{EntityApplicants, EntityVacancies, "vacancy_id"},
	{EntityApplicants, EntitySources, "source_id"},
	{EntityApplicants, EntityStages, "stage_id"},
	{EntityVacancies, EntityRecruiters, "recruiter_id"},
	{EntityVacancies, EntityHiringManagers, "hiring_manager_id"},
	{EntityVacancies, EntityDivisions, "division_id"},
	{EntityHires, EntityRecruiters, "recruiter_id"},
	{EntityHires, EntitySources, "source_id"},
	{EntityHires, EntityVacancies, "vacancy_id"},
}

// NewRelationshipRegistry builds the registry from the built-in table.
func NewRelationshipRegistry() RelationshipRegistry {
	return NewRelationshipRegistryFromEntries(builtinRelationships)
}

// NewRelationshipRegistryFromEntries builds a registry from an explicit set
// of entries. Later entries for the same (from, to) pair win, which lets
// configuration overlay the built-ins.
func NewRelationshipRegistryFromEntries(entries []RelationshipEntry) RelationshipRegistry {
	joins := make(map[EntityType]map[EntityType]string)
	for _, entry := range entries {
		perTarget, ok := joins[entry.From]
		if !ok {
			perTarget = make(map[EntityType]string)
			joins[entry.From] = perTarget
		}
		perTarget[entry.To] = entry.JoinField
	}
	return RelationshipRegistry{joins: joins}
}

// BuiltinRelationships returns a copy of the built-in relationship table.
func BuiltinRelationships() []RelationshipEntry {
	entries := make([]RelationshipEntry, len(builtinRelationships))
	copy(entries, builtinRelationships)
	return entries
}

// JoinField returns the field on a from-record that references a to-record.
// A missing entry is an explicit failure, not a silent skip: it tells the
// caller the filter is unsatisfiable by design rather than merely unmatched.
func (r RelationshipRegistry) JoinField(from, to EntityType) (string, error) {
	if perTarget, ok := r.joins[from]; ok {
		if field, ok := perTarget[to]; ok {
			return field, nil
		}
	}
	return "", fmt.Errorf("%w: %s -> %s", ErrNoRelationshipDefined, from, to)
}

// Related reports whether a direct relationship from -> to exists.
func (r RelationshipRegistry) Related(from, to EntityType) bool {
	_, err := r.JoinField(from, to)
	return err == nil
}
