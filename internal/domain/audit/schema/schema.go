// Package schema infers canonical semantic roles from raw column names.
package schema

import (
	"strings"

	"github.com/FACorreiaa/je-audit/internal/domain/audit/table"
	"github.com/FACorreiaa/je-audit/internal/domain/common"
)

// Role is a canonical semantic meaning a raw column may be inferred to carry.
type Role string

const (
	RoleDebit       Role = "debit"
	RoleCredit      Role = "credit"
	RoleAmount      Role = "amount"
	RoleDate        Role = "posting_date"
	RoleAccount     Role = "account"
	RoleDescription Role = "description"
	RoleJEID        Role = "je_id"
	RoleCreatedBy   Role = "created_by"
	RolePostedBy    Role = "posted_by"
	RoleCostCenter  Role = "cost_center"
	RoleProject     Role = "project"
)

// TextRoles lists the optional string fields of the canonical schema in the
// order they appear in cleaned rows and serialized payloads.
var TextRoles = []Role{
	RoleAccount, RoleDescription, RoleJEID,
	RoleCreatedBy, RolePostedBy, RoleCostCenter, RoleProject,
}

// roleTokens maps each role to the substrings that identify a source column.
// A single ordered table keeps the substring-scan logic in one place instead
// of scattering it across pipeline stages.
var roleTokens = []struct {
	role   Role
	tokens []string
}{
	{RoleDebit, []string{"debit"}},
	{RoleCredit, []string{"credit"}},
	{RoleAmount, []string{"amount", "amt"}},
	{RoleDate, []string{"date", "effective", "posted"}},
	{RoleAccount, []string{"account"}},
	{RoleDescription, []string{"description"}},
	{RoleJEID, []string{"je_id"}},
	{RoleCreatedBy, []string{"created_by"}},
	{RolePostedBy, []string{"posted_by"}},
	{RoleCostCenter, []string{"cost_center"}},
	{RoleProject, []string{"project"}},
}

// Mapping records which source column was selected for each resolved role.
type Mapping struct {
	columns map[Role]string
}

// Has reports whether a source column was found for the role.
func (m Mapping) Has(r Role) bool {
	_, ok := m.columns[r]
	return ok
}

// Source returns the source column name selected for the role.
func (m Mapping) Source(r Role) (string, bool) {
	name, ok := m.columns[r]
	return name, ok
}

// DoubleEntry reports whether the debit/credit pair resolved. The pair takes
// priority over a single amount column even when both are present.
func (m Mapping) DoubleEntry() bool {
	return m.Has(RoleDebit) && m.Has(RoleCredit)
}

// Resolve selects at most one source column per role by case-insensitive
// substring match. When several columns match a role, the first one in
// original column order wins. It fails only when no amount-bearing column
// (debit+credit pair or single amount) can be found.
func Resolve(t *table.RawTable) (Mapping, error) {
	lowered := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		lowered[i] = strings.ToLower(h)
	}

	columns := make(map[Role]string, len(roleTokens))
	for _, entry := range roleTokens {
		for i, name := range lowered {
			if containsAny(name, entry.tokens) {
				columns[entry.role] = t.Headers[i]
				break
			}
		}
	}

	m := Mapping{columns: columns}
	if !m.DoubleEntry() && !m.Has(RoleAmount) {
		return Mapping{}, common.ErrNoAmountColumn
	}
	return m, nil
}

func containsAny(name string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}
