package constraint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Identity recipes. Atomic ids hash the (domain, field, operator, value)
// tuple with the value in canonical encoding, so parsing the same
// definition twice yields the same id. Conditional and composite ids
// are derived from their children's ids, so every node in a tree has a
// content-stable identity.

func shortHash(data string, n int) string {
	sum := sha256.Sum256([]byte(data))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:n]
}

// AtomicID computes the content-derived id for an atomic constraint.
// Format: "C_" + first 8 uppercase hex chars of
// SHA-256("domain:field:operator:canonical(value)").
//
// Values of different types that render identically in canonical form
// share an id: the id is a dedup/audit key, not a uniqueness guarantee.
func AtomicID(domain Domain, field string, op Operator, value Value) string {
	data := fmt.Sprintf("%s:%s:%s:%s", domain, field, op, MustCanonical(value))
	return "C_" + shortHash(data, 8)
}

// ConditionalID computes the content-derived id for a conditional.
func ConditionalID(c *Conditional) string {
	elseID := ""
	if c.Else != nil {
		elseID = c.Else.ID()
	}
	data := fmt.Sprintf("if:%s:then:%s:else:%s", c.Condition.ID(), c.Then.ID(), elseID)
	return "COND_" + shortHash(data, 8)
}

// CompositeID computes the content-derived id for a composite.
func CompositeID(c *Composite) string {
	ids := make([]string, len(c.Children))
	for i, child := range c.Children {
		ids[i] = child.ID()
	}
	data := string(c.Logic) + ":" + strings.Join(ids, ":")
	return "COMP_" + shortHash(data, 8)
}

// Fingerprint computes the audit fingerprint of a verdict: the first 16
// uppercase hex chars of SHA-256("passed:constraint_id:timestamp") with
// the timestamp in epoch milliseconds.
//
// The timestamp makes fingerprints time-dependent: identical inputs
// evaluated at different times fingerprint differently. Collaborators
// rely on that time-ordering, so do not make this content-only.
func Fingerprint(passed bool, constraintID string, timestampMillis int64) string {
	data := fmt.Sprintf("%t:%s:%d", passed, constraintID, timestampMillis)
	return shortHash(data, 16)
}
