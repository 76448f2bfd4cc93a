package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"dolce-almacen/internal/models"
)

// quantityPrecision fixes the decimal places quantities are formatted to
// inside the fingerprint, so "3", "3.0" and "3.000" fingerprint identically.
const quantityPrecision = 3

// movementFingerprint derives the content fingerprint that makes movement
// application idempotent. The tuple deliberately includes the matched
// normalized name rather than the raw cell text: if the catalog's resolution
// of a name changes between runs (a new alias, say), the same physical row
// fingerprints differently and is re-applied. That is accepted behavior, not
// a bug to fix here.
func movementFingerprint(row *models.MovementRow, matchedKey string) string {
	payload := strings.Join([]string{
		row.Source.String(),
		row.Locator,
		row.Kind.String(),
		row.Timestamp.UTC().Format(time.RFC3339),
		matchedKey,
		row.Quantity.StringFixed(quantityPrecision),
		row.Reference,
	}, "|")

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
