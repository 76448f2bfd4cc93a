package matcher

import (
	"sort"

	"dolce-almacen/internal/models"
)

// Index is the request-scoped lookup structure the engine resolves against.
// It is built once at the start of a run from the store's committed items and
// aliases, and extended in place when the orchestrator creates items or
// aliases mid-run so later rows in the same batch resolve consistently.
type Index struct {
	// itemsByKey maps a normalized catalog name to its item.
	itemsByKey map[string]*models.CanonicalItem

	// aliasTargets maps a normalized alias key to the aliased item.
	aliasTargets map[string]*models.CanonicalItem

	// keys holds the catalog's normalized names, sorted, for the fuzzy
	// scan. Sorted order makes tie-breaking deterministic.
	keys []string
}

// NewIndex builds the lookup index from a catalog snapshot. Aliases whose
// target item is missing from the snapshot are skipped.
func NewIndex(items []*models.CanonicalItem, aliases []*models.ItemAlias) *Index {
	idx := &Index{
		itemsByKey:   make(map[string]*models.CanonicalItem, len(items)),
		aliasTargets: make(map[string]*models.CanonicalItem, len(aliases)),
	}

	byID := make(map[int64]*models.CanonicalItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
		if _, exists := idx.itemsByKey[item.NormalizedName]; !exists {
			idx.itemsByKey[item.NormalizedName] = item
			idx.keys = append(idx.keys, item.NormalizedName)
		}
	}
	sort.Strings(idx.keys)

	for _, alias := range aliases {
		if target, ok := byID[alias.ItemID]; ok {
			idx.aliasTargets[alias.NormalizedKey] = target
		}
	}

	return idx
}

// Size returns the number of distinct catalog keys in the index.
func (idx *Index) Size() int {
	return len(idx.keys)
}

// ItemFor returns the catalog item whose normalized name is key, if any.
func (idx *Index) ItemFor(key string) (*models.CanonicalItem, bool) {
	item, ok := idx.itemsByKey[key]
	return item, ok
}

// AliasFor returns the item a recorded alias resolves key to, if any.
func (idx *Index) AliasFor(key string) (*models.CanonicalItem, bool) {
	item, ok := idx.aliasTargets[key]
	return item, ok
}

// Keys returns the sorted normalized catalog names used by the fuzzy scan.
func (idx *Index) Keys() []string {
	return idx.keys
}

// AddItem registers an item created mid-run so later rows in the same batch
// resolve to it.
func (idx *Index) AddItem(item *models.CanonicalItem) {
	if _, exists := idx.itemsByKey[item.NormalizedName]; exists {
		return
	}
	idx.itemsByKey[item.NormalizedName] = item

	pos := sort.SearchStrings(idx.keys, item.NormalizedName)
	idx.keys = append(idx.keys, "")
	copy(idx.keys[pos+1:], idx.keys[pos:])
	idx.keys[pos] = item.NormalizedName
}

// AddAlias registers an alias created mid-run.
func (idx *Index) AddAlias(key string, target *models.CanonicalItem) {
	idx.aliasTargets[key] = target
}
