package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Lookup names one way of reading products through the effective-barcode
// view. Every read path (search, override responses, stock-take and
// reorder enrichment) goes through effectiveProducts so the
// override-over-catalog precedence is defined exactly once.
type Lookup int

const (
	LookupAlias          Lookup = iota // barcode_aliases.barcode = v
	LookupOverride                     // barcode_overrides.barcode = v
	LookupCatalogBarcode               // products.catalog_barcode = v
	LookupProductCode                  // products.product_code = v
	LookupDescription                  // description contains v, case-insensitive
	LookupCode                         // product or manufacturer code, exact or contains
	LookupBarcodeLike                  // effective barcode contains v
)

var lookupNames = [...]string{"alias", "override", "catalog_barcode", "product_code", "description", "code", "barcode_like"}

func (l Lookup) String() string {
	if l < 0 || int(l) >= len(lookupNames) {
		return "unknown"
	}
	return lookupNames[l]
}

const effectiveColumns = `p.product_code, p.full_description, p.retail_price,
	p.manufacturers_product_code, p.catalog_barcode,
	o.barcode AS override_barcode,
	COALESCE(o.barcode, p.catalog_barcode) AS effective_barcode`

// effectiveProducts is the single query object for the effective barcode:
// override barcode when present, else the catalog barcode.
func effectiveProducts(db *gorm.DB) *gorm.DB {
	return db.Table("products AS p").
		Select(effectiveColumns).
		Joins("LEFT JOIN barcode_overrides o ON o.product_code = p.product_code")
}

// applyLookup narrows q (built by effectiveProducts) for the given lookup.
func applyLookup(q *gorm.DB, l Lookup, v string) *gorm.DB {
	switch l {
	case LookupAlias:
		return q.Joins("JOIN barcode_aliases a ON a.product_code = p.product_code").
			Where("a.barcode = ?", v)
	case LookupOverride:
		return q.Where("o.barcode = ?", v)
	case LookupCatalogBarcode:
		return q.Where("p.catalog_barcode = ?", v)
	case LookupProductCode:
		return q.Where("p.product_code = ?", v)
	case LookupDescription:
		return q.Where(`LOWER(p.full_description) LIKE LOWER(?) ESCAPE '\'`, containsPattern(v)).
			Order("p.full_description ASC")
	case LookupCode:
		like := containsPattern(v)
		return q.Where(`p.product_code = ? OR p.manufacturers_product_code = ?
			OR p.product_code LIKE ? ESCAPE '\' OR p.manufacturers_product_code LIKE ? ESCAPE '\'`,
			v, v, like, like).
			Order("p.full_description ASC")
	case LookupBarcodeLike:
		return q.Where(`COALESCE(o.barcode, p.catalog_barcode) LIKE ? ESCAPE '\'`, containsPattern(v)).
			Order("p.full_description ASC")
	}
	return q.Where("1 = 0")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(v string) string {
	return "%" + likeEscaper.Replace(v) + "%"
}
