package constants

// Column names as they appear in page fragments, the merged dataset and the orders table.
const (
	ColOrderNumber   = "OrderNumber"
	ColStyleCode     = "StyleCode"
	ColDescription   = "Description"
	ColColorCode     = "ColorCode"
	ColColorName     = "ColorName"
	ColQuantity      = "Quantity"
	ColPrice         = "Price"
	ColTotal         = "Total"
	ColFabric        = "Fabric"
	ColComposition   = "Composition"
	ColSizeXS        = "SizeXS"
	ColSizeS         = "SizeS"
	ColSizeM         = "SizeM"
	ColSizeL         = "SizeL"
	ColSizeXL        = "SizeXL"
	ColSizeXXL       = "SizeXXL"
	ColIssueDate     = "IssueDate"
	ColPickupDate    = "PickupDate"
	ColOwnershipDate = "OwnershipDate"
	ColSeason        = "Season"
	ColLine          = "Line"

	// ColSourceFile tags merged rows with the page they came from. It never reaches the store.
	ColSourceFile = "SourceFile"
)

// CanonicalColumns is the persisted and exported column order.
var CanonicalColumns = []string{
	ColOrderNumber, ColStyleCode, ColDescription, ColColorCode, ColColorName,
	ColQuantity, ColPrice, ColTotal, ColFabric, ColComposition,
	ColSizeXS, ColSizeS, ColSizeM, ColSizeL, ColSizeXL, ColSizeXXL,
	ColIssueDate, ColPickupDate, ColOwnershipDate, ColSeason, ColLine,
}

// NumericColumns are coerced to numbers during page extraction.
var NumericColumns = []string{
	ColQuantity, ColPrice, ColTotal,
	ColSizeXS, ColSizeS, ColSizeM, ColSizeL, ColSizeXL, ColSizeXXL,
}

// DocumentColumns hold one value per document; the merger broadcasts them to every row.
var DocumentColumns = []string{
	ColIssueDate, ColPickupDate, ColOwnershipDate, ColSeason, ColOrderNumber,
}

// KeyColumns form the composite business key of an order line.
var KeyColumns = []string{ColOrderNumber, ColStyleCode, ColColorCode, ColQuantity}

// MutableColumns are the only columns rewritten when an upsert hits an existing key.
var MutableColumns = []string{ColPrice, ColTotal, ColColorName, ColFabric, ColSeason}

// CurrencyColumns are money columns; text exports show at least two decimals.
var CurrencyColumns = []string{ColPrice, ColTotal}

// DefaultArtifactColumns are dropped by the merger. A trailing '*' matches by prefix.
var DefaultArtifactColumns = []string{ColSourceFile, "Unnamed:*"}

// RuleArtifact is the separator remnant that marks a merged row as noise.
const RuleArtifact = "---"

// IsNumericColumn reports whether col is coerced to a number at any stage.
func IsNumericColumn(col string) bool {
	if col == ColLine {
		return true
	}
	for _, c := range NumericColumns {
		if c == col {
			return true
		}
	}
	return false
}

// IsCanonicalColumn reports whether col belongs to the canonical column set.
func IsCanonicalColumn(col string) bool {
	for _, c := range CanonicalColumns {
		if c == col {
			return true
		}
	}
	return false
}

// IsCurrencyColumn reports whether col is a money column.
func IsCurrencyColumn(col string) bool {
	for _, c := range CurrencyColumns {
		if c == col {
			return true
		}
	}
	return false
}
