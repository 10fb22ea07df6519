package table

// StorageType is the declared storage representation of a column, named after
// the dtypes a dataframe reader would assign.
type StorageType string

const (
	Int64    StorageType = "int64"
	Float64  StorageType = "float64"
	Bool     StorageType = "bool"
	DateTime StorageType = "datetime64"
	Duration StorageType = "timedelta"
	String   StorageType = "string"
	Object   StorageType = "object"
	Category StorageType = "category"
)

// Kind is the semantic meaning of a column's data. Downstream consumers treat
// Kind, not StorageType, as ground truth.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindBoolean     Kind = "boolean"
	KindDateTime    Kind = "datetime"
	KindCategorical Kind = "categorical"
)

// Classify maps a storage type to its semantic kind. Unknown storage types are
// categorical.
func Classify(st StorageType) Kind {
	switch st {
	case Int64, Float64:
		return KindNumeric
	case Bool:
		return KindBoolean
	case DateTime, Duration:
		return KindDateTime
	default:
		return KindCategorical
	}
}

// IsNumeric reports whether st is an integer or floating-point storage type.
func (st StorageType) IsNumeric() bool { return st == Int64 || st == Float64 }
