package schema

// Source column names.
const (
	ColumnPetID       = "PetID"
	ColumnType        = "Type"
	ColumnName        = "Name"
	ColumnAge         = "Age"
	ColumnBreed       = "Breed1"
	ColumnGender      = "Gender"
	ColumnColor       = "Color1"
	ColumnDescription = "Description"
	ColumnPhotoAmount = "PhotoAmt"
)

// RetainedColumns is the allow-list of source columns kept after projection.
// It is also the header of the cleaned snapshot, in this order.
var RetainedColumns = []string{
	ColumnPetID,
	ColumnType,
	ColumnName,
	ColumnAge,
	ColumnBreed,
	ColumnGender,
	ColumnColor,
	ColumnDescription,
	ColumnPhotoAmount,
}

// RequiredColumns must be present in the source header. The other retained
// columns are optional and default when absent.
var RequiredColumns = []string{
	ColumnPetID,
}

// IsRetained reports whether column is in the allow-list.
func IsRetained(column string) bool {
	for _, c := range RetainedColumns {
		if c == column {
			return true
		}
	}
	return false
}

// ImageFileName returns the file name of the primary photo for a pet.
func ImageFileName(petID string) string {
	return petID + "-1.jpg"
}
