package schema

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		decode func(string) string
		code   string
		want   string
	}{
		{"type dog", DecodeType, "1", "Dog"},
		{"type cat", DecodeType, "2", "Cat"},
		{"type float code", DecodeType, "2.0", "Cat"},
		{"type padded", DecodeType, " 1 ", "Dog"},
		{"type out of table", DecodeType, "3", Unknown},
		{"type empty", DecodeType, "", Unknown},
		{"type text", DecodeType, "dog", Unknown},
		{"type fractional", DecodeType, "1.5", Unknown},
		{"type negative", DecodeType, "-1", Unknown},
		{"type huge", DecodeType, "1e300", Unknown},
		{"type nan", DecodeType, "NaN", Unknown},
		{"gender female", DecodeGender, "2", "Female"},
		{"gender mixed", DecodeGender, "3", "Mixed"},
		{"gender zero", DecodeGender, "0", Unknown},
		{"color golden", DecodeColor, "3", "Golden"},
		{"color white", DecodeColor, "7", "White"},
		{"color out of table", DecodeColor, "8", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decode(tt.code))
		})
	}
}

func TestDecode_Totality(t *testing.T) {
	for code := -50; code <= 50; code++ {
		s := strconv.Itoa(code)
		for _, decode := range []func(string) string{DecodeType, DecodeGender, DecodeColor} {
			label := decode(s)
			assert.NotEmpty(t, label, "code %d", code)
		}
	}
}

func TestRetainedColumns(t *testing.T) {
	assert.Equal(t, []string{"PetID", "Type", "Name", "Age", "Breed1", "Gender", "Color1", "Description", "PhotoAmt"}, RetainedColumns)
	assert.True(t, IsRetained("Breed1"))
	assert.False(t, IsRetained("RescuerID"))
	for _, c := range RequiredColumns {
		assert.True(t, IsRetained(c), "required column %s must be retained", c)
	}
}

func TestImageFileName(t *testing.T) {
	assert.Equal(t, "86e1089a3-1.jpg", ImageFileName("86e1089a3"))
}

func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping()
	require.NoError(t, m.Validate())

	assert.Equal(t, 384, m.VectorDims())

	vec, ok := m.VectorField()
	require.True(t, ok)
	assert.Equal(t, FieldEmbedding, vec.Name)
	assert.Equal(t, SimilarityCosine, vec.Similarity)
	assert.True(t, vec.Indexed)

	f, ok := m.Field(FieldPetID)
	require.True(t, ok)
	assert.Equal(t, FieldKeyword, f.Type)

	f, ok = m.Field(FieldDescription)
	require.True(t, ok)
	assert.Equal(t, FieldText, f.Type)

	f, ok = m.Field(FieldPhotoAmount)
	require.True(t, ok)
	assert.Equal(t, FieldInteger, f.Type)

	_, ok = m.Field("missing")
	assert.False(t, ok)
}

func TestDefaultMapping_IsFresh(t *testing.T) {
	m1 := DefaultMapping()
	m1.Fields[0].Name = "mutated"

	m2 := DefaultMapping()
	assert.Equal(t, FieldPetID, m2.Fields[0].Name)
}

func TestMappingValidate(t *testing.T) {
	tests := []struct {
		name    string
		mapping *IndexMapping
	}{
		{"nil mapping", nil},
		{"no fields", &IndexMapping{}},
		{"no vector", &IndexMapping{Fields: []Field{{Name: "a", Type: FieldKeyword}}}},
		{"zero dims", &IndexMapping{Fields: []Field{{Name: "v", Type: FieldDenseVector}}}},
		{"two vectors", &IndexMapping{Fields: []Field{
			{Name: "v1", Type: FieldDenseVector, Dims: 2},
			{Name: "v2", Type: FieldDenseVector, Dims: 2},
		}}},
		{"duplicate", &IndexMapping{Fields: []Field{
			{Name: "a", Type: FieldKeyword},
			{Name: "a", Type: FieldText},
			{Name: "v", Type: FieldDenseVector, Dims: 2},
		}}},
		{"bad type", &IndexMapping{Fields: []Field{
			{Name: "a", Type: "geo_point"},
			{Name: "v", Type: FieldDenseVector, Dims: 2},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.mapping.Validate())
		})
	}
}
