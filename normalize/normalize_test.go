package normalize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/petindex/core"
	"github.com/poiesic/petindex/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Type,Name,Age,Breed1,Breed2,Gender,Color1,Color2,PhotoAmt,Description,PetID,RescuerID
1,Rex,2,307,0,2,3,0,,  Playful  ,P1,r1
2,,-1,265,0,9,8,0,2.7,Calm cat,P2,r2
2,Dupe,5,265,0,1,1,0,1,Should be dropped,P1,r3
x,Blank,abc,,,,,,NaN,,  ,r4
`

func newTestNormalizer(t *testing.T) (*Normalizer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed_csv", "train_processed.csv")
	n, err := NewNormalizer(WithSnapshotPath(path))
	require.NoError(t, err)
	return n, path
}

func TestNormalize_ExampleScenario(t *testing.T) {
	n, _ := newTestNormalizer(t)

	result, err := n.NormalizeReader(context.Background(), strings.NewReader(
		"PetID,Type,Gender,Color1,Age,PhotoAmt,Description\nP1,1,2,3,2,, Playful \n"))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	assert.Equal(t, core.CleanRecord{
		PetID:       "P1",
		Type:        "Dog",
		Name:        schema.Unknown,
		Age:         2,
		Breed:       schema.Unknown,
		Gender:      "Female",
		Color:       "Golden",
		Description: "Playful",
		PhotoAmount: 0,
	}, result.Records[0])
}

func TestNormalize_CleansProjectsAndDedups(t *testing.T) {
	n, snapshot := newTestNormalizer(t)

	result, err := n.NormalizeReader(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, result.RawRows)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Invalid)
	assert.Equal(t, snapshot, result.SnapshotPath)
	require.Len(t, result.Records, 2)

	first := result.Records[0]
	assert.Equal(t, "P1", first.PetID)
	assert.Equal(t, "Rex", first.Name, "first occurrence wins")
	assert.Equal(t, "Playful", first.Description)

	second := result.Records[1]
	assert.Equal(t, core.CleanRecord{
		PetID:       "P2",
		Type:        "Cat",
		Name:        schema.Unknown,
		Age:         -1,
		Breed:       "265",
		Gender:      schema.Unknown,
		Color:       schema.Unknown,
		Description: "Calm cat",
		PhotoAmount: 2,
	}, second)
}

func TestNormalize_DedupKeepsFirstPerPetID(t *testing.T) {
	var b strings.Builder
	b.WriteString("PetID,Name\n")
	for i := range 50 {
		fmt.Fprintf(&b, "id%d,name%d\n", i%7, i)
	}

	n, _ := newTestNormalizer(t)
	result, err := n.NormalizeReader(context.Background(), strings.NewReader(b.String()))
	require.NoError(t, err)

	require.Len(t, result.Records, 7)
	assert.Equal(t, 43, result.Duplicates)
	seen := map[string]bool{}
	for i, rec := range result.Records {
		assert.False(t, seen[rec.PetID], "identifier %s repeated", rec.PetID)
		seen[rec.PetID] = true
		assert.Equal(t, fmt.Sprintf("id%d", i), rec.PetID, "first-seen order")
		assert.Equal(t, fmt.Sprintf("name%d", i), rec.Name, "first occurrence kept")
	}
}

func TestNormalize_SchemaError(t *testing.T) {
	n, _ := newTestNormalizer(t)

	_, err := n.NormalizeReader(context.Background(), strings.NewReader("Type,Name\n1,Rex\n"))
	assert.ErrorIs(t, err, core.ErrSchema)
}

func TestNormalize_SourceReadError(t *testing.T) {
	n, _ := newTestNormalizer(t)

	_, err := n.Normalize(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, core.ErrSourceRead)

	_, err = n.NormalizeReader(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, core.ErrSourceRead)
}

func TestNormalize_BOMAndMissingOptionalColumns(t *testing.T) {
	n, _ := newTestNormalizer(t)

	result, err := n.NormalizeReader(context.Background(), strings.NewReader("\ufeffPetID,Name\nA1,Bella\nA2\n"))
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	assert.Equal(t, "A1", result.Records[0].PetID)
	assert.Equal(t, "Bella", result.Records[0].Name)
	assert.Equal(t, schema.Unknown, result.Records[0].Type)
	assert.Equal(t, schema.Unknown, result.Records[1].Name, "short row defaults")
	assert.Zero(t, result.Records[1].Age)
}

func TestNormalize_NoSnapshot(t *testing.T) {
	n, err := NewNormalizer(WithSnapshotPath(""))
	require.NoError(t, err)

	result, err := n.NormalizeReader(context.Background(), strings.NewReader("PetID\nA\n"))
	require.NoError(t, err)
	assert.Empty(t, result.SnapshotPath)
}

func TestNormalize_Canceled(t *testing.T) {
	n, _ := newTestNormalizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := n.NormalizeReader(ctx, strings.NewReader(sampleCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewNormalizer_NilLogger(t *testing.T) {
	_, err := NewNormalizer(WithLogger(nil))
	assert.ErrorIs(t, err, ErrLoggerRequired)
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"3", 3},
		{" 7 ", 7},
		{"2.9", 2},
		{"-2.9", -2},
		{"-4", -4},
		{"1e2", 100},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"inf", 0},
		{"1e30", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceInt(tt.in))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Rex", CleanText("  Rex\t"))
	assert.Equal(t, schema.Unknown, CleanText("   "))
	assert.Equal(t, schema.Unknown, CleanText("NaN"))
	assert.Equal(t, "Nana", CleanText("Nana"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snap.csv")
	records := []core.CleanRecord{
		{PetID: "P1", Type: "Dog", Name: "Rex, Jr.", Age: 2, Breed: "307", Gender: "Male", Color: "Black", Description: "Line one\nline \"two\"", PhotoAmount: 3},
		{PetID: "P2", Type: "Cat", Name: schema.Unknown, Age: -1, Breed: schema.Unknown, Gender: schema.Unknown, Color: schema.Unknown, Description: schema.Unknown},
	}

	require.NoError(t, WriteSnapshot(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), strings.Join(schema.RetainedColumns, ",")+"\n"))

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestWriteSnapshot_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.csv")
	require.NoError(t, WriteSnapshot(path, []core.CleanRecord{{PetID: "old"}, {PetID: "older"}}))
	require.NoError(t, WriteSnapshot(path, []core.CleanRecord{{PetID: "new"}}))

	loaded, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].PetID)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestReadSnapshot_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadSnapshot(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, core.ErrSourceRead)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("PetID,Name\nA,B\n"), 0o644))
	_, err = ReadSnapshot(bad)
	assert.ErrorIs(t, err, core.ErrSchema)
}
