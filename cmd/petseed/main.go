package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/poiesic/petindex/schema"
)

var descriptions = []string{
	"Playful puppy who loves chasing balls in the garden.",
	"Shy kitten, warms up slowly but purrs like an engine once comfortable.",
	"Calm senior dog looking for a quiet home to retire in.",
	"Energetic terrier mix, needs daily walks and lots of toys.",
	"Gentle cat that enjoys sunny windowsills and long naps.",
	"Rescued from the street, fully vaccinated and dewormed.",
	"Good with children and other dogs, already house trained.",
	"Curious ginger kitten who climbs everything in sight.",
	"Loyal guard dog, protective but sweet with his family.",
	"Mother cat with three kittens, all healthy and litter trained.",
	"Found near the market, very friendly and loves belly rubs.",
	"Fluffy white cat with blue eyes, indoor only please.",
	"Smart and easy to train, already knows sit and stay.",
	"Golden puppy with a big heart and bigger paws.",
	"Independent tabby who will greet you at the door every evening.",
	"Needs a patient adopter, was mistreated by previous owner.",
	"Loves car rides, swimming and playing fetch at the beach.",
	"Quiet grey cat, perfect for an apartment.",
	"Brother and sister pair, hoping to be adopted together.",
	"Very active, would suit a family with a big yard.",
}

var names = []string{
	"Buddy", "Milo", "Luna", "Bella", "Max", "Coco", "Oreo", "Ginger",
	"Whiskers", "Shadow", "Tiger", "Lucky", "Snowy", "Brownie", "No Name", "",
}

var (
	outFile     = flag.String("out", "data/raw/pet_description/train.csv", "CSV file to write")
	srcFile     = flag.String("src", "", "file of descriptions, one per line")
	count       = flag.Int("n", 200, "number of distinct pets")
	dupRate     = flag.Float64("dups", 0.05, "fraction of rows repeated with the same PetID")
	messyRate   = flag.Float64("messy", 0.05, "fraction of rows with unknown codes or missing values")
	seed        = flag.Uint64("seed", 1, "random seed")
	imageDir    = flag.String("images", "", "directory to write placeholder {PetID}-1.jpg files into")
	imageChance = flag.Float64("image-rate", 0.5, "fraction of pets given a photo")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over non-empty lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if scanner.Text() == "" {
				continue
			}
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// header is the Kaggle PetFinder layout, including columns the normalizer drops.
var header = []string{
	schema.ColumnType, schema.ColumnName, schema.ColumnAge, schema.ColumnBreed, "Breed2",
	schema.ColumnGender, schema.ColumnColor, "Color2", "Quantity", "Fee",
	"RescuerID", schema.ColumnDescription, schema.ColumnPetID, schema.ColumnPhotoAmount, "AdoptionSpeed",
}

func randomRow(r *rand.Rand, petID string, desc string) []string {
	return []string{
		strconv.Itoa(1 + r.IntN(2)),
		names[r.IntN(len(names))],
		strconv.Itoa(r.IntN(120)),
		strconv.Itoa(1 + r.IntN(307)),
		"0",
		strconv.Itoa(1 + r.IntN(3)),
		strconv.Itoa(1 + r.IntN(7)),
		"0",
		"1",
		strconv.Itoa(r.IntN(4) * 50),
		uuid.NewString(),
		desc,
		petID,
		fmt.Sprintf("%d.0", r.IntN(6)),
		strconv.Itoa(r.IntN(5)),
	}
}

// mess corrupts one field the way real exports do.
func mess(r *rand.Rand, row []string) {
	switch r.IntN(5) {
	case 0:
		row[0] = "9" // unknown type code
	case 1:
		row[2] = "NaN"
	case 2:
		row[11] = "  "
	case 3:
		row[6] = ""
	case 4:
		row[13] = "-1"
	}
}

func writeDataset(w io.Writer, r *rand.Rand, texts []string) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	rows := 0
	for i := range *count {
		petID := fmt.Sprintf("%09x", r.Uint64()&0xfffffffff)
		row := randomRow(r, petID, texts[i%len(texts)])
		if r.Float64() < *messyRate {
			mess(r, row)
		}
		if err := cw.Write(row); err != nil {
			return rows, err
		}
		rows++

		if r.Float64() < *dupRate {
			dup := randomRow(r, petID, "duplicate listing of "+petID)
			if err := cw.Write(dup); err != nil {
				return rows, err
			}
			rows++
		}

		if *imageDir != "" && r.Float64() < *imageChance {
			if err := os.WriteFile(filepath.Join(*imageDir, schema.ImageFileName(petID)), []byte{0xff, 0xd8, 0xff, 0xd9}, 0644); err != nil {
				return rows, err
			}
		}
	}
	cw.Flush()
	return rows, cw.Error()
}

func main() {
	texts := descriptions
	if *srcFile != "" {
		lines, err := linesFromFile(*srcFile)
		if err != nil {
			panic(err)
		}
		texts = nil
		for line := range lines {
			texts = append(texts, line)
		}
		if len(texts) == 0 {
			panic("no descriptions in " + *srcFile)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*outFile), 0755); err != nil {
		panic(err)
	}
	if *imageDir != "" {
		if err := os.MkdirAll(*imageDir, 0755); err != nil {
			panic(err)
		}
	}

	f, err := os.Create(*outFile)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	r := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	rows, err := writeDataset(f, r, texts)
	if err != nil {
		panic(err)
	}
	slog.Info("dataset written", "path", *outFile, "rows", rows, "pets", *count)
}
