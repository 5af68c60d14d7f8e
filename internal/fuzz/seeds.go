package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 4 << 10
	maxFuzzInput = 4 << 10
)

// grammarSeeds are inputs that reach the interesting paths of the demo
// grammars: stashed alternatives, fatal cuts and trailing input.
var grammarSeeds = []string{
	"", "A", "AA", "AB", "AAA", "AAB", "AA7", "B7", "AB42", "A42",
	"1", "-7", "1 + 2 * 3", "(1 + 2", "((1))", "8 / 0", "1 2", "1 +",
	"99999999999999999999", "é", "A\nA",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range grammarSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".pt" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
