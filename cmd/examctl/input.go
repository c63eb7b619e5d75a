package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mind-engage/examinfo/internal/catalog"
	"github.com/mind-engage/examinfo/internal/upstream"
)

// readAdmission loads an admission document from path ("-" for stdin).
// Subject keys are folded the same way the gateway folds them.
func readAdmission(path string, stdin io.Reader) (catalog.Admission, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return catalog.Admission{}, err
		}
		defer f.Close()
		r = f
	}
	var a catalog.Admission
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return catalog.Admission{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(a.Subjects) == 0 {
		return catalog.Admission{}, fmt.Errorf("%s: no subjects", path)
	}
	a.Subjects = upstream.NormalizeSubjects(a.Subjects)
	return a, nil
}
