package measure

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
)

// LoadCSV reads a measurement CSV and returns a cleaned Batch.
//
// The loader is tolerant of common spreadsheet output: comment lines starting
// with '#' are skipped, column names are matched case-insensitively with
// surrounding whitespace stripped, and extra columns are ignored. "label" is
// accepted for the patch column and "a_lab"/"b_lab" for the chromatic
// coordinates; a plain "b" column is treated as the RGB blue channel when
// "r" and "g" columns are present. Rows where all three Lab values are
// unparsable are dropped with a warning. Missing required columns are a hard
// failure.
func LoadCSV(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open measurement file %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to parse measurement file %s", path)
	}
	if len(records) == 0 {
		return nil, pkgerrors.Errorf("measurement file %s is empty", path)
	}

	cols, err := resolveColumns(records[0])
	if err != nil {
		return nil, err
	}

	var (
		batch   Batch
		seen    = map[string]bool{}
		dropped int
	)
	for _, rec := range records[1:] {
		if cols.max() >= len(rec) {
			dropped++
			continue
		}
		row := Row{
			Patch: strings.TrimSpace(rec[cols.patch]),
			Lab: colormath.Lab{
				L: parseCoord(rec[cols.l]),
				A: parseCoord(rec[cols.a]),
				B: parseCoord(rec[cols.b]),
			},
		}
		if !row.Valid() {
			dropped++
			continue
		}
		if seen[row.Patch] {
			logrus.WithField("patch", row.Patch).Warn("duplicate patch name in measurement file, keeping first reading")
			continue
		}
		seen[row.Patch] = true
		batch = append(batch, row)
	}

	if dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"file":    path,
			"dropped": dropped,
		}).Warnf("%d row(s) have no valid L/a/b values and were dropped", dropped)
	}

	return batch, nil
}

type columns struct {
	patch, l, a, b int
}

func (c columns) max() int {
	m := c.patch
	for _, v := range []int{c.l, c.a, c.b} {
		if v > m {
			m = v
		}
	}
	return m
}

func resolveColumns(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}

	find := func(names ...string) (int, bool) {
		for _, n := range names {
			if i, ok := idx[n]; ok {
				return i, true
			}
		}
		return 0, false
	}

	cols := columns{}
	var missing []string

	var ok bool
	if cols.patch, ok = find("patch", "label"); !ok {
		missing = append(missing, "patch")
	}
	if cols.l, ok = find("l"); !ok {
		missing = append(missing, "L")
	}
	if cols.a, ok = find("a_lab", "a"); !ok {
		missing = append(missing, "a")
	}
	// A bare "b" is only the Lab coordinate when it cannot be the RGB
	// blue channel.
	_, hasR := idx["r"]
	_, hasG := idx["g"]
	if cols.b, ok = find("b_lab"); !ok {
		if i, plain := idx["b"]; plain && !(hasR && hasG) {
			cols.b = i
		} else {
			missing = append(missing, "b")
		}
	}

	if len(missing) > 0 {
		return columns{}, fmt.Errorf("measurement CSV is missing required column(s): %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// WriteTemplate writes an empty measurement CSV for the given patch
// definitions. The operator fills in the L/a/b_lab columns after measuring
// the printed chart.
func WriteTemplate(patches []colormath.Patch, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create measurement template %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"index", "label", "r", "g", "b", "L", "a", "b_lab"}); err != nil {
		return pkgerrors.Wrap(err, "failed to write template header")
	}
	for i, p := range patches {
		rec := []string{
			strconv.Itoa(i + 1),
			p.Name,
			strconv.Itoa(int(p.R)),
			strconv.Itoa(int(p.G)),
			strconv.Itoa(int(p.B)),
			"", "", "",
		}
		if err := w.Write(rec); err != nil {
			return pkgerrors.Wrapf(err, "failed to write template row for %s", p.Name)
		}
	}
	w.Flush()
	return pkgerrors.Wrapf(w.Error(), "failed to flush measurement template %s", path)
}
