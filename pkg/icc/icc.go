// Package icc builds and persists the calibration profile artifact from the
// final measured-vs-reference colour values.
package icc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
	"github.com/ps-bond/printerColourCalibration/pkg/measure"
)

// DefaultExtension is appended when the destination filename has none.
const DefaultExtension = ".icc"

// magic identifies profile artifacts written by this tool.
var magic = []byte("PCALICC2")

type pair struct {
	Patch     string        `json:"patch"`
	Measured  colormath.Lab `json:"measured"`
	Reference colormath.Lab `json:"reference"`
}

// Profile is the decoded form of an exported artifact.
type Profile struct {
	Pairs []pair `json:"pairs"`
}

// Export writes a profile artifact for every measured patch with a known
// reference value and returns a human-readable message. The write is
// atomic-or-failed: either the destination holds a complete artifact or the
// export reports an error.
func Export(batch measure.Batch, refs map[string]colormath.Lab, path string) (string, error) {
	if filepath.Ext(path) == "" {
		path += DefaultExtension
	}

	var p Profile
	for _, row := range batch {
		ref, ok := refs[row.Patch]
		if !ok {
			continue
		}
		p.Pairs = append(p.Pairs, pair{Patch: row.Patch, Measured: row.Lab, Reference: ref})
	}
	if len(p.Pairs) == 0 {
		return "", pkgerrors.New("no measured patches match the reference table, cannot build a profile")
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return "", pkgerrors.Wrap(err, "failed to encode profile payload")
	}

	var buf bytes.Buffer
	buf.Write(magic)
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(payload))); err != nil {
		return "", pkgerrors.Wrap(err, "failed to encode profile header")
	}
	buf.Write(payload)

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to write profile to %s", path)
	}

	return fmt.Sprintf("ICC profile exported to %s (%d patches).", path, len(p.Pairs)), nil
}

// Load reads back an artifact written by Export. It exists for verification
// tooling and tests.
func Load(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read profile %s", path)
	}
	if len(b) < len(magic)+4 || !bytes.Equal(b[:len(magic)], magic) {
		return nil, pkgerrors.Errorf("%s is not a profile written by this tool", path)
	}
	n := binary.BigEndian.Uint32(b[len(magic) : len(magic)+4])
	body := b[len(magic)+4:]
	if uint32(len(body)) != n {
		return nil, pkgerrors.Errorf("profile %s is truncated", path)
	}
	var p Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to decode profile %s", path)
	}
	return &p, nil
}
