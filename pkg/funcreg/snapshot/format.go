// Package snapshot persists function registry state for crash recovery.
//
// A snapshot is a single file holding the function table and checksum index.
// The file starts with a fixed header followed by a JSON payload:
//
//	offset  size  field
//	0       8     magic "FNREGSNP"
//	8       4     format version, big endian
//	12      8     payload length, big endian
//	20      8     xxhash64 of payload, big endian
//	28      n     JSON payload
//
// The header lets Load distinguish a truncated or altered file from a valid
// one without trusting the payload.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/randalmurphal/funcreg/pkg/funcreg/table"
)

// FormatVersion is the current snapshot format version.
// Increment when making breaking changes to the layout or payload.
const FormatVersion = 1

const headerSize = 28

var magic = []byte("FNREGSNP")

// State is the registry state captured by a snapshot.
type State struct {
	// Functions holds every registered function, ordered by name.
	Functions []table.FunctionInfo `json:"functions"`

	// Checksums maps package names to their checksum.
	Checksums map[string]string `json:"checksums"`
}

// payload is the JSON body of a snapshot file.
type payload struct {
	Version   int                  `json:"version"`
	TakenAt   time.Time            `json:"taken_at"`
	Functions []table.FunctionInfo `json:"functions"`
	Checksums map[string]string    `json:"checksums"`
}

// Encode serializes state into the snapshot file format.
func Encode(state State, takenAt time.Time) ([]byte, error) {
	functions := slices.Clone(state.Functions)
	slices.SortFunc(functions, func(a, b table.FunctionInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	checksums := state.Checksums
	if checksums == nil {
		checksums = map[string]string{}
	}
	if functions == nil {
		functions = []table.FunctionInfo{}
	}

	body, err := json.Marshal(payload{
		Version:   FormatVersion,
		TakenAt:   takenAt.UTC(),
		Functions: functions,
		Checksums: checksums,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(body))
	buf.Write(magic)
	_ = binary.Write(&buf, binary.BigEndian, uint32(FormatVersion))
	_ = binary.Write(&buf, binary.BigEndian, uint64(len(body)))
	_ = binary.Write(&buf, binary.BigEndian, xxhash.Sum64(body))
	buf.Write(body)
	return buf.Bytes(), nil
}

// Decode parses and verifies a snapshot file. Any failure is a *CorruptError.
func Decode(data []byte) (State, time.Time, error) {
	if len(data) < headerSize {
		return State{}, time.Time{}, corrupt("file too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], magic) {
		return State{}, time.Time{}, corrupt("bad magic %q", data[:8])
	}
	version := binary.BigEndian.Uint32(data[8:12])
	if version != FormatVersion {
		return State{}, time.Time{}, corrupt("unsupported format version %d", version)
	}
	length := binary.BigEndian.Uint64(data[12:20])
	body := data[headerSize:]
	if uint64(len(body)) != length {
		return State{}, time.Time{}, corrupt("payload length %d, header says %d", len(body), length)
	}
	if sum := xxhash.Sum64(body); sum != binary.BigEndian.Uint64(data[20:28]) {
		return State{}, time.Time{}, corrupt("payload digest mismatch")
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return State{}, time.Time{}, corrupt("decode payload: %v", err)
	}
	if p.Version != FormatVersion {
		return State{}, time.Time{}, corrupt("payload version %d", p.Version)
	}

	state := State{Functions: p.Functions, Checksums: p.Checksums}
	if state.Checksums == nil {
		state.Checksums = map[string]string{}
	}
	if err := verify(state); err != nil {
		return State{}, time.Time{}, err
	}
	return state, p.TakenAt, nil
}

// verify checks the registry invariants the payload must satisfy.
func verify(state State) error {
	seen := make(map[string]struct{}, len(state.Functions))
	for _, f := range state.Functions {
		if f.Name == "" {
			return corrupt("function with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return corrupt("duplicate function %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		sum, ok := state.Checksums[f.PackageName]
		if !ok {
			return corrupt("function %q references unknown package %q", f.Name, f.PackageName)
		}
		if sum != f.PackageChecksum {
			return corrupt("function %q checksum %q disagrees with package %q checksum %q",
				f.Name, f.PackageChecksum, f.PackageName, sum)
		}
	}
	return nil
}
