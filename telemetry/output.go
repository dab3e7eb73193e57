// Package telemetry writes the two output streams of §6 External
// interfaces: a per-realization record (realization index, active-actor
// bit sequences, passive-actor observation columns) and a run summary
// (input filename, seed, repeats, wall-clock timing, per-actor maxima).
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// Realization is the subset of a realization the output manager reads;
// it is satisfied by *sim.Realization without this package importing sim
// (which would create a cycle, since sim imports telemetry for PassiveRow).
type Realization interface {
	ActiveBitSequences() [][]bool
	PassiveObservationRows() []PassiveRow
}

// PassiveRow is one passive-actor observation, already flattened for the
// output stream.
type PassiveRow struct {
	ActorID   int
	Time      float64
	HasTime   bool
	Counts    []int64
	Positions [][]string // per type, one "(x,y,z)" string per molecule, empty if not recorded
}

// RealizationRow is one CSV row of the per-realization stream: one row
// per (realization, actor). Bits holds a comma-joined "1,0,1,1,0"
// sequence for active actors; Counts/Positions hold passive-actor
// observation columns, flattened to strings so a single CSV schema
// covers both actor roles (§6: "in order: ... for each active actor its
// bit sequence; for each recorded passive actor ... count columns and
// optional position lists").
type RealizationRow struct {
	Realization int    `csv:"realization"`
	ActorID     int    `csv:"actor_id"`
	Role        string `csv:"role"`
	Time        string `csv:"time"`
	Bits        string `csv:"bits"`
	Counts      string `csv:"counts"`
	Positions   string `csv:"positions"`
}

// SummaryRow is the run summary stream's single row per run.
type SummaryRow struct {
	InputFile  string `csv:"input_file"`
	Seed       int64  `csv:"seed"`
	Repeats    int    `csv:"repeats"`
	StartTime  string `csv:"start_time"`
	EndTime    string `csv:"end_time"`
	MaxPerActor string `csv:"max_per_actor"` // "actorID:max,actorID:max,..."
}

// OutputManager owns the two open output files for one run.
type OutputManager struct {
	dir             string
	realizationFile *os.File
	headerWritten   bool

	maxPerActor map[int]int64
}

// NewOutputManager creates the realization stream file in dir. The
// summary stream is written once by WriteSummary at the end of the run.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "realizations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating realizations.csv: %w", err)
	}
	return &OutputManager{dir: dir, realizationFile: f, maxPerActor: make(map[int]int64)}, nil
}

// WriteRealization appends the rows for one realization to the stream
// (§6: "Per realization, one text stream containing, in order: the
// realization index; for each active actor, its emitted bit sequence;
// for each recorded passive actor, ... count columns and position
// lists").
func (om *OutputManager) WriteRealization(index int, rz Realization) error {
	if om == nil {
		return nil
	}
	var rows []RealizationRow

	for actorID, bits := range rz.ActiveBitSequences() {
		if bits == nil {
			continue
		}
		rows = append(rows, RealizationRow{
			Realization: index, ActorID: actorID, Role: "active",
			Bits: joinBits(bits),
		})
		om.trackMax(actorID, int64(countOnes(bits)))
	}

	for _, pr := range rz.PassiveObservationRows() {
		row := RealizationRow{Realization: index, ActorID: pr.ActorID, Role: "passive"}
		if pr.HasTime {
			row.Time = strconv.FormatFloat(pr.Time, 'g', -1, 64)
		}
		row.Counts = joinCounts(pr.Counts)
		row.Positions = joinPositions(pr.Positions)
		rows = append(rows, row)

		var total int64
		for _, c := range pr.Counts {
			if c > total {
				total = c
			}
		}
		om.trackMax(pr.ActorID, total)
	}

	if len(rows) == 0 {
		return nil
	}
	if !om.headerWritten {
		om.headerWritten = true
		return gocsv.Marshal(rows, om.realizationFile)
	}
	return gocsv.MarshalWithoutHeaders(rows, om.realizationFile)
}

func (om *OutputManager) trackMax(actorID int, v int64) {
	if cur, ok := om.maxPerActor[actorID]; !ok || v > cur {
		om.maxPerActor[actorID] = v
	}
}

// WriteSummary writes the run summary stream (§6: "input filename, seed,
// number of repeats, wall-clock start and end, and, for each actor, the
// maximum bit or observation counts reached in any realization").
func (om *OutputManager) WriteSummary(inputFile string, seed int64, repeats int, start, end time.Time) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "summary.csv"))
	if err != nil {
		return fmt.Errorf("creating summary.csv: %w", err)
	}
	defer f.Close()

	row := SummaryRow{
		InputFile: inputFile, Seed: seed, Repeats: repeats,
		StartTime: start.Format(time.RFC3339Nano), EndTime: end.Format(time.RFC3339Nano),
		MaxPerActor: joinMaxPerActor(om.maxPerActor),
	}
	return gocsv.Marshal([]SummaryRow{row}, f)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes the realization stream file.
func (om *OutputManager) Close() error {
	if om == nil || om.realizationFile == nil {
		return nil
	}
	return om.realizationFile.Close()
}

func joinBits(bits []bool) string {
	parts := make([]string, len(bits))
	for i, b := range bits {
		if b {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, ",")
}

func countOnes(bits []bool) int {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return n
}

func joinCounts(counts []int64) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return strings.Join(parts, ",")
}

func joinPositions(positions [][]string) string {
	var parts []string
	for _, typePositions := range positions {
		if len(typePositions) == 0 {
			continue
		}
		parts = append(parts, strings.Join(typePositions, " "))
	}
	return strings.Join(parts, ";")
}

// joinMaxPerActor orders entries by actor ID so the summary stream stays
// byte-identical across runs with the same seed (§8 invariant (iv)): map
// iteration order is not reproducible on its own.
func joinMaxPerActor(m map[int]int64) string {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d:%d", id, m[id]))
	}
	return strings.Join(parts, ",")
}
