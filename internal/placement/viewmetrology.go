package placement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"panel-router/internal/design"
	"panel-router/pkg/geometry"
)

var (
	// ErrNoHeader is returned when no row carries every required column.
	ErrNoHeader = errors.New("measurement data header not found")
	// ErrDrawingMismatch is returned when the report names a different drawing.
	ErrDrawingMismatch = errors.New("drawing number mismatch")
)

var cadFileNameRE = regexp.MustCompile(`CAD File Name\s*,\s*(D[0-9]{6}_[a-zA-Z]+)`)

const (
	colStatus  = "Overall Status"
	colType    = "Type"
	colNomX    = "XCenter Nom."
	colNomY    = "YCenter Nom."
	colDeviX   = "XCenter Devi."
	colDeviY   = "YCenter Devi."
	colAngle   = "Angle Act."
	statusGood = "OK"
)

var requiredColumns = []string{colStatus, colType, colNomX, colNomY, colDeviX, colDeviY, colAngle}

// ImportOptions controls ParseViewMetrology.
type ImportOptions struct {
	PanelID string
	// CheckDrawing compares the report's CAD file name with the design's
	// number and revision.
	CheckDrawing bool
}

// ParseViewMetrology builds a shift table from a ViewMetrology die measurement
// export. Rows are grouped into units by nominal unit origin, in the order
// units first appear. The returned table has InSpec set only from
// measurement status; call MarkInSpec to apply the design's constraints.
func ParseViewMetrology(r io.Reader, d *design.Design, opts ImportOptions) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.Trim(strings.ReplaceAll(string(raw), "\r", "\n"), "\n")

	if opts.CheckDrawing {
		want := d.Number + "_" + d.Revision
		m := cadFileNameRE.FindStringSubmatch(text)
		if m == nil || m[1] != want {
			got := ""
			if m != nil {
				got = m[1]
			}
			return nil, fmt.Errorf("%w: report %q, design %q", ErrDrawingMismatch, got, want)
		}
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read measurement csv: %w", err)
	}

	cols, first, err := findHeader(rows)
	if err != nil {
		return nil, err
	}

	dieIndex := make(map[string]int, len(d.UnitDies))
	for i, die := range d.UnitDies {
		dieIndex[die.Name] = i
	}

	t := &Table{
		DesignNumber:   d.Number,
		DesignRevision: d.Revision,
		PanelID:        opts.PanelID,
	}
	unitByOrigin := make(map[geometry.Point2D]int)

	for ri, row := range rows[first:] {
		line := first + ri + 1
		if isBlank(row) {
			continue
		}
		if len(row) <= cols.max {
			return nil, fmt.Errorf("line %d: expected %d columns, got %d", line, cols.max+1, len(row))
		}

		typ := strings.TrimSpace(row[cols.index[colType]])
		di, ok := dieIndex[typ]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown die type %q", line, typ)
		}

		nominal, err := parsePoint(row[cols.index[colNomX]], row[cols.index[colNomY]])
		if err != nil {
			return nil, fmt.Errorf("line %d: nominal center: %w", line, err)
		}

		ds := DieShift{Name: typ, Nominal: nominal, Unmeasured: true}
		if strings.TrimSpace(row[cols.index[colStatus]]) == statusGood {
			shift, err := parsePoint(row[cols.index[colDeviX]], row[cols.index[colDeviY]])
			if err != nil {
				return nil, fmt.Errorf("line %d: deviation: %w", line, err)
			}
			ds.Shift = shift
			ds.Unmeasured = false
			if deg, err := strconv.ParseFloat(strings.TrimSpace(row[cols.index[colAngle]]), 64); err == nil {
				ds.Theta = deg * math.Pi / 180
			}
		}

		origin := nominal.Sub(d.UnitDies[di].Outline.Center)
		ui, ok := unitByOrigin[origin]
		if !ok {
			ui = len(t.Units)
			unitByOrigin[origin] = ui
			t.Units = append(t.Units, Unit{
				Number: ui + 1,
				Center: origin,
				InSpec: true,
				Dies:   make([]DieShift, len(d.UnitDies)),
			})
		}
		unit := &t.Units[ui]
		unit.Dies[di] = ds
		if ds.Unmeasured {
			unit.InSpec = false
		}
	}
	return t, nil
}

type headerColumns struct {
	index map[string]int
	max   int
}

func findHeader(rows [][]string) (headerColumns, int, error) {
	for i, row := range rows {
		idx := make(map[string]int, len(row))
		for c, cell := range row {
			idx[strings.TrimSpace(cell)] = c
		}
		hc := headerColumns{index: make(map[string]int, len(requiredColumns))}
		found := true
		for _, name := range requiredColumns {
			c, ok := idx[name]
			if !ok {
				found = false
				break
			}
			hc.index[name] = c
			hc.max = max(hc.max, c)
		}
		if found {
			return hc, i + 1, nil
		}
	}
	return headerColumns{}, 0, ErrNoHeader
}

func parsePoint(xs, ys string) (geometry.Point2D, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return geometry.Point2D{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return geometry.Point2D{}, err
	}
	return geometry.Point2D{X: x, Y: y}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
