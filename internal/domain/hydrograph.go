package domain

// TimeHeader names the first column of every hydrograph table.
const TimeHeader = "Time (h)"

// Column is one surface's discharge series on the output axis, in m3/s.
type Column struct {
	Catchment string      `json:"catchment"`
	Surface   SurfaceKind `json:"surface"`
	Header    string      `json:"header"`
	Values    []float64   `json:"values"`
}

// Hydrograph is the output table of one event: the output axis followed by one
// column per surface per catchment.
type Hydrograph struct {
	Event   Event    `json:"event"`
	Time    TimeAxis `json:"time"`
	Columns []Column `json:"columns"`
}

// Headers returns the column names, time first.
func (h Hydrograph) Headers() []string {
	out := make([]string, 0, len(h.Columns)+1)
	out = append(out, TimeHeader)
	for _, c := range h.Columns {
		out = append(out, c.Header)
	}
	return out
}

// Rows returns the table in row-major order, time in column 0.
func (h Hydrograph) Rows() [][]float64 {
	rows := make([][]float64, len(h.Time))
	for i, t := range h.Time {
		row := make([]float64, 0, len(h.Columns)+1)
		row = append(row, t)
		for _, c := range h.Columns {
			row = append(row, c.Values[i])
		}
		rows[i] = row
	}
	return rows
}

// Peak returns the largest discharge in the table and the header of the column
// it belongs to.
func (h Hydrograph) Peak() (header string, discharge float64) {
	for _, c := range h.Columns {
		for _, v := range c.Values {
			if v > discharge {
				header, discharge = c.Header, v
			}
		}
	}
	return header, discharge
}
