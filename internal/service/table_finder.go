package service

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Table finder strategies.
const (
	StrategyText  = "text"
	StrategyLines = "lines"
)

// TableSettings configures how table regions are located on a page.
// Distances are in PDF layout units (1/72 inch).
type TableSettings struct {
	// VerticalStrategy finds column boundaries: "text" uses the whitespace
	// gutters between aligned words, "lines" uses drawn vertical rules.
	VerticalStrategy string
	// HorizontalStrategy finds row boundaries: "lines" uses drawn horizontal
	// rules, "text" uses the top of every text line.
	HorizontalStrategy string

	SnapXTolerance float64
	SnapYTolerance float64
	JoinTolerance  float64
	EdgeMinLength  float64

	// WordXTolerance is the largest gap between glyphs of one word.
	WordXTolerance float64
	// WordYTolerance is the largest baseline drift within one text line.
	WordYTolerance float64
	// KeepBlankChars keeps the blanks between words of a cell instead of
	// splitting them into separate words.
	KeepBlankChars bool
}

// DefaultTableSettings returns the settings of the statement layout:
// text-aligned columns, ruled rows, 3 unit tolerances, blanks kept.
func DefaultTableSettings() TableSettings {
	return TableSettings{
		VerticalStrategy:   StrategyText,
		HorizontalStrategy: StrategyLines,
		SnapXTolerance:     3,
		SnapYTolerance:     3,
		JoinTolerance:      3,
		EdgeMinLength:      3,
		WordXTolerance:     3,
		WordYTolerance:     3,
		KeepBlankChars:     true,
	}
}

// WithSnapTolerance returns a copy with both snap tolerances set to tol.
func (s TableSettings) WithSnapTolerance(tol float64) TableSettings {
	s.SnapXTolerance = tol
	s.SnapYTolerance = tol
	return s
}

// word is a run of glyphs on one baseline. PDF coordinates: top > bottom.
type word struct {
	text   string
	x0, x1 float64
	bottom float64
	top    float64
}

func (w word) midX() float64 { return (w.x0 + w.x1) / 2 }
func (w word) midY() float64 { return (w.bottom + w.top) / 2 }

// edge is an axis-aligned segment. For horizontal edges pos is y and
// start/end are x; for vertical edges pos is x and start/end are y.
type edge struct {
	pos        float64
	start, end float64
}

func (e edge) length() float64 { return e.end - e.start }

// tableFinder locates tables in one page's glyphs and rectangles.
type tableFinder struct {
	settings TableSettings
}

func newTableFinder(settings TableSettings) *tableFinder {
	return &tableFinder{settings: settings}
}

// FindTables returns the cell text of every table on the page, top to bottom.
// Blank rows above or below a table's text are dropped; blank rows inside it
// are kept as empty cells. Every row of a table has the same width.
func (f *tableFinder) FindTables(glyphs []pdf.Text, rects []pdf.Rect) [][][]string {
	words := f.assembleWords(glyphs)
	if len(words) == 0 {
		return nil
	}

	var hEdges []edge
	if f.settings.HorizontalStrategy == StrategyText {
		hEdges = textRowEdges(words)
	} else {
		hEdges, _ = rectEdges(rects, f.settings.SnapXTolerance, f.settings.SnapYTolerance)
	}
	hEdges = f.mergeEdges(hEdges, f.settings.SnapYTolerance)

	var tables [][][]string
	for _, group := range f.groupEdges(hEdges) {
		if rows := f.buildTable(group, words, rects); len(rows) > 0 {
			tables = append(tables, rows)
		}
	}
	return tables
}

// assembleWords joins per-glyph text into words, line by line, top to bottom.
// Blank glyphs join the words on either side when KeepBlankChars is set and
// split them otherwise. Line breaks always end a word.
func (f *tableFinder) assembleWords(glyphs []pdf.Text) []word {
	chars := make([]pdf.Text, 0, len(glyphs))
	inked := false
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		inked = inked || !isBlank(g.S)
		chars = append(chars, g)
	}
	if !inked {
		return nil
	}

	// Snap baselines that drift less than the tolerance onto one line.
	sort.SliceStable(chars, func(i, j int) bool { return chars[i].Y > chars[j].Y })
	lineY := chars[0].Y
	for i := range chars {
		if math.Abs(lineY-chars[i].Y) <= f.settings.WordYTolerance {
			chars[i].Y = lineY
		} else {
			lineY = chars[i].Y
		}
	}
	sort.SliceStable(chars, func(i, j int) bool {
		if chars[i].Y != chars[j].Y {
			return chars[i].Y > chars[j].Y
		}
		return chars[i].X < chars[j].X
	})

	var words []word
	var b, blanks strings.Builder
	var cur word
	var end, inkEnd, size float64
	open := false
	flush := func() {
		if open {
			cur.text = b.String()
			cur.x1 = math.Max(inkEnd, cur.x0)
			cur.top = cur.bottom + size
			words = append(words, cur)
		}
		open = false
		b.Reset()
		blanks.Reset()
	}

	for _, c := range chars {
		joinable := open && c.Y == cur.bottom && c.X-end <= f.settings.WordXTolerance

		if isBlank(c.S) {
			if !joinable || !f.settings.KeepBlankChars || strings.ContainsAny(c.S, "\r\n") {
				flush()
				continue
			}
			// Held back until the next glyph so words never end in blanks.
			blanks.WriteString(c.S)
			end = math.Max(end, c.X+c.W)
			continue
		}

		if joinable {
			spaced := blanks.Len() == 0 && c.X-end > c.FontSize*0.2
			if f.settings.KeepBlankChars || !spaced {
				if spaced {
					b.WriteByte(' ')
				}
				b.WriteString(blanks.String())
				blanks.Reset()
				b.WriteString(c.S)
				end = math.Max(end, c.X+c.W)
				inkEnd = math.Max(inkEnd, c.X+c.W)
				size = math.Max(size, c.FontSize)
				continue
			}
		}

		flush()
		cur = word{x0: c.X, bottom: c.Y}
		open = true
		b.WriteString(c.S)
		end = c.X + c.W
		inkEnd = end
		size = c.FontSize
	}
	flush()

	return words
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// rectEdges splits drawn rectangles into horizontal and vertical edges.
// Thin rectangles are rules and yield one edge; boxes yield their sides.
func rectEdges(rects []pdf.Rect, snapX, snapY float64) (horizontal, vertical []edge) {
	for _, r := range rects {
		x0, x1 := math.Min(r.Min.X, r.Max.X), math.Max(r.Min.X, r.Max.X)
		y0, y1 := math.Min(r.Min.Y, r.Max.Y), math.Max(r.Min.Y, r.Max.Y)

		if y1-y0 <= snapY {
			horizontal = append(horizontal, edge{pos: (y0 + y1) / 2, start: x0, end: x1})
		} else if x1-x0 > snapX {
			horizontal = append(horizontal,
				edge{pos: y1, start: x0, end: x1},
				edge{pos: y0, start: x0, end: x1})
		}

		if x1-x0 <= snapX {
			vertical = append(vertical, edge{pos: (x0 + x1) / 2, start: y0, end: y1})
		} else if y1-y0 > snapY {
			vertical = append(vertical,
				edge{pos: x0, start: y0, end: y1},
				edge{pos: x1, start: y0, end: y1})
		}
	}
	return horizontal, vertical
}

// textRowEdges draws a rule above every text line and one below the last.
func textRowEdges(words []word) []edge {
	var edges []edge
	for i := 0; i < len(words); {
		j := i
		line := edge{pos: words[i].top, start: words[i].x0, end: words[i].x1}
		for j < len(words) && words[j].bottom == words[i].bottom {
			line.pos = math.Max(line.pos, words[j].top)
			line.start = math.Min(line.start, words[j].x0)
			line.end = math.Max(line.end, words[j].x1)
			j++
		}
		edges = append(edges, line)
		if j == len(words) {
			edges = append(edges, edge{pos: words[i].bottom - 1, start: line.start, end: line.end})
		}
		i = j
	}
	return edges
}

// mergeEdges snaps edges whose positions lie within tol onto their average
// position, joins collinear segments that touch within the join tolerance and
// drops the ones shorter than the minimum length.
func (f *tableFinder) mergeEdges(edges []edge, tol float64) []edge {
	if len(edges) == 0 {
		return nil
	}

	sorted := append([]edge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].pos < sorted[j].pos })

	var clusters [][]edge
	center := math.Inf(-1)
	for _, e := range sorted {
		if len(clusters) > 0 && e.pos-center <= tol {
			last := len(clusters) - 1
			clusters[last] = append(clusters[last], e)
			center = (center*float64(len(clusters[last])-1) + e.pos) / float64(len(clusters[last]))
			continue
		}
		clusters = append(clusters, []edge{e})
		center = e.pos
	}

	var merged []edge
	for _, cluster := range clusters {
		var sum float64
		for _, e := range cluster {
			sum += e.pos
		}
		pos := sum / float64(len(cluster))

		sort.SliceStable(cluster, func(i, j int) bool { return cluster[i].start < cluster[j].start })
		cur := edge{pos: pos, start: cluster[0].start, end: cluster[0].end}
		for _, e := range cluster[1:] {
			if e.start <= cur.end+f.settings.JoinTolerance {
				cur.end = math.Max(cur.end, e.end)
				continue
			}
			merged = append(merged, cur)
			cur = edge{pos: pos, start: e.start, end: e.end}
		}
		merged = append(merged, cur)
	}

	out := merged[:0]
	for _, e := range merged {
		if e.length() >= f.settings.EdgeMinLength {
			out = append(out, e)
		}
	}
	return out
}

// groupEdges collects horizontal edges whose x-extents overlap into one
// table each. Groups come back top to bottom, each sorted top to bottom, and
// only groups with at least two edges (one row band) are kept.
func (f *tableFinder) groupEdges(edges []edge) [][]edge {
	sorted := append([]edge(nil), edges...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].pos > sorted[j].pos })

	type group struct {
		edges      []edge
		start, end float64
	}
	var groups []*group
	tol := f.settings.JoinTolerance
	for _, e := range sorted {
		var target *group
		for _, g := range groups {
			if e.start <= g.end+tol && e.end >= g.start-tol {
				target = g
				break
			}
		}
		if target == nil {
			groups = append(groups, &group{edges: []edge{e}, start: e.start, end: e.end})
			continue
		}
		target.edges = append(target.edges, e)
		target.start = math.Min(target.start, e.start)
		target.end = math.Max(target.end, e.end)
	}

	var out [][]edge
	for _, g := range groups {
		if len(g.edges) >= 2 {
			out = append(out, g.edges)
		}
	}
	return out
}

// buildTable fills the row bands between consecutive edges of a group.
func (f *tableFinder) buildTable(group []edge, words []word, rects []pdf.Rect) [][]string {
	top, bottom := group[0].pos, group[len(group)-1].pos
	left, right := group[0].start, group[0].end
	for _, e := range group[1:] {
		left = math.Min(left, e.start)
		right = math.Max(right, e.end)
	}

	tol := f.settings.SnapXTolerance
	var inside []word
	for _, w := range words {
		y, x := w.midY(), w.midX()
		if y < top && y > bottom && x >= left-tol && x <= right+tol {
			inside = append(inside, w)
		}
	}
	if len(inside) == 0 {
		return nil
	}

	bounds, spanTop, spanBottom := f.columnBounds(inside, rects, left, right, top, bottom)
	if len(bounds) < 2 {
		return nil
	}

	var rows [][]string
	tolY := f.settings.SnapYTolerance
	for i := 0; i+1 < len(group); i++ {
		upper, lower := group[i].pos, group[i+1].pos
		cells := make([][]word, len(bounds)-1)
		filled := false
		for _, w := range inside {
			y := w.midY()
			if y > upper || y <= lower {
				continue
			}
			if col := columnOf(w.midX(), bounds); col >= 0 {
				cells[col] = append(cells[col], w)
				filled = true
			}
		}
		// A blank band is a row only where the columns reach both its rules.
		if !filled && (upper > spanTop+tolY || lower < spanBottom-tolY) {
			continue
		}
		row := make([]string, len(cells))
		for c, ws := range cells {
			row[c] = cellText(ws)
		}
		rows = append(rows, row)
	}
	return rows
}

// columnBounds returns ascending x boundaries, column i spanning
// bounds[i]..bounds[i+1], and the vertical extent the columns cover.
func (f *tableFinder) columnBounds(words []word, rects []pdf.Rect, left, right, top, bottom float64) (bounds []float64, spanTop, spanBottom float64) {
	if f.settings.VerticalStrategy == StrategyLines {
		_, vEdges := rectEdges(rects, f.settings.SnapXTolerance, f.settings.SnapYTolerance)
		var inRegion []edge
		for _, e := range vEdges {
			if e.pos >= left-f.settings.SnapXTolerance && e.pos <= right+f.settings.SnapXTolerance &&
				e.end > bottom && e.start < top {
				inRegion = append(inRegion, e)
			}
		}
		spanTop, spanBottom = math.Inf(-1), math.Inf(1)
		for _, e := range f.mergeEdges(inRegion, f.settings.SnapXTolerance) {
			bounds = append(bounds, e.pos)
			spanTop = math.Max(spanTop, e.end)
			spanBottom = math.Min(spanBottom, e.start)
		}
		sort.Float64s(bounds)
		return dedupe(bounds, f.settings.SnapXTolerance), spanTop, spanBottom
	}

	// Text strategy: a column is a run of x positions covered by words;
	// gutters wider than the snap tolerance separate columns.
	spanTop, spanBottom = math.Inf(-1), math.Inf(1)
	spans := make([]edge, 0, len(words))
	for _, w := range words {
		spans = append(spans, edge{start: w.x0, end: w.x1})
		spanTop = math.Max(spanTop, w.top)
		spanBottom = math.Min(spanBottom, w.bottom)
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var columns []edge
	for _, s := range spans {
		if n := len(columns); n > 0 && s.start <= columns[n-1].end+f.settings.SnapXTolerance {
			columns[n-1].end = math.Max(columns[n-1].end, s.end)
			continue
		}
		columns = append(columns, s)
	}

	bounds = []float64{math.Inf(-1)}
	for i := 1; i < len(columns); i++ {
		bounds = append(bounds, (columns[i-1].end+columns[i].start)/2)
	}
	return append(bounds, math.Inf(1)), spanTop, spanBottom
}

// columnOf returns the column holding x, or -1 outside the outer bounds.
func columnOf(x float64, bounds []float64) int {
	for i := 0; i+1 < len(bounds); i++ {
		if x >= bounds[i] && x < bounds[i+1] {
			return i
		}
	}
	return -1
}

// cellText joins a cell's words: blanks within a line, newlines between lines.
func cellText(ws []word) string {
	if len(ws) == 0 {
		return ""
	}
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].bottom != ws[j].bottom {
			return ws[i].bottom > ws[j].bottom
		}
		return ws[i].x0 < ws[j].x0
	})

	var b strings.Builder
	for i, w := range ws {
		if i > 0 {
			if w.bottom == ws[i-1].bottom {
				b.WriteByte(' ')
			} else {
				b.WriteByte('\n')
			}
		}
		b.WriteString(w.text)
	}
	return b.String()
}

func dedupe(sorted []float64, tol float64) []float64 {
	var out []float64
	for _, v := range sorted {
		if len(out) > 0 && v-out[len(out)-1] <= tol {
			continue
		}
		out = append(out, v)
	}
	return out
}
