package main

import (
	"fmt"
	"strconv"
	"strings"
)

const maxGridDim = 5

type LayoutMode int

const (
	LayoutFixed LayoutMode = iota
	LayoutCustom
)

// LayoutSpec partitions an ordered deck of images into per-page grids.
// Fixed layouts carry an implicit grid (1 -> 1x1, 2 -> 2 rows x 1 col,
// 4 -> 2x2); Custom carries explicit rows x cols.
type LayoutSpec struct {
	Mode  LayoutMode
	Count int
	Rows  int
	Cols  int
}

func FixedLayout(count int) LayoutSpec {
	return LayoutSpec{Mode: LayoutFixed, Count: count}
}

func CustomLayout(rows, cols int) LayoutSpec {
	return LayoutSpec{Mode: LayoutCustom, Rows: rows, Cols: cols}
}

// Grid resolves the layout to concrete (rows, cols). Custom dimensions from
// untrusted input are clamped to [1, maxGridDim]; an unrecognized fixed count
// falls back to a single full-page cell.
func (l LayoutSpec) Grid() (rows, cols int) {
	if l.Mode == LayoutCustom {
		return clampGrid(l.Rows), clampGrid(l.Cols)
	}
	switch l.Count {
	case 2:
		return 2, 1
	case 4:
		return 2, 2
	default:
		return 1, 1
	}
}

func clampGrid(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxGridDim {
		return maxGridDim
	}
	return n
}

// ParseLayout reads a layout string from config or CLI: "1", "2" or "4" for
// the fixed layouts, "RxC" (e.g. "3x2") for a custom grid.
func ParseLayout(s string) (LayoutSpec, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, c, ok := strings.Cut(s, "x"); ok {
		rows, err1 := strconv.Atoi(r)
		cols, err2 := strconv.Atoi(c)
		if err1 != nil || err2 != nil {
			return LayoutSpec{}, fmt.Errorf("invalid layout %q (expected RxC, e.g. 3x2)", s)
		}
		return CustomLayout(rows, cols), nil
	}
	switch s {
	case "", "1":
		return FixedLayout(1), nil
	case "2":
		return FixedLayout(2), nil
	case "4":
		return FixedLayout(4), nil
	}
	return LayoutSpec{}, fmt.Errorf("invalid layout %q (1, 2, 4 or RxC)", s)
}

// SheetPage describes the drawable page: extents and margin in millimeters,
// with a band of TitleHeight reserved at the top of the content area.
type SheetPage struct {
	Width       float64
	Height      float64
	Margin      float64
	TitleHeight float64
}

// Landscape returns the page with width and height swapped.
func (p SheetPage) Landscape() SheetPage {
	p.Width, p.Height = p.Height, p.Width
	return p
}

// Placement is one cell assignment: which item goes on which page, and the
// cell's bounding box in page units with origin at the top-left corner.
type Placement struct {
	Item int
	Page int
	Row  int
	Col  int
	X    float64
	Y    float64
	W    float64
	H    float64
}

type PlacementPlan struct {
	Cells []Placement
	Pages int
	Rows  int
	Cols  int
}

// PlanLayout assigns itemCount items to page grid cells in row-major input
// order. It is pure and total: itemCount <= 0 yields an empty plan with zero
// pages, and a partial last page simply leaves trailing cells unused.
func PlanLayout(itemCount int, layout LayoutSpec, page SheetPage) PlacementPlan {
	rows, cols := layout.Grid()
	plan := PlacementPlan{Rows: rows, Cols: cols}
	if itemCount <= 0 {
		return plan
	}

	perPage := rows * cols
	plan.Pages = (itemCount + perPage - 1) / perPage

	availW := page.Width - 2*page.Margin
	availH := page.Height - 2*page.Margin - page.TitleHeight
	if availW < 0 {
		availW = 0
	}
	if availH < 0 {
		availH = 0
	}
	boxW := availW / float64(cols)
	boxH := availH / float64(rows)

	plan.Cells = make([]Placement, itemCount)
	for i := 0; i < itemCount; i++ {
		slot := i % perPage
		row := slot / cols
		col := slot % cols
		plan.Cells[i] = Placement{
			Item: i,
			Page: i / perPage,
			Row:  row,
			Col:  col,
			X:    page.Margin + float64(col)*boxW,
			Y:    page.Margin + page.TitleHeight + float64(row)*boxH,
			W:    boxW,
			H:    boxH,
		}
	}
	return plan
}
