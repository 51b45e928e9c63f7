// Package export renders inspection records as xlsx workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/AhmedAlsudairy/vale-project-sub000/internal/domain"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/metrics"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/status"
	"github.com/AhmedAlsudairy/vale-project-sub000/internal/views"
)

const (
	BrushSheet        = "Carbon Brush"
	WindingSheet      = "Winding Resistance"
	ThermographySheet = "Thermography"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

// fills maps presentation colours to cell backgrounds.
var fills = map[string]string{
	"red":   "FFC7CE",
	"amber": "FFEB9C",
	"green": "C6EFCE",
	"blue":  "BDD7EE",
	"grey":  "EDEDED",
}

// Workbook accumulates one sheet per record kind.
type Workbook struct {
	f      *excelize.File
	sheets int
	styles map[string]int
}

func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile(), styles: map[string]int{}}
}

func (w *Workbook) bandStyle(b status.Band) (int, error) {
	color := status.Present(b).Color
	if id, ok := w.styles[color]; ok {
		return id, nil
	}
	id, err := w.f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fills[color]}},
	})
	if err != nil {
		return 0, err
	}
	w.styles[color] = id
	return id, nil
}

func (w *Workbook) sheet(name string, header []any, rows [][]any) error {
	idx, err := w.f.NewSheet(name)
	if err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	if w.sheets == 0 {
		w.f.SetActiveSheet(idx)
	}
	w.sheets++
	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
		// status cells are shaded by band
		for j, v := range row {
			b, ok := v.(status.Band)
			if !ok {
				continue
			}
			style, err := w.bandStyle(b)
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := w.f.SetCellStyle(name, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func value(v metrics.Value) any {
	if f, ok := v.Get(); ok {
		return f
	}
	return v.Format(0)
}

func (w *Workbook) AddBrush(recs []views.BrushView) error {
	sets := make([]domain.Points, 0, len(recs))
	for _, r := range recs {
		sets = append(sets, r.BrushHeights)
	}
	points := views.PointNames(sets...)
	header := []any{"ID", "Tag No", "Date", "Inspector"}
	for _, p := range points {
		header = append(header, p+" (mm)")
	}
	header = append(header, "Min (mm)", "Max (mm)", "Mean (mm)", "Brush Status", "Slip Ring IR (GΩ)", "IR Status", "Remarks")

	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		row := []any{r.ID, r.TagNo, r.Date.Format(dateLayout), r.Inspector}
		for _, p := range points {
			if v, ok := r.BrushHeights[p]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, value(r.Heights.Min), value(r.Heights.Max), value(r.Heights.Mean),
			r.HeightBand, optional(r.SlipRingIR), r.SlipRingBand, r.Remarks)
		rows = append(rows, row)
	}
	return w.sheet(BrushSheet, header, rows)
}

func (w *Workbook) AddWinding(recs []views.WindingView) error {
	header := []any{"ID", "Tag No", "Date", "Inspector",
		"R U-V (Ω)", "R V-W (Ω)", "R W-U (Ω)",
		"U-G 30s", "U-G 1min", "U-G 10min",
		"V-G 30s", "V-G 1min", "V-G 10min",
		"W-G 30s", "W-G 1min", "W-G 10min",
		"PI", "PI Status", "DAR", "DAR Status", "IR Status", "Remarks"}
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []any{r.ID, r.TagNo, r.Date.Format(dateLayout), r.Inspector,
			optional(r.ResistanceUV), optional(r.ResistanceVW), optional(r.ResistanceWU),
			optional(r.UG30s), optional(r.UG1Min), optional(r.UG10Min),
			optional(r.VG30s), optional(r.VG1Min), optional(r.VG10Min),
			optional(r.WG30s), optional(r.WG1Min), optional(r.WG10Min),
			value(r.PI), r.PIBand, value(r.DAR), r.DARBand, r.IRBand, r.Remarks})
	}
	return w.sheet(WindingSheet, header, rows)
}

func (w *Workbook) AddThermography(recs []views.ThermographyView) error {
	sets := make([]domain.Points, 0, len(recs))
	for _, r := range recs {
		sets = append(sets, r.Temperatures)
	}
	points := views.PointNames(sets...)
	header := []any{"ID", "Tag No", "Date", "Inspector", "Ambient (°C)"}
	for _, p := range points {
		header = append(header, p+" (°C)")
	}
	header = append(header, "Max (°C)", "Mean (°C)", "Status", "Remarks")

	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		row := []any{r.ID, r.TagNo, r.Date.Format(dateLayout), r.Inspector, optional(r.AmbientC)}
		for _, p := range points {
			if v, ok := r.Temperatures[p]; ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		row = append(row, value(r.Stats.Max), value(r.Stats.Mean), r.Band, r.Remarks)
		rows = append(rows, row)
	}
	return w.sheet(ThermographySheet, header, rows)
}

// Bytes finalises the workbook. The default empty sheet is dropped once any
// record sheet exists.
func (w *Workbook) Bytes() ([]byte, error) {
	defer w.f.Close()
	if w.sheets > 0 {
		if err := w.f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	buf, err := w.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
