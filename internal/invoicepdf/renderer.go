package invoicepdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/partsdesk/partsdesk/internal/billing"
)

// Renderer turns bills into printable A4 tax invoices.
type Renderer struct {
	company CompanyProfile
}

// NewRenderer builds a Renderer for the given seller profile.
func NewRenderer(company CompanyProfile) *Renderer {
	return &Renderer{company: company}
}

// RenderInvoice produces the PDF bytes for one bill. The letterhead, invoice
// meta, Bill To block and item column header are registered as the page
// header, so a long item table repeats them on every continuation page.
func (r *Renderer) RenderInvoice(bill billing.Bill) ([]byte, error) {
	layout := BuildLayout(bill, r.company)

	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(12).
		WithRightMargin(10).
		Build()
	m := maroto.New(cfg)

	header := make([]core.Row, 0, 8)
	header = append(header, r.letterheadRows(layout)...)
	header = append(header, r.metaRow(layout))
	header = append(header, r.billToRows(layout)...)
	header = append(header, r.itemHeaderRows(layout)...)
	if err := m.RegisterHeader(header...); err != nil {
		return nil, fmt.Errorf("invoicepdf: register header: %w", err)
	}

	r.addItemRows(m, layout)
	r.addSummary(m, layout)
	r.addHSNSummary(m, layout)
	r.addFooter(m, layout)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("invoicepdf: generate: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *Renderer) letterheadRows(l Layout) []core.Row {
	return []core.Row{
		row.New(22).Add(
			col.New(7).Add(
				text.New(l.Company.Name, props.Text{Size: 15, Style: fontstyle.Bold}),
				text.New(l.Company.Address, props.Text{Size: 8, Top: 8}),
				text.New(fmt.Sprintf("GSTIN: %s  Phone: %s", l.Company.GSTIN, l.Company.Phone),
					props.Text{Size: 8, Top: 14}),
			),
			col.New(5).Add(
				text.New(l.Title, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Right}),
			),
		),
		row.New(3).Add(line.NewCol(12)),
	}
}

func (r *Renderer) metaRow(l Layout) core.Row {
	cols := make([]core.Col, 0, len(l.Meta))
	width := 12 / len(l.Meta)
	for _, f := range l.Meta {
		cols = append(cols, col.New(width).Add(
			text.New(f.Label, props.Text{Size: 7}),
			text.New(f.Value, props.Text{Size: 9, Style: fontstyle.Bold, Top: 4}),
		))
	}
	return row.New(12).Add(cols...)
}

func (r *Renderer) billToRows(l Layout) []core.Row {
	texts := make([]core.Component, 0, len(l.BillTo)+1)
	texts = append(texts, text.New("Bill To", props.Text{Size: 7}))
	for i, lineText := range l.BillTo {
		texts = append(texts, text.New(lineText, props.Text{
			Size: 9, Top: float64(4 + i*4),
		}))
	}
	return []core.Row{
		row.New(float64(8 + len(l.BillTo)*4)).Add(col.New(12).Add(texts...)),
		row.New(3).Add(line.NewCol(12)),
	}
}

// Column widths of the 9-column item table, totalling maroto's 12 grid units.
var itemWidths = []int{3, 1, 1, 1, 1, 2, 1, 1, 1}

// Numeric columns start at Qty; everything from there is right-aligned.
const firstNumericColumn = 2

func (r *Renderer) itemHeaderRows(l Layout) []core.Row {
	header := make([]core.Col, 0, len(l.Columns))
	for i, name := range l.Columns {
		alignProp := align.Left
		if i >= firstNumericColumn {
			alignProp = align.Right
		}
		header = append(header, col.New(itemWidths[i]).Add(
			text.New(name, props.Text{Size: 8, Style: fontstyle.Bold, Align: alignProp}),
		))
	}
	return []core.Row{
		row.New(7).Add(header...),
		row.New(2).Add(line.NewCol(12)),
	}
}

func (r *Renderer) addItemRows(m core.Maroto, l Layout) {
	for _, rowData := range l.Rows {
		cells := []string{
			rowData.Description, rowData.HSNCode, rowData.Quantity,
			rowData.Unit, rowData.Rate, rowData.TaxableValue,
			rowData.CGST, rowData.SGST, rowData.Amount,
		}
		cols := make([]core.Col, 0, len(cells))
		for i, cell := range cells {
			alignProp := align.Left
			if i >= firstNumericColumn {
				alignProp = align.Right
			}
			cols = append(cols, col.New(itemWidths[i]).Add(
				text.New(cell, props.Text{Size: 8, Align: alignProp}),
			))
		}
		m.AddRow(6, cols...)
	}
	m.AddRow(2, line.NewCol(12))
}

func (r *Renderer) addSummary(m core.Maroto, l Layout) {
	for _, s := range l.Summary {
		style := fontstyle.Normal
		size := 8.0
		if s.Bold {
			style = fontstyle.Bold
			size = 10
		}
		m.AddRow(5,
			col.New(8),
			col.New(2).Add(text.New(s.Label, props.Text{Size: size, Style: style, Align: align.Right})),
			col.New(2).Add(text.New(s.Value, props.Text{Size: size, Style: style, Align: align.Right})),
		)
	}
}

func (r *Renderer) addHSNSummary(m core.Maroto, l Layout) {
	m.AddRow(8, col.New(12).Add(
		text.New("HSN/SAC Summary", props.Text{Size: 8, Style: fontstyle.Bold, Top: 3}),
	))
	headers := []string{"HSN/SAC", "Taxable Value", "CGST", "SGST", "Total Tax"}
	headerCols := make([]core.Col, 0, len(headers))
	for i, h := range headers {
		alignProp := align.Right
		if i == 0 {
			alignProp = align.Left
		}
		headerCols = append(headerCols, col.New(2).Add(
			text.New(h, props.Text{Size: 7, Style: fontstyle.Bold, Align: alignProp}),
		))
	}
	m.AddRow(6, append(headerCols, col.New(2))...)

	for _, h := range l.HSNRows {
		style := fontstyle.Normal
		if h.Code == "Total" {
			style = fontstyle.Bold
		}
		m.AddRows(row.New(5).Add(
			col.New(2).Add(text.New(h.Code, props.Text{Size: 7, Style: style})),
			col.New(2).Add(text.New(h.Taxable, props.Text{Size: 7, Style: style, Align: align.Right})),
			col.New(2).Add(text.New(h.CGST, props.Text{Size: 7, Style: style, Align: align.Right})),
			col.New(2).Add(text.New(h.SGST, props.Text{Size: 7, Style: style, Align: align.Right})),
			col.New(2).Add(text.New(h.Tax, props.Text{Size: 7, Style: style, Align: align.Right})),
			col.New(2),
		))
	}
}

func (r *Renderer) addFooter(m core.Maroto, l Layout) {
	m.AddRow(3, line.NewCol(12))
	m.AddRow(16,
		col.New(7).Add(
			text.New("Terms", props.Text{Size: 7}),
			text.New(l.Terms, props.Text{Size: 7, Top: 3}),
			text.New(l.Bank, props.Text{Size: 7, Top: 9}),
		),
		col.New(5).Add(
			text.New(l.Signature, props.Text{Size: 8, Align: align.Right}),
			text.New("Authorised Signatory", props.Text{Size: 8, Align: align.Right, Top: 12}),
		),
	)
}
