package render

import (
	"strconv"

	"github.com/celerix-dev/celerix-grid/pkg/filter"
	"github.com/celerix-dev/celerix-grid/pkg/schema"
)

// BasePath is the root of the fragment endpoints served by the grid frontend.
const BasePath = "/grid/records"

// Element ids the fragments are swapped into.
const (
	RecordsTableID = "records-table"
	ErrorsID       = "grid-errors"
)

func RecordsURL() string { return BasePath }

func RecordURL(id int64) string { return BasePath + "/" + strconv.FormatInt(id, 10) }

// EditURL moves a cell into edit mode.
func EditURL(id int64, f schema.Field) string { return RecordURL(id) + "/edit/" + string(f) }

// ViewURL returns a cell to display mode without saving.
func ViewURL(id int64, f schema.Field) string { return RecordURL(id) + "/view/" + string(f) }

// FieldURL receives the submitted value of a cell.
func FieldURL(id int64, f schema.Field) string { return RecordURL(id) + "/field/" + string(f) }

// CellView is one field of one record in display mode. Error, when set, is shown
// next to the value after a failed save.
type CellView struct {
	ID    int64
	Field schema.Field
	Value string
	Error string
}

// NewCellView builds the display cell for field f of r.
func NewCellView(r schema.Record, f schema.Field) CellView {
	return CellView{ID: r.ID, Field: f, Value: r.Value(f)}
}

// DOMID is shared by the display and edit shapes of the same cell.
func (c CellView) DOMID() string { return cellDOMID(c.ID, c.Field) }

// Trigger opens the editor for this cell on click.
func (c CellView) Trigger() Trigger {
	return Trigger{Verb: VerbGet, URL: EditURL(c.ID, c.Field), Event: "click", Target: "closest td", Swap: SwapOuterHTML}
}

// EditView is one field of one record in edit mode. Original is the value shown
// before editing and is posted back so a failed save can restore it.
type EditView struct {
	ID       int64
	Field    schema.Field
	Value    string
	Original string
}

// NewEditView builds the edit cell for field f of r.
func NewEditView(r schema.Record, f schema.Field) EditView {
	v := r.Value(f)
	return EditView{ID: r.ID, Field: f, Value: v, Original: v}
}

func (e EditView) DOMID() string { return cellDOMID(e.ID, e.Field) }

func (e EditView) SaveTrigger() Trigger {
	return Trigger{Verb: VerbPut, URL: FieldURL(e.ID, e.Field), Event: "submit", Target: "closest td", Swap: SwapOuterHTML}
}

func (e EditView) CancelTrigger() Trigger {
	return Trigger{Verb: VerbGet, URL: ViewURL(e.ID, e.Field), Event: "click", Target: "closest td", Swap: SwapOuterHTML}
}

func cellDOMID(id int64, f schema.Field) string {
	return "record-" + strconv.FormatInt(id, 10) + "-" + string(f)
}

// RowView is a complete table row: one display cell per editable field and a delete control.
type RowView struct {
	ID    int64
	Cells []CellView
}

func NewRowView(r schema.Record) RowView {
	cells := make([]CellView, 0, len(schema.EditableFields))
	for _, f := range schema.EditableFields {
		cells = append(cells, NewCellView(r, f))
	}
	return RowView{ID: r.ID, Cells: cells}
}

func NewRowViews(records []schema.Record) []RowView {
	rows := make([]RowView, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewRowView(r))
	}
	return rows
}

func (r RowView) DOMID() string { return "record-" + strconv.FormatInt(r.ID, 10) }

func (r RowView) DeleteTrigger() Trigger {
	return Trigger{Verb: VerbDelete, URL: RecordURL(r.ID), Event: "click", Target: "closest tr", Swap: SwapOuterHTML}
}

// FilterInput is the filter box above one column.
type FilterInput struct {
	Field schema.Field
	Value string
}

// Name is the form name of the input, which the filter endpoint reads back.
func (f FilterInput) Name() string { return filter.FrontendPrefix + string(f.Field) }

func (f FilterInput) Trigger() Trigger {
	return Trigger{
		Verb:    VerbGet,
		URL:     RecordsURL(),
		Event:   "keyup changed delay:500ms",
		Target:  "#" + RecordsTableID,
		Swap:    SwapOuterHTML,
		Include: "[name^='" + filter.FrontendPrefix + "']",
	}
}

// PageView is the full grid page.
type PageView struct {
	Title   string
	Filters []FilterInput
	Rows    []RowView
	Error   string
}

// NewPageView builds the page for the given records and active filter.
func NewPageView(records []schema.Record, spec filter.Spec) PageView {
	filters := make([]FilterInput, 0, len(schema.EditableFields))
	for _, f := range schema.EditableFields {
		filters = append(filters, FilterInput{Field: f, Value: spec.Get(f)})
	}
	return PageView{
		Title:   "Employees - A CRUD Grid Demo",
		Filters: filters,
		Rows:    NewRowViews(records),
	}
}

// AddTrigger appends the created row to the table body.
func (p PageView) AddTrigger() Trigger {
	return Trigger{Verb: VerbPost, URL: RecordsURL(), Event: "submit", Target: "#" + RecordsTableID, Swap: SwapBeforeEnd}
}

// Fields lists the editable fields in column order.
func (p PageView) Fields() []schema.Field { return schema.EditableFields }

// RecordsView is the table body on its own, returned after a filter change.
type RecordsView struct {
	Rows []RowView
}

// BannerView is an error message placed in the page's error region.
type BannerView struct {
	Message string
}
