package pdf

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"tasklist/internal/models"
)

// Exporter renders a task list as a PDF document.
type Exporter interface {
	ExportTaskList(w io.Writer, list *models.TaskList) error
}

type TaskListExporter struct {
	FontPath string // TTF with Cyrillic glyphs, e.g. "assets/fonts/DejaVuSans.ttf"
	now      func() time.Time
}

func NewTaskListExporter(fontPath string) *TaskListExporter {
	return &TaskListExporter{FontPath: fontPath, now: time.Now}
}

type column struct {
	title string
	width float64
}

var columns = []column{
	{"Task", 80},
	{"Status", 30},
	{"Priority", 25},
	{"Due", 35},
}

func (g *TaskListExporter) ExportTaskList(w io.Writer, list *models.TaskList) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(list.Title, true)
	pdf.SetAuthor("tasklist", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	font, tr := g.setupFont(pdf)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(0, 10, tr(list.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(0, 6, "Exported "+g.now().UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	if list.Description.Valid {
		pdf.Ln(2)
		pdf.SetFont(font, "", 11)
		pdf.MultiCell(0, 6, tr(list.Description.String), "", "L", false)
	}
	hr(pdf)

	pdf.SetFont(font, "", 11)
	pdf.CellFormat(0, 6, summary(list.Tasks), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if len(list.Tasks) == 0 {
		pdf.SetFont(font, "I", 11)
		pdf.CellFormat(0, 8, "No tasks", "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont(font, "B", 11)
		pdf.SetFillColor(230, 230, 230)
		for _, col := range columns {
			pdf.CellFormat(col.width, 8, col.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont(font, "", 10)
		for _, t := range list.Tasks {
			due := ""
			if t.DueDate.Valid {
				due = t.DueDate.Time.Format("2006-01-02")
			}
			cells := []string{tr(t.Title), string(t.Status), string(t.Priority), due}
			for i, col := range columns {
				pdf.CellFormat(col.width, 7, fit(pdf, cells[i], col.width-2), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render task list: %w", err)
	}
	return pdf.Output(w)
}

// setupFont registers the UTF-8 font when the file exists. Otherwise it falls
// back to a core font and a cp1252 translator, which drops unsupported glyphs.
func (g *TaskListExporter) setupFont(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			pdf.AddUTF8Font("DejaVu", "", g.FontPath)
			pdf.AddUTF8Font("DejaVu", "B", g.FontPath)
			pdf.AddUTF8Font("DejaVu", "I", g.FontPath)
			return "DejaVu", func(s string) string { return s }
		}
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

func summary(tasks []models.Task) string {
	counts := map[models.TaskStatus]int{}
	for _, t := range tasks {
		counts[t.Status]++
	}
	return fmt.Sprintf("%d tasks: %d pending, %d in progress, %d completed",
		len(tasks), counts[models.StatusPending], counts[models.StatusInProgress], counts[models.StatusCompleted])
}

func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
