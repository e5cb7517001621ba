package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/salvaalejos/ceitm-web/internal/models"
)

// ApplicationPDF renders a scholarship application into the institutional
// one-page request document.
type ApplicationPDF struct{}

// NewApplicationPDF constructs the renderer.
func NewApplicationPDF() *ApplicationPDF {
	return &ApplicationPDF{}
}

// Render produces the PDF bytes for the given application.
func (e *ApplicationPDF) Render(app *models.ScholarshipApplication, scholarshipName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 25)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		pdf.SetY(15)
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr("INSTITUTO TECNOLÓGICO DE MORELIA"), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 6, "CONSEJO ESTUDIANTIL (CEITM)", "", 1, "C", false, 0, "")
		pdf.Ln(5)
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, "SOLICITUD DE BECA", "", 1, "C", false, 0, "")
		pdf.SetDrawColor(100, 100, 100)
		pdf.Line(10, pdf.GetY()+2, 200, pdf.GetY()+2)
		pdf.Ln(10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-20)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footer := fmt.Sprintf("Página %d/{nb} - Documento generado digitalmente por la plataforma del CEITM el %s",
			pdf.PageNo(), time.Now().Format("02/01/2006 15:04"))
		pdf.CellFormat(0, 10, tr(footer), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	section := func(title string) {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 8, tr(title), "1", 1, "L", true, 0, "")
		pdf.Ln(2)
	}
	row := func(label, value string, wLabel, wValue float64, newline bool) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(wLabel, 7, tr(label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		if len(value) > 45 && wValue < 100 {
			value = value[:42] + "..."
		}
		ln := 0
		if newline {
			ln = 1
		}
		pdf.CellFormat(wValue, 7, tr(value), "", ln, "", false, 0, "")
	}
	str := func(p *string) string {
		if p == nil {
			return "-"
		}
		return *p
	}

	section("1. Datos Generales del Solicitante")
	row("Nombre Completo:", app.FullName, 40, 100, true)
	row("No. de Control:", app.ControlNumber, 40, 40, false)
	row("Teléfono:", app.PhoneNumber, 25, 40, true)
	row("Carrera:", app.Career, 40, 100, true)
	row("Semestre:", app.Semester, 40, 40, false)
	row("Correo Inst:", app.Email, 25, 60, true)
	if app.CLEControlNumber != nil {
		row("Control CLE:", str(app.CLEControlNumber), 30, 30, false)
		row("Nivel:", str(app.LevelToEnter), 15, 30, true)
	}
	pdf.Ln(4)

	section("2. Datos Socioeconómicos")
	row("Domicilio:", app.Address, 40, 150, true)
	row("Domicilio de Origen:", app.OriginAddress, 40, 150, true)
	row("Dependencia Econ.:", app.EconomicDependence, 40, 60, false)
	row("Dependientes:", fmt.Sprintf("%d", app.DependentsCount), 30, 20, true)
	row("Ingreso Familiar:", fmt.Sprintf("$%.2f", app.FamilyIncome), 40, 40, false)
	row("Ingreso Per Cápita:", fmt.Sprintf("$%.2f", app.IncomePerCapita), 40, 40, true)
	pdf.Ln(4)

	section("3. Motivos")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, tr(app.Motives), "", "L", false)
	pdf.Ln(4)

	section("4. Convocatoria y Estado")
	row("Convocatoria:", scholarshipName, 40, 130, true)
	row("Estado:", string(app.Status), 40, 60, true)
	if app.ReleaseFolio != nil {
		row("Folio de Liberación:", *app.ReleaseFolio, 40, 60, true)
	}
	if app.AdminComments != nil {
		row("Observaciones:", *app.AdminComments, 40, 150, true)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render application pdf: %w", err)
	}
	return buf.Bytes(), nil
}
