package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator — интерфейс (удобно мокать в тестах)
type Generator interface {
	GenerateReceipt(data ReceiptData) (string, error)
}

type ReceiptData struct {
	UserID        int64
	Name          string
	Email         string
	College       string
	PaymentStatus string
	PaymentID     string
	CreatedAt     time.Time
	Filename      string // имя файла (без путей); если пусто — сгенерируем
}

// ReceiptGenerator пишет PDF-квитанции в RootDir.
type ReceiptGenerator struct {
	RootDir  string // корень хранения, например "./files"
	FontPath string // путь до TTF; если пусто — встроенный Helvetica
	fontName string
}

func NewReceiptGenerator(rootDir, fontPath string) *ReceiptGenerator {
	g := &ReceiptGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "Helvetica",
	}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *ReceiptGenerator) GenerateReceipt(data ReceiptData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("receipt_user_%d.pdf", data.UserID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Registration receipt #%d", data.UserID), false)
	pdf.SetAuthor("Blind Dating", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addFont(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "REGISTRATION RECEIPT", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("No. BD-%06d  /  %s", data.UserID, data.CreatedAt.Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.Ln(3)

	g.sectionTitle(pdf, "Participant")
	g.kvLine(pdf, "Name", data.Name)
	g.kvLine(pdf, "Email", data.Email)
	g.kvLine(pdf, "College", data.College)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Payment")
	g.kvLine(pdf, "Status", data.PaymentStatus)
	g.kvLine(pdf, "Payment ID", data.PaymentID)
	pdf.Ln(1)

	pdf.SetFont(g.fontName, "", 11)
	note := "This document confirms the registration for the Blind Dating matching round. " +
		"Keep the payment id for any support requests."
	pdf.MultiCell(0, 6, note, "", "L", false)
	pdf.Ln(2)
	g.hr(pdf)

	// нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return absPath, nil
}

// ===== helpers =====

func (g *ReceiptGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // безопасность
	return filepath.Join(g.RootDir, filename), nil
}

func (g *ReceiptGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return // встроенные шрифты
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

func (g *ReceiptGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReceiptGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReceiptGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
