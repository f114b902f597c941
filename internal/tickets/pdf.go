package tickets

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
)

// RenderPDF renders the boleta and returns the file bytes and its name.
func RenderPDF(b *Boleta) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Boleta "+b.ReservationID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "MOVITEX - BOLETA DE VIAJE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Reserva   : " + b.ReservationID,
		"Servicio  : " + safe(b.Trip.ServiceTier, "-"),
		"Ruta      : " + safe(b.Trip.Origin, "-") + " - " + safe(b.Trip.Destination, "-"),
		"Fecha     : " + safe(b.Trip.Date, "-"),
		"Salida    : " + safe(b.Trip.DepartureTime, "-"),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(20, 8, "Asiento", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 8, "Pasajero", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Documento", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Precio", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, p := range b.Passengers {
		pdf.CellFormat(20, 8, p.SeatNumber, "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 8, p.FullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, p.DocumentNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, formatSoles(p.Price), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Pasajeros: %d    Total: %s", b.PassengerCount, formatSoles(b.TotalPrice)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Presente este documento y su DNI al momento del embarque.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render boleta: %w", err)
	}
	return buf.Bytes(), boletaFilename(b.ReservationID), nil
}

// boletaFilename keeps only [A-Za-z0-9-] so the name is safe inside a
// Content-Disposition header.
func boletaFilename(reservationID string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return -1
	}, reservationID)
	if clean == "" {
		return "boleta.pdf"
	}
	return "boleta-" + clean + ".pdf"
}

func formatSoles(v float64) string {
	return fmt.Sprintf("S/ %.2f", v)
}

func safe(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
