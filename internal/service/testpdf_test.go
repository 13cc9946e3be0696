package service

import (
	"bytes"
	"crypto/md5"
	"crypto/rc4"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
)

// passwordPad is the 32 byte padding string of the standard security handler.
var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// helveticaWidths holds the Helvetica advance widths of codes 32 to 126 in
// thousandths of the font size.
var helveticaWidths = [...]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

// glyphWidth is the advance of r at the given font size.
func glyphWidth(r rune, size float64) float64 {
	if r < 32 || int(r-32) >= len(helveticaWidths) {
		return 0
	}
	return float64(helveticaWidths[r-32]) / 1000 * size
}

func fontWidthsArray() string {
	ws := make([]string, len(helveticaWidths))
	for i, w := range helveticaWidths {
		ws[i] = fmt.Sprint(w)
	}
	return "[" + strings.Join(ws, " ") + "]"
}

// buildPDF writes a minimal PDF with one page per content stream. An empty
// stream produces a page without /Contents. A non-empty userPassword encrypts
// the file with 40-bit RC4; encrypted files must not carry content streams.
func buildPDF(t *testing.T, pages []string, userPassword string) []byte {
	t.Helper()

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	objects = append(objects, "") // page tree, filled in below
	objects = append(objects, fmt.Sprintf(
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar %d /Widths %s >>",
		32+len(helveticaWidths)-1, fontWidthsArray(),
	))

	var kids []string
	for _, content := range pages {
		pageNum := len(objects) + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
		page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >>"
		if content == "" {
			objects = append(objects, page+" >>")
			continue
		}
		if userPassword != "" {
			t.Fatal("buildPDF: encrypted pages cannot carry content")
		}
		objects = append(objects, fmt.Sprintf("%s /Contents %d 0 R >>", page, pageNum+1))
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	extra := ""
	if userPassword != "" {
		extra = " " + encryptionEntries(userPassword, "owner-"+userPassword)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, extra, xref)
	return buf.Bytes()
}

// encryptionEntries returns the /Encrypt and /ID trailer entries of a
// revision 2 standard security handler.
func encryptionEntries(user, owner string) string {
	permissions := int32(-44)
	id := []byte("statement-reader")

	ownerKey := md5.Sum(padPassword(owner))
	o := rc4Crypt(ownerKey[:5], padPassword(user))

	p := uint32(permissions)
	h := md5.New()
	h.Write(padPassword(user))
	h.Write(o)
	h.Write([]byte{byte(p), byte(p >> 8), byte(p >> 16), byte(p >> 24)})
	h.Write(id)
	key := h.Sum(nil)[:5]
	u := rc4Crypt(key, passwordPad)

	return fmt.Sprintf(
		"/Encrypt << /Filter /Standard /V 1 /R 2 /Length 40 /O <%s> /U <%s> /P %d >> /ID [<%s> <%s>]",
		hex.EncodeToString(o), hex.EncodeToString(u), permissions,
		hex.EncodeToString(id), hex.EncodeToString(id),
	)
}

func padPassword(pw string) []byte {
	b := append([]byte(pw), passwordPad...)
	return b[:32]
}

func rc4Crypt(key, data []byte) []byte {
	c, err := rc4.NewCipher(key)
	if err != nil {
		panic(err)
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out
}

// textAt places one run of 10pt text with its baseline at (x, y).
func textAt(x, y float64, s string) string {
	return sizedTextAt(x, y, 10, s)
}

func sizedTextAt(x, y, size float64, s string) string {
	return fmt.Sprintf("BT /F1 %g Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", size, x, y, s)
}

// ruleAt draws a thin horizontal rule centred on y.
func ruleAt(x0, x1, y float64) string {
	return fmt.Sprintf("%g %g %g 0.5 re f\n", x0, y-0.25, x1-x0)
}

// statementPage draws a ruled 10pt table: the header then one row per entry,
// with columns at x = 60, 160, 300, 400.
func statementPage(rows ...[]string) string {
	return sizedStatementPage(10, rows...)
}

func sizedStatementPage(size float64, rows ...[]string) string {
	xs := []float64{60, 160, 300, 400}
	var b strings.Builder
	y := 715.0
	b.WriteString(ruleAt(50, 460, y))
	for _, row := range rows {
		for i, cell := range row {
			if i < len(xs) {
				b.WriteString(sizedTextAt(xs[i], y-15, size, cell))
			}
		}
		y -= 20
		b.WriteString(ruleAt(50, 460, y))
	}
	return b.String()
}
