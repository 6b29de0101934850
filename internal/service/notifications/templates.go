package notifications

import (
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

type reservationView struct {
	Date       string
	StartTime  string
	EndTime    string
	Offering   string
	Price      string
	PaidByPass bool
	Code       string
	ValidFrom  string
	ValidUntil string
	Cancelled  bool
}

type passView struct {
	Name         string
	ClassCount   int
	ValidityDays int
	Price        string
}

const reservationText = `{{if .Cancelled}}Tu reserva ha sido cancelada.{{else}}Tu reserva está confirmada.{{end}}

Fecha: {{.Date}}
Horario: {{.StartTime}} - {{.EndTime}}
Servicio: {{.Offering}}
{{if .PaidByPass}}Pagado con bono{{else}}Importe: {{.Price}}{{end}}
{{if and (not .Cancelled) .Code}}
Código de acceso: {{.Code}}
Válido de {{.ValidFrom}} a {{.ValidUntil}}
{{else if not .Cancelled}}
Te enviaremos el código de acceso en cuanto esté disponible.
{{end}}`

const reservationHTML = `<p>{{if .Cancelled}}Tu reserva ha sido cancelada.{{else}}Tu reserva está confirmada.{{end}}</p>
<ul>
<li>Fecha: {{.Date}}</li>
<li>Horario: {{.StartTime}} - {{.EndTime}}</li>
<li>Servicio: {{.Offering}}</li>
<li>{{if .PaidByPass}}Pagado con bono{{else}}Importe: {{.Price}}{{end}}</li>
</ul>
{{if and (not .Cancelled) .Code}}<p>Código de acceso: <strong>{{.Code}}</strong><br>Válido de {{.ValidFrom}} a {{.ValidUntil}}</p>{{end}}`

const passText = `Gracias por tu compra.

Bono: {{.Name}}
Clases: {{.ClassCount}}
Validez: {{.ValidityDays}} días desde el primer uso
Importe: {{.Price}}
`

const passHTML = `<p>Gracias por tu compra.</p>
<ul>
<li>Bono: {{.Name}}</li>
<li>Clases: {{.ClassCount}}</li>
<li>Validez: {{.ValidityDays}} días desde el primer uso</li>
<li>Importe: {{.Price}}</li>
</ul>`

var (
	reservationTextTmpl = texttemplate.Must(texttemplate.New("reservation.txt").Parse(reservationText))
	reservationHTMLTmpl = htmltemplate.Must(htmltemplate.New("reservation.html").Parse(reservationHTML))
	passTextTmpl        = texttemplate.Must(texttemplate.New("pass.txt").Parse(passText))
	passHTMLTmpl        = htmltemplate.Must(htmltemplate.New("pass.html").Parse(passHTML))
)

func render(text *texttemplate.Template, html *htmltemplate.Template, data interface{}) (string, string, error) {
	var t, h strings.Builder
	if err := text.Execute(&t, data); err != nil {
		return "", "", err
	}
	if err := html.Execute(&h, data); err != nil {
		return "", "", err
	}
	return t.String(), h.String(), nil
}
