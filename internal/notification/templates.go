package notification

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

type mailTemplate struct {
	subject *texttemplate.Template
	body    *template.Template
}

const layout = `<!doctype html><html><body style="font-family:sans-serif">{{template "content" .}}<p>TecoTransit</p></body></html>`

var templates = map[Kind]mailTemplate{
	KindStatusConfirmed: parse("Your TecoTransit trip is confirmed", `
<p>Hi {{.name}},</p>
<p>Your trip from <b>{{.pickup}}</b> to <b>{{.destination}}</b> on <b>{{.confirmed_date}}</b> is confirmed.</p>
<p>Vehicle: {{.vehicle_type}}. Booking reference: {{.booking_id}}.</p>`),
	KindStatusCancelled: parse("Your TecoTransit booking was cancelled", `
<p>Hi {{.name}},</p>
<p>Your booking {{.booking_id}} from {{.pickup}} to {{.destination}} on {{.date}} has been cancelled.</p>
{{if .payment_reference}}<p>If you paid for this trip our team will contact you about a refund.</p>{{end}}`),
	KindBookingReceived: parse("We received your TecoTransit booking", `
<p>Hi {{.name}},</p>
<p>We received your booking from {{.pickup}} to {{.destination}} for {{.date}} ({{.vehicle_type}}).</p>
<p>Status: {{.status}}. Fare: {{.total_fare}}.</p>
<p>You will get another email once your vehicle is full and the trip is confirmed.</p>`),
	KindRescheduled: parse("Your TecoTransit trip was rescheduled", `
<p>Hi {{.name}},</p>
<p>Your trip from {{.pickup}} to {{.destination}} has been moved to <b>{{.date}}</b>.</p>
<p>Booking reference: {{.booking_id}}.</p>`),
	KindRefundRequest: parse("Refund requested for booking {{.booking_id}}", `
<p>A refund was requested for a cancelled booking.</p>
<ul>
<li>Booking: {{.booking_id}}</li>
<li>Customer: {{.name}} ({{.email}}, {{.phone}})</li>
<li>Payment reference: {{.payment_reference}}</li>
<li>Amount: {{.total_fare}}</li>
</ul>`),
	KindCapacityOverflow: parse("Booking {{.booking_id}} could not be assigned to a trip", `
<p>Booking {{.booking_id}} has no trip.</p>
<p>Reason: {{.reason}}</p>
<p>Add vehicles for the route or contact the customer, then run a resync.</p>`),
}

func parse(subject, content string) mailTemplate {
	t := template.Must(template.New("layout").Option("missingkey=zero").Parse(layout))
	template.Must(t.New("content").Parse(content))
	return mailTemplate{
		subject: texttemplate.Must(texttemplate.New("subject").Option("missingkey=zero").Parse(subject)),
		body:    t,
	}
}

// Render returns the subject and HTML body for m.
func Render(m Message) (string, string, error) {
	tpl, ok := templates[m.Kind]
	if !ok {
		return "", "", fmt.Errorf("no template for kind %q", m.Kind)
	}

	var subject bytes.Buffer
	if err := tpl.subject.Execute(&subject, m.Data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", m.Kind, err)
	}

	var buf bytes.Buffer
	if err := tpl.body.ExecuteTemplate(&buf, "layout", m.Data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", m.Kind, err)
	}
	return subject.String(), buf.String(), nil
}
