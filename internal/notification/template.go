package notification

import (
	"bytes"
	"html/template"
)

// layoutHTML wraps every notification body. Each message template defines
// "content"; {{.Title}} and all field values are auto-escaped by html/template.
const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f4f5;
     font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#f4f4f5;padding:40px 16px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:600px;width:100%;">
          <tr>
            <td style="background-color:#0f172a;padding:24px 40px;border-radius:12px 12px 0 0;">
              <span style="font-size:18px;font-weight:700;color:#ffffff;">Inventory</span>
              <span style="display:block;font-size:11px;color:#94a3b8;margin-top:2px;">Stock notifications</span>
            </td>
          </tr>
          <tr>
            <td style="background-color:#ffffff;padding:32px 40px;font-size:14px;line-height:1.6;color:#374151;">
{{template "content" .}}
            </td>
          </tr>
          <tr>
            <td style="background-color:#f9fafb;padding:16px 40px;border-top:1px solid #e5e7eb;
                       border-radius:0 0 12px 12px;font-size:12px;color:#9ca3af;">
              Automated message from the inventory system. Do not reply.
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>
{{end}}`

const restockHTML = `{{define "content"}}<h2 style="margin:0 0 16px;font-size:18px;color:#111827;">Restock Confirmation</h2>
<p style="margin:0 0 16px;">The product <strong>{{.Name}}</strong> has been restocked.</p>
<table cellpadding="6" cellspacing="0" role="presentation" style="border-collapse:collapse;">
<tr><th align="left">Product Name:</th><td>{{.Name}}</td></tr>
<tr><th align="left">SKU:</th><td>{{.SKU}}</td></tr>
<tr><th align="left">Previous Stock:</th><td>{{.PreviousStock}} units</td></tr>
<tr><th align="left">Restocked Amount:</th><td>{{.RestockAmount}} units</td></tr>
<tr><th align="left">New Stock:</th><td>{{.NewStock}} units</td></tr>
</table>{{end}}`

const lowStockHTML = `{{define "content"}}<h2 style="margin:0 0 16px;font-size:18px;color:#b91c1c;">Low Stock Alert</h2>
<p style="margin:0 0 16px;">The product <strong>{{.Name}}</strong> is at or below its reorder threshold. Consider placing a new order.</p>
<table cellpadding="6" cellspacing="0" role="presentation" style="border-collapse:collapse;">
<tr><th align="left">Product Name:</th><td>{{.Name}}</td></tr>
<tr><th align="left">SKU:</th><td>{{.SKU}}</td></tr>
<tr><th align="left">Current Stock:</th><td>{{.Stock}} units</td></tr>
<tr><th align="left">Threshold:</th><td>{{.Threshold}} units</td></tr>
<tr><th align="left">Cost Price:</th><td>{{.CostPrice}}</td></tr>
</table>{{end}}`

var (
	layoutTmpl   = template.Must(template.New("email").Parse(layoutHTML))
	restockTmpl  = template.Must(template.Must(layoutTmpl.Clone()).Parse(restockHTML))
	lowStockTmpl = template.Must(template.Must(layoutTmpl.Clone()).Parse(lowStockHTML))
)

type restockView struct {
	Title         string
	Name          string
	SKU           string
	PreviousStock int
	RestockAmount int
	NewStock      int
}

type lowStockView struct {
	Title     string
	Name      string
	SKU       string
	Stock     int
	Threshold int
	CostPrice string
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
