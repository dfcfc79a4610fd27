package quote

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"
)

// ItemDetail is a priced line item supplied by the caller in a quote
// submission. Price and Total are in cents. The values come from the client
// form, not from the stored wishlist.
type ItemDetail struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Total    int64  `json:"total"`
}

// Submission is the caller-supplied payload for a quote email: an open set
// of named form fields plus an optional list of priced items.
type Submission struct {
	Fields       map[string]string
	ItemsDetails []ItemDetail
}

// HasItems reports whether the submission carries wishlist items.
func (s Submission) HasItems() bool {
	return len(s.ItemsDetails) > 0
}

// Title returns the email title for the submission.
func (s Submission) Title() string {
	if s.HasItems() {
		return "Wishlist Submission"
	}
	return "Quote Request"
}

type fieldRow struct {
	Label string
	Value string
}

type itemRow struct {
	Name       string
	Image      string
	Quantity   int
	Price      string
	Total      string
	ProductURL string
}

type emailData struct {
	Title      string
	ReceivedAt string
	Fields     []fieldRow
	Items      []itemRow
	GrandTotal string
	HasItems   bool
}

var emailTmpl = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
</head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; background-color: #f9fafb; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 10px auto; background-color: #ffffff; padding: 30px; border-radius: 10px; box-shadow: 0 4px 6px rgba(0,0,0,0.05);">
    <div style="text-align: center; margin-bottom: 30px; padding-bottom: 20px; border-bottom: 1px solid #e2e8f0;">
      <h1 style="color: #1e293b; margin-top: 0; margin-bottom: 10px; font-size: 24px;">{{.Title}}</h1>
      <p style="color: #64748b; margin: 0;">Received on {{.ReceivedAt}}</p>
    </div>
{{if .Fields}}
    <div style="margin-bottom: 30px; background-color: #f8fafc; border-radius: 8px; padding: 20px;">
      <h2 style="color: #1e293b; margin-top: 0; margin-bottom: 15px; font-size: 18px; border-bottom: 2px solid #e2e8f0; padding-bottom: 10px;">Request Details</h2>
      <table style="width: 100%; border-collapse: collapse;">
{{range .Fields}}        <tr>
          <td style="padding: 8px 15px; border-bottom: 1px solid #e2e8f0; font-weight: 600; width: 40%;">{{.Label}}</td>
          <td style="padding: 8px 15px; border-bottom: 1px solid #e2e8f0;">{{.Value}}</td>
        </tr>
{{end}}      </table>
    </div>
{{end}}
    <div style="margin-bottom: 30px; background-color: #f8fafc; border-radius: 8px; padding: 20px;">
      <h2 style="color: #1e293b; margin-top: 0; margin-bottom: 15px; font-size: 18px; border-bottom: 2px solid #e2e8f0; padding-bottom: 10px;">Wishlist Items</h2>
{{if .HasItems}}
      <table style="width: 100%; border-collapse: collapse; margin: 20px auto;">
        <thead>
          <tr style="background-color: #f1f5f9;">
            <th style="padding: 12px 15px; text-align: left; border-bottom: 2px solid #e2e8f0;">Product</th>
            <th style="padding: 12px 15px; text-align: center; border-bottom: 2px solid #e2e8f0;">Price Per Unit</th>
            <th style="padding: 12px 15px; text-align: right; border-bottom: 2px solid #e2e8f0;">Total Price</th>
            <th style="padding: 12px 15px; text-align: right; border-bottom: 2px solid #e2e8f0;">View Product</th>
          </tr>
        </thead>
        <tbody>
{{range .Items}}          <tr>
            <td style="padding: 12px 15px; border-bottom: 1px solid #e2e8f0;">
              <img src="{{.Image}}" alt="{{.Name}}" style="width: 50px; height: 50px; object-fit: cover; margin-right: 10px;" />
              <div>
                <strong>{{.Name}}</strong><br>
                <span style="color: #64748b; font-size: 14px;">Quantity: {{.Quantity}}</span>
              </div>
            </td>
            <td style="padding: 12px 15px; border-bottom: 1px solid #e2e8f0; text-align: right;">{{.Price}}</td>
            <td style="padding: 12px 15px; border-bottom: 1px solid #e2e8f0; text-align: right;">{{.Total}}</td>
            <td style="padding: 12px 15px; border-bottom: 1px solid #e2e8f0; text-align: right;"><a href="{{.ProductURL}}">View Product</a></td>
          </tr>
{{end}}        </tbody>
        <tfoot>
          <tr>
            <td colspan="3" style="padding: 12px 15px; text-align: right; font-weight: 600; border-top: 2px solid #e2e8f0;">Total:</td>
            <td style="padding: 12px 15px; text-align: right; font-weight: 600; border-top: 2px solid #e2e8f0;">{{.GrandTotal}}</td>
          </tr>
        </tfoot>
      </table>
{{else}}
      <p style="color: #64748b; font-style: italic;">No wishlist items included in this submission.</p>
{{end}}
    </div>
    <div style="margin-top: 40px; padding-top: 20px; border-top: 1px solid #e2e8f0; text-align: center; color: #94a3b8; font-size: 14px;">
      <p>All rights reserved, @2025 Diamond Cartel</p>
    </div>
  </div>
</body>
</html>
`))

// ComposeSummaryMessage renders the owner email body for a submission and
// returns it with the computed grand total in cents. Pure function: it never
// touches stored wishlist state and works only on the caller-supplied data.
func ComposeSummaryMessage(sub Submission, frontendURL string, now time.Time) (string, int64, error) {
	var grandTotal int64

	data := emailData{
		Title:      sub.Title(),
		ReceivedAt: now.Format("1/2/2006 at 3:04:05 PM"),
		HasItems:   sub.HasItems(),
	}

	keys := make([]string, 0, len(sub.Fields))
	for k := range sub.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if sub.Fields[k] == "" {
			continue
		}
		data.Fields = append(data.Fields, fieldRow{
			Label: formatLabel(k),
			Value: sub.Fields[k],
		})
	}

	for _, item := range sub.ItemsDetails {
		grandTotal += item.Price * int64(item.Quantity)
		data.Items = append(data.Items, itemRow{
			Name:       item.Name,
			Image:      item.Image,
			Quantity:   item.Quantity,
			Price:      FormatCents(item.Price),
			Total:      FormatCents(item.Total),
			ProductURL: strings.TrimSuffix(frontendURL, "/") + "/product/" + item.ID,
		})
	}

	data.GrandTotal = FormatCents(grandTotal)

	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, data); err != nil {
		return "", 0, fmt.Errorf("render quote email: %w", err)
	}

	return buf.String(), grandTotal, nil
}

// FormatCents renders a cent amount as a dollar string, e.g. 123456 -> "$1234.56".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// formatLabel turns a snake_case form key into a display label,
// e.g. "phone_number" -> "Phone Number".
func formatLabel(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
