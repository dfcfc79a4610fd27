package quote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderTime = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func TestComposeSummaryMessage_WithItems(t *testing.T) {
	sub := Submission{
		Fields: map[string]string{
			"full_name":    "Jordan Avery",
			"phone_number": "+1 555 0100",
			"notes":        "",
		},
		ItemsDetails: []ItemDetail{
			{ID: "prod-1", Name: "Halo Pendant", Image: "https://cdn.example.com/p1.jpg", Price: 45000, Quantity: 2, Total: 90000},
			{ID: "prod-2", Name: "Stud Earrings", Image: "https://cdn.example.com/p2.jpg", Price: 19900, Quantity: 1, Total: 19900},
		},
	}

	html, total, err := ComposeSummaryMessage(sub, "https://shop.example.com/", renderTime)
	require.NoError(t, err)

	assert.Equal(t, int64(2*45000+19900), total)
	assert.Contains(t, html, "Wishlist Submission")
	assert.Contains(t, html, "Full Name")
	assert.Contains(t, html, "Jordan Avery")
	assert.Contains(t, html, "Phone Number")
	assert.Contains(t, html, "Halo Pendant")
	assert.Contains(t, html, "$450.00")
	assert.Contains(t, html, "$1099.00")
	assert.Contains(t, html, "https://shop.example.com/product/prod-1")
	// Empty form values are dropped.
	assert.NotContains(t, html, "Notes")
}

func TestComposeSummaryMessage_WithoutItems(t *testing.T) {
	sub := Submission{
		Fields: map[string]string{"email": "jordan@example.com"},
	}

	html, total, err := ComposeSummaryMessage(sub, "https://shop.example.com", renderTime)
	require.NoError(t, err)

	assert.Equal(t, int64(0), total)
	assert.Contains(t, html, "Quote Request")
	assert.Contains(t, html, "No wishlist items included in this submission.")
	assert.NotContains(t, html, "Wishlist Submission")
}

func TestComposeSummaryMessage_EscapesHTML(t *testing.T) {
	sub := Submission{
		Fields: map[string]string{"name": "<script>alert(1)</script>"},
	}

	html, _, err := ComposeSummaryMessage(sub, "https://shop.example.com", renderTime)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestSubmission_Title(t *testing.T) {
	assert.Equal(t, "Quote Request", Submission{}.Title())
	assert.Equal(t, "Wishlist Submission", Submission{
		ItemsDetails: []ItemDetail{{ID: "p"}},
	}.Title())
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCents(0))
	assert.Equal(t, "$0.05", FormatCents(5))
	assert.Equal(t, "$12.34", FormatCents(1234))
	assert.Equal(t, "-$1.50", FormatCents(-150))
}
