// Package receipt renders booking receipts as PDF.
package receipt

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	bookingdomain "github.com/luciodale/booking-portal-sub002/internal/booking/domain"
)

const rowHeight = 7

var (
	titleStyle = props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}
	labelStyle = props.Text{Size: 10, Style: fontstyle.Bold}
	valueStyle = props.Text{Size: 10, Align: align.Right}
	noteStyle  = props.Text{Size: 8, Style: fontstyle.Italic, Top: 4}
)

// Render produces the PDF receipt of a confirmed booking.
func Render(b *bookingdomain.Booking, propertyName string) ([]byte, error) {
	if b == nil || b.Status != bookingdomain.StatusConfirmed {
		return nil, bookingdomain.ErrReceiptNotReady
	}

	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRows(text.NewRow(14, "Booking receipt", titleStyle))

	line := func(label, value string) {
		m.AddRow(rowHeight,
			text.NewCol(6, label, labelStyle),
			text.NewCol(6, value, valueStyle),
		)
	}

	line("Booking", b.ID.String())
	line("Property", propertyName)
	line("Guest", guestLabel(b))
	line("Stay", fmt.Sprintf("%s to %s (%d nights)", b.CheckIn, b.CheckOut, b.Nights))
	line("Guests", fmt.Sprintf("%d", b.Guests))
	if b.ConfirmedAt != nil {
		line("Confirmed", b.ConfirmedAt.UTC().Format("2006-01-02 15:04 MST"))
	}

	line("Accommodation", Money(b.BaseTotalCents, b.Currency))
	if b.ExtrasCents > 0 {
		line("Extras", Money(b.ExtrasCents, b.Currency))
	}
	if b.CityTaxCents > 0 {
		line("City tax", Money(b.CityTaxCents, b.Currency))
	}
	m.AddRow(rowHeight+2,
		text.NewCol(6, "Total paid", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
		text.NewCol(6, Money(b.TotalCents, b.Currency), props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Top: 2}),
	)

	if b.WithholdingTaxCents > 0 {
		m.AddRows(text.NewRow(rowHeight,
			fmt.Sprintf("Includes %s withholding tax retained on the accommodation amount.", Money(b.WithholdingTaxCents, b.Currency)),
			noteStyle))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

// Money formats minor units with two decimals.
func Money(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

func guestLabel(b *bookingdomain.Booking) string {
	if b.GuestName == "" {
		return b.GuestEmail
	}
	return b.GuestName + " <" + b.GuestEmail + ">"
}
