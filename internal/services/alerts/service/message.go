package service

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"warden/internal/core/events"
)

// amounts render with grouping separators so large wei-style integers stay readable
var printer = message.NewPrinter(language.English)

// Render formats a human-readable message plus suggested actions for an event
func Render(ev events.DomainEvent) (string, []string) {
	switch ev.Kind {
	case events.KindExpiring:
		return printer.Sprintf(
				"%s expires in %s (%s urgency)",
				ev.Domain, days(ev.DaysUntilExpiry), ev.Urgency,
			),
			[]string{"renew now", "view domain"}

	case events.KindListed:
		if ev.SaleType == "auction" {
			return printer.Sprintf("auction started for %s at %d", ev.Domain, ev.Price),
				[]string{"place bid", "view listing"}
		}
		return printer.Sprintf("%s listed for %d", ev.Domain, ev.Price),
			[]string{"buy now", "view listing"}

	case events.KindSold:
		return printer.Sprintf("%s sold for %d", ev.Domain, ev.Price),
			[]string{"view sale"}

	case events.KindPriceChanged:
		dir := "changed"
		switch {
		case ev.PrevPrice != 0 && ev.Price > ev.PrevPrice:
			dir = "raised"
		case ev.PrevPrice != 0 && ev.Price < ev.PrevPrice:
			dir = "dropped"
		}
		return printer.Sprintf("price for %s %s to %d", ev.Domain, dir, ev.Price),
			[]string{"view listing"}

	case events.KindTransferred:
		return fmt.Sprintf("%s transferred from %s to %s", ev.Domain, ev.From, ev.To),
			[]string{"view domain"}

	case events.KindAutoActionResult:
		return fmt.Sprintf("auto action completed for %s", ev.Domain),
			[]string{"view action log"}
	}
	return fmt.Sprintf("activity on %s", ev.Domain), nil
}

func days(n int) string {
	if n == 1 {
		return "1 day"
	}
	return printer.Sprintf("%d days", n)
}
