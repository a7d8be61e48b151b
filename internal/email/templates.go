package email

import (
	"fmt"
	"strings"
	"time"
)

type Message struct {
	Subject string
	Body    string
}

type ReservationDetails struct {
	FacilityName string
	ClientName   string
	Court        string
	Date         string
	TimeRange    string
	Services     []string
	TotalCents   int64
	Currency     string
}

type ReceiptDetails struct {
	FacilityName string
	ClientName   string
	Court        string
	Date         string
	TimeRange    string
	Method       string
	Receipt      string
	AmountCents  int64
	Currency     string
}

type CancellationDetails struct {
	FacilityName string
	Court        string
	Date         string
	TimeRange    string
	Refunded     bool
}

func FormatDateTimeRange(start, end time.Time) (string, string) {
	date := start.Format("Monday, Jan 2, 2006")
	timeRange := fmt.Sprintf("%s - %s %s", start.Format("3:04 PM"), end.Format("3:04 PM"), start.Format("MST"))
	return date, timeRange
}

// FormatAmountCents renders an integer-cents amount as "1234.50 ARS".
func FormatAmountCents(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	formatted := fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return formatted
	}
	return formatted + " " + currency
}

func BuildReservationConfirmation(details ReservationDetails) Message {
	facilityName := strings.TrimSpace(details.FacilityName)
	if facilityName == "" {
		facilityName = "your facility"
	}

	subject := fmt.Sprintf("Reservation Confirmed - %s", facilityName)

	lines := []string{
		"Your court reservation is confirmed.",
		"",
		fmt.Sprintf("Facility: %s", facilityName),
		fmt.Sprintf("Court: %s", strings.TrimSpace(details.Court)),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
	}
	if len(details.Services) > 0 {
		lines = append(lines, fmt.Sprintf("Services: %s", strings.Join(details.Services, ", ")))
	}
	lines = append(lines,
		fmt.Sprintf("Total: %s", FormatAmountCents(details.TotalCents, details.Currency)),
		"",
		"Payment is due before the reservation starts.",
	)

	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}

func BuildPaymentReceipt(details ReceiptDetails) Message {
	facilityName := strings.TrimSpace(details.FacilityName)
	if facilityName == "" {
		facilityName = "your facility"
	}
	method := strings.TrimSpace(details.Method)
	if method == "" {
		method = "CASH"
	}

	subject := fmt.Sprintf("Payment Received - %s", facilityName)

	lines := []string{
		"We received your payment. Thank you!",
		"",
		fmt.Sprintf("Facility: %s", facilityName),
		fmt.Sprintf("Court: %s", strings.TrimSpace(details.Court)),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
		fmt.Sprintf("Amount: %s", FormatAmountCents(details.AmountCents, details.Currency)),
		fmt.Sprintf("Method: %s", method),
	}
	if receipt := strings.TrimSpace(details.Receipt); receipt != "" {
		lines = append(lines, fmt.Sprintf("Receipt: %s", receipt))
	}

	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}

func BuildCancellationEmail(details CancellationDetails) Message {
	facilityName := strings.TrimSpace(details.FacilityName)
	if facilityName == "" {
		facilityName = "your facility"
	}

	subject := fmt.Sprintf("Reservation Cancelled - %s", facilityName)

	lines := []string{
		"Your court reservation has been cancelled.",
		"",
		fmt.Sprintf("Facility: %s", facilityName),
		fmt.Sprintf("Court: %s", strings.TrimSpace(details.Court)),
		fmt.Sprintf("Date: %s", strings.TrimSpace(details.Date)),
		fmt.Sprintf("Time: %s", strings.TrimSpace(details.TimeRange)),
	}
	if details.Refunded {
		lines = append(lines, "Your payment will be refunded.")
	}

	return Message{Subject: subject, Body: strings.Join(lines, "\n")}
}
