package notify

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/studiobooking/internal/kafka"
)

// Message is a rendered notification: subject plus a plain-text body and an
// HTML body. Channels that cannot carry HTML fall back to the text body.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Render turns a notification job into a message. It is a pure transform:
// same job and base URL in, same message out, no I/O.
func Render(job kafka.NotificationJob, baseURL string) Message {
	d := job.Data
	msg := Message{To: job.Recipient}

	switch job.Template {
	case kafka.TemplateBookingConfirmation:
		msg.Subject = fmt.Sprintf("Your studio booking for %s at %s", d["date"], d["time_slot"])
		msg.TextBody = joinLines(
			fmt.Sprintf("Hi %s,", d["name"]),
			"",
			"Your booking request has been received.",
			fmt.Sprintf("Date: %s", d["date"]),
			fmt.Sprintf("Time: %s (%s hours)", d["time_slot"], d["duration_hours"]),
			fmt.Sprintf("Service: %s", d["service_name"]),
			fmt.Sprintf("Total: %s", d["total_price"]),
			"",
			"We will confirm your slot shortly.",
		)
	case kafka.TemplateAdminAlert:
		msg.Subject = fmt.Sprintf("New booking: %s on %s %s", d["name"], d["date"], d["time_slot"])
		msg.TextBody = joinLines(
			"A new booking request came in.",
			fmt.Sprintf("Customer: %s <%s> %s", d["name"], d["email"], d["phone"]),
			fmt.Sprintf("Slot: %s %s, %s hours, party of %s", d["date"], d["time_slot"], d["duration_hours"], d["party_size"]),
			fmt.Sprintf("Service: %s, total %s", d["service_name"], d["total_price"]),
			fmt.Sprintf("Special request: %s", orDash(d["special_request"])),
		)
	case kafka.TemplateStatusUpdate:
		msg.Subject = fmt.Sprintf("Booking update: %s", d["status"])
		msg.TextBody = joinLines(
			fmt.Sprintf("Hi %s,", d["name"]),
			"",
			fmt.Sprintf("Your booking for %s at %s is now %s.", d["date"], d["time_slot"], d["status"]),
		)
	case kafka.TemplateContactAck:
		msg.Subject = "We received your message"
		msg.TextBody = joinLines(
			fmt.Sprintf("Hi %s,", d["name"]),
			"",
			"Thanks for getting in touch. We will reply as soon as we can.",
			"",
			fmt.Sprintf("Your message: %s", d["message"]),
		)
	case kafka.TemplateContactAlert:
		msg.Subject = fmt.Sprintf("Contact form: %s", d["subject"])
		msg.TextBody = joinLines(
			fmt.Sprintf("From: %s <%s> %s", d["name"], d["email"], d["phone"]),
			"",
			d["message"],
		)
	case kafka.TemplateTest:
		msg.Subject = "Studio booking connectivity test"
		msg.TextBody = "If you are reading this, the notification channel is configured correctly."
	default:
		msg.Subject = "Studio booking notification"
		msg.TextBody = "You have a new notification."
	}

	msg.HTMLBody = htmlBody(msg.Subject, msg.TextBody, baseURL)
	return msg
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func htmlBody(subject, text, baseURL string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	if baseURL != "" {
		fmt.Fprintf(&b, `<p><img src="%s/assets/logo.png" alt="studio" height="48"></p>`, strings.TrimRight(baseURL, "/"))
	}
	fmt.Fprintf(&b, "<h2>%s</h2>", htmlEscape(subject))
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, "<p>%s</p>", htmlEscape(line))
	}
	if baseURL != "" {
		fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, baseURL, baseURL)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
