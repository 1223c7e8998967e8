package enquiry

import "fmt"

const (
	// SubjectPrefix heads every operator notification.
	SubjectPrefix = "VoiceFlow Enquiry"

	// MaxWhatsAppMessageRunes caps how much of the message goes into a WhatsApp body.
	MaxWhatsAppMessageRunes = 300
)

// Subject is the summary line shared by both channels.
func Subject(e Enquiry) string {
	return SubjectPrefix + " from " + e.Name
}

// EmailText is the plain-text email body with the full message.
func EmailText(e Enquiry) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\nMessage:\n%s", e.Name, e.Email, e.Phone, e.Message)
}

// WhatsAppText is the compact WhatsApp body: subject, the truncated message and
// an attribution suffix.
func WhatsAppText(e Enquiry) string {
	return fmt.Sprintf("%s: %s -- From: %s (%s)", Subject(e), Truncate(e.Message, MaxWhatsAppMessageRunes), e.Name, e.Email)
}

// Truncate keeps at most n characters of s without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
