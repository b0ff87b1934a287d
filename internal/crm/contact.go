package crm

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
)

// ErrInvalidPhone is returned for numbers too short to reach over WhatsApp.
var ErrInvalidPhone = errors.New("invalid phone number for WhatsApp")

// MessageKind selects a canned outreach message.
type MessageKind string

const (
	MessagePromo  MessageKind = "PROMO"
	MessageUpdate MessageKind = "UPDATE"
)

// WhatsAppLink builds a wa.me deep link with a prefilled message.
func WhatsAppLink(c Customer, kind MessageKind) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, c.Contact)
	if len(digits) < 9 {
		return "", ErrInvalidPhone
	}
	var msg string
	if kind == MessagePromo {
		msg = "Hi " + c.Name + "! We have fresh mushrooms harvested today at the Village Co-op. Interested in restocking?"
	} else {
		msg = "Hi " + c.Name + ", just checking in on your last order. Everything good?"
	}
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20"), nil
}
