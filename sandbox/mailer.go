package sandbox

import (
	"github.com/rs/zerolog/log"
)

// Mailer delivers the emails a real bank would send: activation links and OTPs.
type Mailer interface {
	Send(to, subject, body string)
}

// logMailer writes emails to the log instead of sending them.
type logMailer struct{}

func (logMailer) Send(to, subject, body string) {
	log.Info().Str("to", to).Str("subject", subject).Msg(body)
}
