package emailsvc

import (
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/trezcool/ubao/core"
)

// smtpService submits messages through an authenticated mail relay.
// Each message gets its own session and its own goroutine: a failing
// recipient never blocks or drops delivery to the rest of the batch.
type smtpService struct {
	addr       string // relay host:port
	auth       smtp.Auth
	from       mail.Address
	subjPrefix string
	logger     core.Logger

	sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error // mockable
}

var _ core.EmailService = (*smtpService)(nil)

func NewSMTPService(conf *core.Config, logger core.Logger) *smtpService {
	return &smtpService{
		addr:         fmt.Sprintf("%s:%d", conf.Mail.RelayHost, conf.Mail.RelayPort),
		auth:         smtp.PlainAuth("", conf.Mail.SenderAddress, conf.Mail.SenderPassword, conf.Mail.RelayHost),
		from:         conf.DefaultFromEmail(),
		subjPrefix:   "[" + conf.AppName + "] ",
		logger:       logger,
		sendMailFunc: smtp.SendMail,
	}
}

func (svc smtpService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := msg.Render(); err != nil {
				svc.logger.Error(fmt.Sprintf("rendering email: %v", err), err)
				return
			}
			if msg.HasRecipients() && msg.HasContent() {
				if err := svc.send(*msg); err != nil {
					svc.logger.Error(fmt.Sprintf("sending email to %s: %v", svc.joinAddresses(msg.To), err), err)
				}
			}
		}()
	}
}

func (svc smtpService) send(msg core.EmailMessage) error {
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, addr.Address)
	}
	return svc.sendMailFunc(svc.addr, svc.auth, svc.from.Address, to, svc.buildBody(msg))
}

// buildBody writes the RFC 5322 headers and the text content of msg.
func (svc smtpService) buildBody(msg core.EmailMessage) []byte {
	body := new(strings.Builder)

	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.from.String())
	_, _ = fmt.Fprintf(body, "To: %s\r\n", svc.joinAddresses(msg.To))
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprint(body, "MIME-Version: 1.0\r\n")
	_, _ = fmt.Fprint(body, "Content-Type: text/plain; charset=\"utf-8\"\r\n")
	_, _ = fmt.Fprint(body, "\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.TextContent)

	return []byte(body.String())
}

func (svc smtpService) joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
