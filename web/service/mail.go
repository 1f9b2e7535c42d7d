package service

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"quill/logger"

	"github.com/google/uuid"
)

// MailService is the notification sink: a single blocking SMTP delivery to
// the configured contact recipient, bounded by a timeout and never retried.
// Nothing else in the system depends on delivery succeeding.
type MailService struct {
	settingService SettingService
}

// SendContactMessage formats and relays a contact-form submission. It
// returns a reference id the caller can show to the visitor. All transport
// failures are logged and collapsed into ErrDeliveryFailed.
func (s *MailService) SendContactMessage(name, email, phone, message string) (string, error) {
	host, err := s.settingService.GetSMTPHost()
	if err != nil {
		return "", err
	}
	if host == "" {
		logger.Warning("contact message dropped: no smtp host configured")
		return "", ErrDeliveryFailed
	}
	port, err := s.settingService.GetSMTPPort()
	if err != nil {
		return "", err
	}
	recipient, err := s.settingService.GetContactRecipient()
	if err != nil {
		return "", err
	}
	if recipient == "" {
		logger.Warning("contact message dropped: no recipient configured")
		return "", ErrDeliveryFailed
	}
	from, err := s.settingService.GetSMTPFrom()
	if err != nil {
		return "", err
	}
	if from == "" {
		from = "quill@" + host
	}
	timeout, err := s.settingService.GetSMTPTimeout()
	if err != nil {
		return "", err
	}

	ref := uuid.NewString()
	subject := fmt.Sprintf("Contact message from %s [%s]", name, ref[:8])
	body := buildContactBody(name, email, phone, message, ref)

	if err := s.send(host, port, from, recipient, subject, body, timeout); err != nil {
		logger.Warningf("contact mail delivery failed (ref %s): %v", ref, err)
		return ref, ErrDeliveryFailed
	}

	logger.Infof("contact message %s relayed to %s", ref, recipient)
	return ref, nil
}

// send performs one SMTP conversation. The deadline covers the whole
// exchange so a hung relay cannot pin the request goroutine.
func (s *MailService) send(host string, port int, from, to, subject, body string, timeout time.Duration) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return err
		}
	}

	username, err := s.settingService.GetSMTPUsername()
	if err != nil {
		return err
	}
	if username != "" {
		password, err := s.settingService.GetSMTPPassword()
		if err != nil {
			return err
		}
		if err := client.Auth(smtp.PlainAuth("", username, password, host)); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func buildContactBody(name, email, phone, message, ref string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Email: %s\n", email)
	if phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", phone)
	}
	fmt.Fprintf(&b, "Reference: %s\n\n", ref)
	b.WriteString(message)
	return b.String()
}
