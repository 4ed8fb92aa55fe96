package main

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/smtp"
)

// sendInvitationEmail delivers the delegation invite link. Returns an
// error when SMTP is not configured; the caller downgrades that to an
// email_sent=false flag instead of failing the request.
func sendInvitationEmail(to, ownerName, token string) error {
	if cfg.SMTPHost == "" || cfg.SMTPFromEmail == "" {
		return errors.New("smtp not configured")
	}
	link := cfg.FrontendURL + "/convites/confirmar?token=" + token
	subject := fmt.Sprintf("%s convidou voce para acessar as financas", ownerName)
	body := fmt.Sprintf(
		"%s convidou voce para acompanhar as financas da familia.\r\n\r\n"+
			"Acesse o link para confirmar o convite:\r\n%s\r\n\r\n"+
			"O convite expira em 7 dias.\r\n",
		ownerName, link,
	)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		cfg.SMTPFromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	if !cfg.SMTPUseTLS {
		return smtp.SendMail(addr, auth, cfg.SMTPFromEmail, []string{to}, msg)
	}

	// STARTTLS path, the common setup on port 587
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()
	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: cfg.SMTPHost}); err != nil {
			return err
		}
	}
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(cfg.SMTPFromEmail); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
