package email

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"amserver/config"
	"amserver/model"
)

func SendMail(mailTo *[]string, subject string, body string) error {
	mailCfg := config.Config.Email
	dialer := gomail.NewDialer(mailCfg.Host, mailCfg.Port, mailCfg.User, mailCfg.Password)
	mail := gomail.NewMessage()
	mail.SetAddressHeader("From", mailCfg.User, mailCfg.Name)
	mail.SetHeader("To", *mailTo...)
	mail.SetHeader("Subject", subject)
	mail.SetBody("text/html", body)

	err := dialer.DialAndSend(mail)
	return err
}

// SendAlertNotification mails the user linked to the alert's camera.
// Best-effort: callers log the error and never fail the alert ingest on it.
func SendAlertNotification(user model.User, alert model.Alert) error {
	emailAddr := []string{user.Email}
	subject := fmt.Sprintf("AlertMatrix - %s detected", strings.ToUpper(alert.DetectionType))
	body := fmt.Sprintf(
		""+
			"<p>Hi %s,</p>"+
			"<p>A <b>%s</b> was detected on camera <b>%s</b> at %s "+
			"(confidence %.0f%%).</p>"+
			"<p>Open the AlertMatrix app to review the capture and the live feed.</p><br>"+
			"<p>%s</p>",
		user.Username,
		alert.DetectionType,
		alert.CameraID,
		alert.Timestamp.Format("2006-01-02 15:04:05 MST"),
		alert.Confidence*100,
		time.Now().Format("2006-01-02 15:04:05 MST"))
	err := SendMail(&emailAddr, subject, body)
	if err != nil {
		return err
	}
	return nil
}
