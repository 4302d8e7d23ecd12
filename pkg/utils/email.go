package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"
)

var (
	emailFrom     = os.Getenv("EMAIL_FROM")
	emailPassword = os.Getenv("EMAIL_PASSWORD")
	smtpHost      = os.Getenv("SMTP_HOST")
	smtpPort      = os.Getenv("SMTP_PORT")
	opsInbox      = os.Getenv("EMAIL_TO")
	companyName   = "Chauffeur de Luxe"
	baseURL       = os.Getenv("BASE_URL")
)

// Common header template for all emails
const emailHeader = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<div style="text-align: center; margin-bottom: 30px; background-color: #000000; padding: 20px;">
			<h2 style="color: #B9975B; margin: 0;">CHAUFFEUR DE LUXE</h2>
			<p style="color: #B9975B; font-size: 12px; margin: 5px 0 0;">Driven by Distinction. Defined by Elegance.</p>
		</div>
`

// Common footer template for all emails
const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px;">
			<p>This is an automated message, please do not reply to this email.</p>
			<p>Chauffeur de Luxe – Premium Chauffeur Service</p>
			<p>www.chauffeurdeluxe.com.au | info@chauffeurdeluxe.com.au</p>
		</div>
	</div>
</body>
</html>
`

func sendEmail(to []string, subject, body string) error {
	if emailFrom == "" || emailPassword == "" || smtpHost == "" || smtpPort == "" {
		return fmt.Errorf("email configuration not set")
	}

	// Headers
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, emailFrom)
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"
	headers["X-Mailer"] = "ChauffeurDeLuxe-Mailer"

	// Build message
	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	// Authentication
	auth := smtp.PlainAuth("", emailFrom, emailPassword, smtpHost)

	// Send email
	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, emailFrom, to, []byte(message))
	if err != nil {
		log.Printf("Failed to send email: %v", err)
		return err
	}

	log.Printf("Successfully sent email to recipients: %v", to)
	return nil
}

// SendBookingReceivedEmail notifies the operations inbox of a new paid booking.
func SendBookingReceivedEmail(customerName, customerEmail, customerPhone, pickup, dropoff string, pickupTime time.Time, vehicleType string, fare, distanceKm, durationMin float64, notes string) error {
	if opsInbox == "" {
		return fmt.Errorf("operations inbox not configured")
	}

	if notes == "" {
		notes = "None"
	}

	subject := fmt.Sprintf("New Booking from %s", customerName)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">New Chauffeur Booking</h1>
					<p><strong>Name:</strong> %s</p>
					<p><strong>Email:</strong> %s</p>
					<p><strong>Phone:</strong> %s</p>
					<p><strong>Pickup:</strong> %s</p>
					<p><strong>Dropoff:</strong> %s</p>
					<p><strong>Pickup Time:</strong> %s</p>
					<p><strong>Vehicle Type:</strong> %s</p>
					<p><strong>Total Fare:</strong> $%.2f</p>
					<p><strong>Distance:</strong> %.1f km</p>
					<p><strong>Estimated Time:</strong> %.0f min</p>
					<p><strong>Notes:</strong> %s</p>
				</div>`+emailFooter,
		customerName, customerEmail, customerPhone, pickup, dropoff,
		pickupTime.Format("Mon, 02 Jan 2006 15:04"), vehicleType,
		fare, distanceKm, durationMin, notes)

	return sendEmail([]string{opsInbox}, subject, body)
}

// SendJobAssignedEmail notifies a driver of a new assignment with the trip
// details and their payout.
func SendJobAssignedEmail(driverEmail, pickup, dropoff string, pickupTime time.Time, customerName, customerPhone string, driverPay float64) error {
	subject := "New Job Assigned - Chauffeur de Luxe"
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">New Job Assigned</h1>
					<p>Hello,</p>
					<p>You have been assigned a new job:</p>
					<p><strong>Pickup:</strong> %s</p>
					<p><strong>Dropoff:</strong> %s</p>
					<p><strong>Date &amp; Time:</strong> %s</p>
					<p><strong>Customer:</strong> %s</p>
					<p><strong>Customer Phone:</strong> %s</p>
					<p><strong>Your Pay:</strong> $%.2f</p>
					<div style="text-align: center; margin: 30px 0;">
						<a href="%s/driver" style="background-color: #B9975B; color: black; padding: 12px 25px; text-decoration: none; border-radius: 5px;">Open Driver Portal</a>
					</div>
					<p>Please log in to your driver portal to confirm.</p>
				</div>`+emailFooter,
		pickup, dropoff, pickupTime.Format("Mon, 02 Jan 2006 15:04"),
		customerName, customerPhone, driverPay, baseURL)

	return sendEmail([]string{driverEmail}, subject, body)
}

// SendDriverResponseEmail tells the operations inbox whether a driver
// confirmed or refused an assignment.
func SendDriverResponseEmail(jobID, driverEmail string, confirmed bool) error {
	if opsInbox == "" {
		return fmt.Errorf("operations inbox not configured")
	}

	outcome := "confirmed"
	detail := "The job is locked in."
	if !confirmed {
		outcome = "refused"
		detail = "The booking is back in the pending queue and needs reassignment."
	}

	subject := fmt.Sprintf("Job %s %s by %s", jobID, outcome, driverEmail)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Driver Response</h1>
					<p><strong>Job:</strong> %s</p>
					<p><strong>Driver:</strong> %s</p>
					<p><strong>Response:</strong> %s</p>
					<p>%s</p>
				</div>`+emailFooter,
		jobID, driverEmail, outcome, detail)

	return sendEmail([]string{opsInbox}, subject, body)
}

// SendJobCompletedEmail tells the operations inbox a job has finished.
func SendJobCompletedEmail(jobID, driverEmail string, driverPay float64) error {
	if opsInbox == "" {
		return fmt.Errorf("operations inbox not configured")
	}

	subject := fmt.Sprintf("Job %s completed", jobID)
	body := fmt.Sprintf(emailHeader+`
				<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
					<h1 style="color: #2c3e50; text-align: center;">Job Completed</h1>
					<p><strong>Job:</strong> %s</p>
					<p><strong>Driver:</strong> %s</p>
					<p><strong>Driver Pay:</strong> $%.2f</p>
				</div>`+emailFooter,
		jobID, driverEmail, driverPay)

	return sendEmail([]string{opsInbox}, subject, body)
}
