package mail

const emailTemplates = `
{{define "header"}}<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
{{end}}

{{define "footer"}}<p style="color: #888; font-size: 12px;">This is an automated message, please do not reply.</p>
</body>
</html>{{end}}

{{define "verify-email"}}{{template "header"}}
<h2>Hello {{.firstName}},</h2>
<p>Thank you for registering. Use the code below or follow the link to verify your email address.</p>
<p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.code}}</p>
<p><a href="{{.link}}">Verify my email</a></p>
{{template "footer"}}{{end}}

{{define "verified-email"}}{{template "header"}}
<h2>Hello {{.firstName}},</h2>
<p>Your email address has been verified. An administrator will review your account shortly.</p>
{{template "footer"}}{{end}}

{{define "welcome-email"}}{{template "header"}}
<h2>Welcome {{.firstName}},</h2>
<p>Your account has been approved. You can now sign in.</p>
<p><a href="{{.link}}">Sign in</a></p>
{{template "footer"}}{{end}}

{{define "account-rejected"}}{{template "header"}}
<h2>Hello {{.firstName}},</h2>
<p>We are sorry, your account was rejected for the following reason:</p>
<blockquote>{{.data}}</blockquote>
{{template "footer"}}{{end}}

{{define "reset-password-email"}}{{template "header"}}
<h2>Hello {{.firstName}},</h2>
<p>Use the code below to reset your password. If you did not ask for this, ignore this email.</p>
<p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.code}}</p>
<p><a href="{{.link}}">Reset my password</a></p>
{{template "footer"}}{{end}}

{{define "custom-email"}}{{template "header"}}
<h2>Hello {{.firstName}},</h2>
<p>{{.data}}</p>
{{template "footer"}}{{end}}
`
