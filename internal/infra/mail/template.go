package mail

import (
	"fmt"
	"html"
)

// renderResetCodeEmail produces the recovery email body. The recipient name
// is user-supplied, so it gets escaped.
func renderResetCodeEmail(fullName, code string) string {
	name := html.EscapeString(fullName)
	if name == "" {
		name = "Hola"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 24px;">
    <div style="max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h2 style="color: #2c3e50; margin-top: 0;">Recuperación de contraseña</h2>
      <p>Hola %s,</p>
      <p>Recibimos una solicitud para restablecer tu contraseña. Usa el siguiente código:</p>
      <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; text-align: center; color: #2c3e50;">%s</p>
      <p>El código expira en 15 minutos. Si no solicitaste este cambio, ignora este correo.</p>
      <p style="color: #888; font-size: 12px;">Equipo RaícesMX</p>
    </div>
  </body>
</html>`, name, code)
}
