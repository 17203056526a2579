package runner

import (
	"fmt"
	"strings"

	"mibotpro/models"
)

// BuildSystemInstruction composes the persona text for one configuration:
// role framing, business profile, the capability assertion (real action vs
// informative mode) and the owner's optional override.
func BuildSystemInstruction(config models.Configuration) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ROL: Eres el asistente virtual oficial de %q.\n", config.BusinessName)
	b.WriteString("TU CONTEXTO:\n")
	fmt.Fprintf(&b, "- Horario: %s\n", config.Hours)
	fmt.Fprintf(&b, "- Servicios: %s\n", config.Services)
	fmt.Fprintf(&b, "- Contacto: %s / %s\n", config.Phone, config.Email)
	b.WriteString("\nPERSONALIDAD: Profesional, eficiente, empático y orientado a la solución.\n")
	b.WriteString("IDIOMA: Español.\n")

	if config.BookingPageURL != "" {
		fmt.Fprintf(&b, "\nNOTA: Si el usuario quiere reservar y no puedes hacerlo automáticamente, ofrece este enlace: %s\n", config.BookingPageURL)
	}

	if config.AutomationEndpoint != "" {
		b.WriteString("\nTIENES CAPACIDAD DE ACCION REAL.\n")
		b.WriteString("Estás conectado a un sistema de automatización externo.\n")
		fmt.Fprintf(&b, "Cuando el usuario quiera realizar una acción (reservar, pedir, enviar un mensaje), usa la herramienta '%s'.\n", ActionToolName)
	} else {
		b.WriteString("\nMODO INFORMATIVO.\n")
		b.WriteString("No tienes un sistema de automatización conectado.\n")
		b.WriteString("Si el usuario pide una acción (reservar, enviar un mensaje), responde educadamente que todavía no estás conectado al sistema central y que el administrador puede configurarlo en el panel.\n")
	}

	if custom := strings.TrimSpace(config.SystemPrompt); custom != "" {
		b.WriteString("\n")
		b.WriteString(custom)
		b.WriteString("\n")
	}

	return b.String()
}
