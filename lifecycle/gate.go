package lifecycle

import "mibotpro/models"

/************************************************
/**** MARK: DENIAL REASONS ****/
/************************************************/
const DENIED_NOT_ACTIVATED = "not_activated"
const DENIED_PAYMENT_LAPSED = "payment_lapsed"
const DENIED_SETUP_FAILED = "setup_failed"
const DENIED_UNKNOWN_STATUS = "unknown_status"

// DeniedError is the expected, user-facing outcome of the gate. Message is
// shown to the end user as-is; Reason is machine-readable for clients.
type DeniedError struct {
	Reason  string
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// CanExecute is the single choke point in front of every model invocation.
// It must run before any prompt is built or any AI call is made: a denied
// request costs nothing.
//
// Only "active" allows execution. Every other value, including statuses this
// version does not know about, denies (fail closed). The denial messages
// differ because the remediation differs: a never-activated bot needs its
// first payment, a suspended one needs a payment method update.
func CanExecute(config models.Configuration) *DeniedError {
	switch config.Status {
	case models.CONFIG_STATUS_ACTIVE:
		return nil
	case models.CONFIG_STATUS_PENDING_PAYMENT, models.CONFIG_STATUS_PROCESSING:
		return &DeniedError{
			Reason:  DENIED_NOT_ACTIVATED,
			Message: "Este bot todavía no está activado. Completa el primer pago desde el panel de control para empezar a usarlo.",
		}
	case models.CONFIG_STATUS_SUSPENDED:
		return &DeniedError{
			Reason:  DENIED_PAYMENT_LAPSED,
			Message: "SERVICIO SUSPENDIDO: Tu suscripción ha caducado o el último pago ha fallado. Actualiza tu método de pago en el panel de control para reactivar el servicio.",
		}
	case models.CONFIG_STATUS_ERROR:
		return &DeniedError{
			Reason:  DENIED_SETUP_FAILED,
			Message: "La activación de este bot falló. Inténtalo de nuevo o contacta con soporte.",
		}
	}
	return &DeniedError{
		Reason:  DENIED_UNKNOWN_STATUS,
		Message: "El estado actual de este bot no permite ejecutarlo.",
	}
}
