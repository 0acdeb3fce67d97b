package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Attempt: снимок попытки оплаты. Наблюдатели получают копию и не могут изменить состояние процесса.
type Attempt struct {
	ID          string
	OrderID     string
	OrderNumber string
	Phone       string
	Amount      decimal.Decimal
	Status      Status
	StartedAt   time.Time
	// Текст ошибки инициации для StatusError
	Err string
	// Количество выполненных проверок статуса
	Polls int
	// Взведены ли таймеры или идёт запрос к шлюзу
	Active bool
}

const GenericInitiationMessage = "Failed to initiate payment. Please try again."

// Message возвращает текст для покупателя, свой для каждого состояния.
func Message(a Attempt) string {
	switch a.Status {
	case StatusNotStarted:
		return "Enter your M-Pesa phone number to pay for your order."
	case StatusSubmitting:
		return "Sending the payment request to your phone..."
	case StatusAwaitingConfirmation:
		if !a.Active {
			return "Payment confirmation was cancelled. You can start the payment again."
		}
		return "Check your phone and enter your M-Pesa PIN to complete the payment."
	case StatusCompleted:
		return fmt.Sprintf("Payment received, thank you! Order %s is confirmed.", a.OrderNumber)
	case StatusFailed:
		return "The payment was not completed. Please check your M-Pesa balance and try again."
	case StatusTimedOut:
		return fmt.Sprintf("We did not receive a payment confirmation in time. "+
			"If money left your account, contact support and quote order %s.", a.OrderNumber)
	case StatusError:
		if a.Err != "" {
			return a.Err
		}
		return GenericInitiationMessage
	default:
		return ""
	}
}
