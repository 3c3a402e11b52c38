package services

import (
	"fmt"

	"github.com/SscSPs/payflow_backend/internal/core/domain"
	portssvc "github.com/SscSPs/payflow_backend/internal/core/ports/services"
)

func money(txn domain.Transaction) string {
	return "R$ " + domain.FormatAmount(txn.Amount)
}

func notificationFor(acc domain.Account, txn domain.Transaction, message string) portssvc.Notification {
	return portssvc.Notification{
		AccountID:     acc.AccountID,
		Email:         acc.Email,
		Message:       message,
		TransactionID: txn.TransactionID,
	}
}

// transferNotifications tells the sender and the recipient of a completed transfer.
func transferNotifications(txn domain.Transaction, payer, payee domain.Account) []portssvc.Notification {
	return []portssvc.Notification{
		notificationFor(payer, txn, fmt.Sprintf("You sent %s to %s.", money(txn), payee.Name)),
		notificationFor(payee, txn, fmt.Sprintf("You received %s from %s.", money(txn), payer.Name)),
	}
}

func movementNotifications(txn domain.Transaction, acc domain.Account) []portssvc.Notification {
	var message string
	switch txn.Kind {
	case domain.KindDeposit:
		message = fmt.Sprintf("Deposit of %s completed.", money(txn))
	case domain.KindWithdrawal:
		message = fmt.Sprintf("Withdrawal of %s completed.", money(txn))
	default:
		message = fmt.Sprintf("Transaction of %s processed.", money(txn))
	}
	return []portssvc.Notification{notificationFor(acc, txn, message)}
}

// compensationNotifications addresses the original payee (who returns the money) and the original payer.
func compensationNotifications(txn domain.Transaction, origPayee, origPayer domain.Account) []portssvc.Notification {
	if txn.Kind == domain.KindReversal {
		return []portssvc.Notification{
			notificationFor(origPayee, txn, fmt.Sprintf("The transfer of %s from %s was reversed.", money(txn), origPayer.Name)),
			notificationFor(origPayer, txn, fmt.Sprintf("Your transfer of %s to %s was reversed.", money(txn), origPayee.Name)),
		}
	}
	return []portssvc.Notification{
		notificationFor(origPayee, txn, fmt.Sprintf("Refund of %s sent to %s.", money(txn), origPayer.Name)),
		notificationFor(origPayer, txn, fmt.Sprintf("You received a refund of %s from %s.", money(txn), origPayee.Name)),
	}
}
