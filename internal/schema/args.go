package schema

import (
	"fmt"

	"github.com/libops/payrecon/internal/domain"
)

// FeePaymentArgs orders a record's fields to match the version's upsert
// placeholders. Versions that predate a field simply never reference it.
func FeePaymentArgs(v Version, rec domain.FeePaymentRecord) ([]any, error) {
	def, err := Def(v, TableFeePayments)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(def.Columns))
	for _, c := range def.Columns {
		switch c.Name {
		case "alma_fee_id":
			args = append(args, rec.AlmaFeeID)
		case "authorize_transaction_id":
			args = append(args, rec.AuthorizeTransactionID)
		case "transaction_submit_time":
			args = append(args, rec.TransactionSubmitTime)
		case "transaction_settled_time":
			args = append(args, rec.TransactionSettledTime)
		case "transaction_status":
			args = append(args, rec.TransactionStatus)
		case "settlement_state":
			args = append(args, rec.SettlementState)
		case "patron_user_id":
			args = append(args, rec.PatronUserID)
		case "patron_name":
			args = append(args, rec.PatronName)
		case "payment_category":
			args = append(args, rec.PaymentCategory)
		case "payment_amount":
			args = append(args, rec.PaymentAmount)
		default:
			return nil, fmt.Errorf("no fee payment value for column %s", c.Name)
		}
	}
	return args, nil
}

func AeonPaymentArgs(v Version, rec domain.AeonPaymentRecord) ([]any, error) {
	def, err := Def(v, TableAeonPayments)
	if err != nil {
		return nil, err
	}
	args := make([]any, 0, len(def.Columns))
	for _, c := range def.Columns {
		switch c.Name {
		case "authorize_transaction_id":
			args = append(args, rec.AuthorizeTransactionID)
		case "transaction_submit_time":
			args = append(args, rec.TransactionSubmitTime)
		case "transaction_settled_time":
			args = append(args, rec.TransactionSettledTime)
		case "transaction_status":
			args = append(args, rec.TransactionStatus)
		case "settlement_state":
			args = append(args, rec.SettlementState)
		case "patron_name":
			args = append(args, rec.PatronName)
		case "aeon_transaction_numbers":
			args = append(args, rec.AeonTransactionNumbers)
		case "payment_amount":
			args = append(args, rec.PaymentAmount)
		default:
			return nil, fmt.Errorf("no aeon payment value for column %s", c.Name)
		}
	}
	return args, nil
}
