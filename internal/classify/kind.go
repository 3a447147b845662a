// Package classify infers the semantic role of tabular columns from headers
// and sampled cell values. It has no I/O dependencies and can be driven by
// any row source.
package classify

// FieldKind identifies the semantic role of a column. The set is closed:
// every consumer switches over it exhaustively, so adding a kind is a
// compile-time-visible change.
type FieldKind int

const (
	Unknown FieldKind = iota
	Pan
	FirstName
	LastName
	ExpMonth
	ExpYear
	ExpCombined
	Cvv
	Address1
	Address2
	City
	State
	PostalCode
	Email
	Phone
	MerchantRef
)

// String returns the wire name of the kind. These names are part of the
// upload payload contract and must stay stable.
func (k FieldKind) String() string {
	switch k {
	case Pan:
		return "pan"
	case FirstName:
		return "first_name"
	case LastName:
		return "last_name"
	case ExpMonth:
		return "exp_month"
	case ExpYear:
		return "exp_year"
	case ExpCombined:
		return "exp_combined"
	case Cvv:
		return "cvv"
	case Address1:
		return "address1"
	case Address2:
		return "address2"
	case City:
		return "city"
	case State:
		return "state"
	case PostalCode:
		return "postal_code"
	case Email:
		return "email"
	case Phone:
		return "phone"
	case MerchantRef:
		return "merchant_ref"
	case Unknown:
		return "unknown"
	}
	return "unknown"
}

// Label returns a human-readable name for display in previews and logs.
func (k FieldKind) Label() string {
	switch k {
	case Pan:
		return "Card Number"
	case FirstName:
		return "First Name"
	case LastName:
		return "Last Name"
	case ExpMonth:
		return "Expiry Month"
	case ExpYear:
		return "Expiry Year"
	case ExpCombined:
		return "Expiry (MM/YY)"
	case Cvv:
		return "CVV"
	case Address1:
		return "Address Line 1"
	case Address2:
		return "Address Line 2"
	case City:
		return "City"
	case State:
		return "State"
	case PostalCode:
		return "Postal Code"
	case Email:
		return "Email"
	case Phone:
		return "Phone"
	case MerchantRef:
		return "Merchant Reference"
	case Unknown:
		return "Unknown"
	}
	return "Unknown"
}

// ParseKind maps a wire name back to its FieldKind. Unrecognized names
// resolve to Unknown.
func ParseKind(s string) FieldKind {
	for k := Unknown; k <= MerchantRef; k++ {
		if k.String() == s {
			return k
		}
	}
	return Unknown
}

// ColumnMapping assigns a FieldKind to each mapped column index. It is
// initialized from classifier guesses and freely overridable by the caller;
// the policy gate validates it and the upload pipeline consumes it.
type ColumnMapping map[int]FieldKind

// CustomTitles holds operator-supplied export labels by column index,
// overriding the original header when records are serialized for upload.
type CustomTitles map[int]string

// Clone returns an independent copy of the mapping so caller edits cannot
// mutate classifier output retroactively.
func (m ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(m))
	for i, k := range m {
		out[i] = k
	}
	return out
}
