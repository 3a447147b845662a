package policy

import (
	"testing"

	"github.com/cardstream/ingest/internal/classify"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mapping classify.ColumnMapping
		wantErr func(error) bool
		ok      bool
	}{
		{
			name:    "pan plus cvv is forbidden",
			mapping: classify.ColumnMapping{0: classify.Pan, 1: classify.Cvv},
			wantErr: IsCvvForbidden,
		},
		{
			name:    "cvv alone is forbidden before missing pan is reported",
			mapping: classify.ColumnMapping{3: classify.Cvv},
			wantErr: IsCvvForbidden,
		},
		{
			name:    "no pan",
			mapping: classify.ColumnMapping{0: classify.FirstName},
			wantErr: IsMissingPan,
		},
		{
			name:    "empty mapping",
			mapping: classify.ColumnMapping{},
			wantErr: IsMissingPan,
		},
		{
			name:    "pan plus name is fine",
			mapping: classify.ColumnMapping{0: classify.Pan, 1: classify.FirstName},
			ok:      true,
		},
		{
			name: "full mapping without cvv is fine",
			mapping: classify.ColumnMapping{
				0: classify.Pan,
				1: classify.ExpCombined,
				2: classify.FirstName,
				3: classify.LastName,
				4: classify.Address1,
				5: classify.City,
				6: classify.State,
				7: classify.PostalCode,
			},
			ok: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mapping)
			if tt.ok {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !tt.wantErr(err) {
				t.Errorf("Validate() = %v, wrong violation", err)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	m := classify.ColumnMapping{0: classify.Pan}
	if err := Validate(m); err != nil {
		t.Fatalf("first Validate() = %v", err)
	}
	if err := Validate(m); err != nil {
		t.Fatalf("second Validate() = %v", err)
	}
}

func TestViolationReportsColumn(t *testing.T) {
	err := Validate(classify.ColumnMapping{0: classify.Pan, 2: classify.Cvv})
	v, ok := err.(*Violation)
	if !ok {
		t.Fatalf("error type = %T, want *Violation", err)
	}
	if v.Column != 2 {
		t.Errorf("Column = %d, want 2", v.Column)
	}
	if v.Code != CodeCvvForbidden {
		t.Errorf("Code = %q, want %q", v.Code, CodeCvvForbidden)
	}
}
