package classify

import "testing"

func TestMaskForDisplay(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "valid pan is masked",
			in:   "4111111111111111",
			want: "############1111",
		},
		{
			name: "pan with spaces is masked",
			in:   "4111 1111 1111 1111",
			want: "############1111",
		},
		{
			name: "non-card text unchanged",
			in:   "hello",
			want: "hello",
		},
		{
			name: "luhn-invalid number unchanged",
			in:   "4111111111111112",
			want: "4111111111111112",
		},
		{
			name: "too short unchanged",
			in:   "411111111111",
			want: "411111111111",
		},
		{
			name: "empty unchanged",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskForDisplay(tt.in); got != tt.want {
				t.Errorf("MaskForDisplay(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
