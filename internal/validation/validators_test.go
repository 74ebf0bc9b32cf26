package validation

import (
	"testing"
)

func TestStructValidation(t *testing.T) {
	t.Parallel()

	type request struct {
		Type     string `validate:"required,interaction_type"`
		Platform string `validate:"omitempty,platform_type"`
		Kind     string `validate:"omitempty,notification_type"`
		Priority string `validate:"omitempty,notification_priority"`
	}

	tests := []struct {
		name    string
		req     request
		wantErr bool
	}{
		{name: "valid interaction", req: request{Type: "video_call", Platform: "whatsapp"}},
		{name: "valid notification fields", req: request{Type: "call", Kind: "milestone", Priority: "high"}},
		{name: "missing type", req: request{}, wantErr: true},
		{name: "unknown interaction type", req: request{Type: "carrier_pigeon"}, wantErr: true},
		{name: "unknown platform", req: request{Type: "text", Platform: "myspace"}, wantErr: true},
		{name: "unknown notification type", req: request{Type: "text", Kind: "alert"}, wantErr: true},
		{name: "unknown priority", req: request{Type: "text", Priority: "urgent"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate.Struct(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate.Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "  hello  ", want: "hello"},
		{in: "line\nbreak\ttab", want: "line\nbreak\ttab"},
		{in: "bell\x07char", want: "bellchar"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := SanitizeText(tt.in); got != tt.want {
			t.Errorf("SanitizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeOptionalText(t *testing.T) {
	t.Parallel()

	blank := "   "
	if got := SanitizeOptionalText(&blank); got != nil {
		t.Errorf("SanitizeOptionalText(blank) = %q, want nil", *got)
	}
	if got := SanitizeOptionalText(nil); got != nil {
		t.Error("SanitizeOptionalText(nil) != nil")
	}
	v := " note "
	if got := SanitizeOptionalText(&v); got == nil || *got != "note" {
		t.Errorf("SanitizeOptionalText() = %v, want note", got)
	}
}

func TestValidateCloseness(t *testing.T) {
	t.Parallel()

	for _, c := range []int{1, 3, 5} {
		if err := ValidateCloseness(c); err != nil {
			t.Errorf("ValidateCloseness(%d) error = %v", c, err)
		}
	}
	for _, c := range []int{0, 6, -1} {
		if err := ValidateCloseness(c); err == nil {
			t.Errorf("ValidateCloseness(%d) error = nil", c)
		}
	}
}
