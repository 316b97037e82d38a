package accounts

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/picloop/identity/internal/common"
)

func TestGenerateHandle_ShapesHandle(t *testing.T) {
	re := regexp.MustCompile(`^janedoe(\d{1,2})$`)

	// The suffix is random; run a batch to cover different draws.
	for i := 0; i < 50; i++ {
		handle, err := GenerateHandle("Jane Doe")
		if err != nil {
			t.Fatalf("GenerateHandle error: %v", err)
		}

		m := re.FindStringSubmatch(handle)
		if m == nil {
			t.Fatalf("handle %q does not match janedoe<suffix>", handle)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 0 || n >= 100 {
			t.Fatalf("suffix out of [0,100): %q", handle)
		}
	}
}

func TestGenerateHandle_StripsWhitespaceAndUnderscores(t *testing.T) {
	tests := []struct {
		name       string
		display    string
		wantPrefix string
	}{
		{name: "tabs and spaces", display: " Mary \t Ann  Lee ", wantPrefix: "maryannlee"},
		{name: "underscores", display: "mary_ann_lee", wantPrefix: "maryannlee"},
		{name: "mixed case", display: "MARY Ann", wantPrefix: "maryann"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handle, err := GenerateHandle(tt.display)
			if err != nil {
				t.Fatalf("GenerateHandle error: %v", err)
			}
			if !strings.HasPrefix(handle, tt.wantPrefix) {
				t.Fatalf("handle %q missing prefix %q", handle, tt.wantPrefix)
			}
			rest := strings.TrimPrefix(handle, tt.wantPrefix)
			if rest == "" {
				t.Fatalf("handle %q has no numeric suffix", handle)
			}
			if _, err := strconv.Atoi(rest); err != nil {
				t.Fatalf("suffix %q is not numeric", rest)
			}
		})
	}
}

func TestGenerateHandle_EmptyDisplayName(t *testing.T) {
	_, err := GenerateHandle("")
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want common.ErrorValidation, got %v", err)
	}
}
